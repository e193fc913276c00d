package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/PT-BookingService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if err := req.Date.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// dropStarted убирает времена, которые уже наступили.
// Прошедшие даты дают пустой список, будущие не фильтруются.
func dropStarted(date types.DateString, slots []types.TimeString, now time.Time) []types.TimeString {
	today := types.NewDateString(now)
	switch {
	case date.IsBefore(today):
		return []types.TimeString{}
	case date.IsAfter(today):
		return slots
	}

	current := types.NewTimeString(now)
	result := make([]types.TimeString, 0, len(slots))
	for _, slot := range slots {
		if slot.IsAfter(current) {
			result = append(result, slot)
		}
	}
	return result
}
