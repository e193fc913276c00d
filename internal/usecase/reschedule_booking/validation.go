package reschedule_booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/PT-BookingService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID == uuid.Nil {
		return fmt.Errorf("%w: bookingID is required", ErrInvalidInput)
	}
	if err := req.Date.Validate(); err != nil {
		return fmt.Errorf("%w: invalid date: %v", ErrInvalidInput, err)
	}
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}
	return nil
}

// validateNotInPast проверяет, что новое время ещё не наступило
func validateNotInPast(date types.DateString, start types.TimeString, now time.Time) error {
	today := types.NewDateString(now)
	if date.IsBefore(today) {
		return fmt.Errorf("%w: %s is before %s", ErrDateInPast, date, today)
	}
	if date == today && !start.IsAfter(types.NewTimeString(now)) {
		return fmt.Errorf("%w: %s %s has already started", ErrDateInPast, date, start)
	}
	return nil
}
