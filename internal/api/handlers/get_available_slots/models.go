package get_available_slots

import (
	getAvailableSlots "github.com/m04kA/PT-BookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/PT-BookingService/pkg/types"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"` // Времена начала "HH:MM" по возрастанию
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]string, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = slot.String()
	}

	return &AvailableSlotsResponse{
		Date:  resp.Date.String(),
		Slots: slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметра date
func ToUseCaseRequest(dateStr string) (*getAvailableSlots.Request, error) {
	date, err := types.NewDateStringFromString(dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{Date: date}, nil
}
