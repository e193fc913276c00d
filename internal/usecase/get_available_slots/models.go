package get_available_slots

import (
	"github.com/m04kA/PT-BookingService/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	Date types.DateString // Дата, "2024-07-01"
}

// Response модель ответа со списком доступных времён начала
type Response struct {
	Date  types.DateString
	Slots []types.TimeString // По возрастанию, пустой список - нормальный результат
}
