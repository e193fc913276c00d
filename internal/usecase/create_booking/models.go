package create_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/PT-BookingService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID    int64            // ID владельца бронирования
	Date      types.DateString // Дата тренировки, "2024-07-01"
	StartTime types.TimeString // Время начала, "09:00"
	Name      string           // Имя клиента
	Email     string           // Email для уведомлений
	Notes     *string          // Дополнительные заметки (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID          uuid.UUID
	UserID      int64
	BookingDate types.DateString
	StartTime   types.TimeString
	Status      string
	Name        string
	Email       string
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
