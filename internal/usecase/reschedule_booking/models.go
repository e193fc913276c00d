package reschedule_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/PT-BookingService/pkg/types"
)

// Request модель запроса на перенос бронирования
type Request struct {
	BookingID uuid.UUID
	Date      types.DateString // Новая дата
	StartTime types.TimeString // Новое время начала
}

// Response модель ответа с перенесённым бронированием
type Response struct {
	ID               uuid.UUID
	UserID           int64
	BookingDate      types.DateString
	StartTime        types.TimeString
	PreviousDateTime types.LocalDateTime // Дата и время до переноса
	Status           string
	Name             string
	Email            string
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
