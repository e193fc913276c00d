package notifications

import (
	"time"

	"github.com/m04kA/PT-BookingService/internal/domain"
)

// EventType тип события бронирования, он же ключ маршрутизации
type EventType string

const (
	EventBookingCreated     EventType = "booking.created"
	EventBookingCancelled   EventType = "booking.cancelled"
	EventBookingRescheduled EventType = "booking.rescheduled"
	EventBookingConfirmed   EventType = "booking.confirmed"
)

// BookingPayload снимок бронирования в сообщении
type BookingPayload struct {
	ID       string `json:"id"`
	UserID   int64  `json:"userId"`
	DateTime string `json:"dateTime"` // "2024-07-01T09:00", без часового пояса
	Status   string `json:"status"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Notes    string `json:"notes,omitempty"`
}

// Event сообщение для владельца бронирования и администратора
type Event struct {
	Type             EventType      `json:"type"`
	Booking          BookingPayload `json:"booking"`
	PreviousDateTime string         `json:"previousDateTime,omitempty"` // для переноса
	OccurredAt       time.Time      `json:"occurredAt"`
}

func newEvent(t EventType, b *domain.Booking) Event {
	payload := BookingPayload{
		ID:       b.ID.String(),
		UserID:   b.UserID,
		DateTime: b.DateTime().String(),
		Status:   string(b.Status),
		Name:     b.Name,
		Email:    b.Email,
	}
	if b.Notes != nil {
		payload.Notes = *b.Notes
	}
	return Event{
		Type:       t,
		Booking:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// BookingCreated событие создания бронирования
func BookingCreated(b *domain.Booking) Event {
	return newEvent(EventBookingCreated, b)
}

// BookingCancelled событие отмены, dateTime - исходное время занятия
func BookingCancelled(b *domain.Booking) Event {
	return newEvent(EventBookingCancelled, b)
}

// BookingConfirmed событие подтверждения администратором
func BookingConfirmed(b *domain.Booking) Event {
	return newEvent(EventBookingConfirmed, b)
}

// BookingRescheduled событие переноса со старым и новым временем
func BookingRescheduled(b *domain.Booking, previous string) Event {
	ev := newEvent(EventBookingRescheduled, b)
	ev.PreviousDateTime = previous
	return ev
}
