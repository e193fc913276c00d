package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/PT-BookingService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking represents one reserved training session.
// BookingDate + StartTime are the naive local date-time picked by the client.
type Booking struct {
	ID          uuid.UUID
	UserID      int64
	BookingDate types.DateString
	StartTime   types.TimeString
	Status      BookingStatus

	Name  string
	Email string
	Notes *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies its slot
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// CanTransitionTo reports whether the status change is allowed.
// pending -> confirmed, pending|confirmed -> cancelled; cancelled is terminal.
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	switch b.Status {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	default:
		return false
	}
}

// DateTime returns the booking's local date-time
func (b *Booking) DateTime() types.LocalDateTime {
	return types.NewLocalDateTime(b.BookingDate, b.StartTime)
}

// Occupies returns true if the booking holds the given slot
func (b *Booking) Occupies(date types.DateString, start types.TimeString) bool {
	return b.IsActive() && b.BookingDate == date && b.StartTime == start
}

// IsValidBookingStatus checks that the value is one of the known statuses
func IsValidBookingStatus(s BookingStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// BookingsFilter фильтр для выборки бронирований
type BookingsFilter struct {
	UserID           *int64            // Бронирования конкретного пользователя (опционально)
	StartDate        *types.DateString // Начало периода включительно (опционально)
	EndDate          *types.DateString // Конец периода включительно (опционально)
	Status           *BookingStatus    // Фильтр по статусу (опционально)
	IncludeCancelled bool              // Включать ли отменённые бронирования
}

// IsSingleDate возвращает true, если фильтр выбирает ровно один день
func (f BookingsFilter) IsSingleDate() bool {
	return f.StartDate != nil && f.EndDate != nil && *f.StartDate == *f.EndDate
}

// Matches applies the filter to a booking in memory
func (f BookingsFilter) Matches(b *Booking) bool {
	if f.UserID != nil && b.UserID != *f.UserID {
		return false
	}
	if f.StartDate != nil && b.BookingDate.IsBefore(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && b.BookingDate.IsAfter(*f.EndDate) {
		return false
	}
	if f.Status != nil {
		return b.Status == *f.Status
	}
	return f.IncludeCancelled || b.IsActive()
}
