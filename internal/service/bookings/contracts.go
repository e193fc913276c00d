package bookings

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/PT-BookingService/internal/domain"
	"github.com/m04kA/PT-BookingService/internal/integrations/notifications"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next domain.BookingStatus) (*domain.Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Notifier принимает события для асинхронной отправки
type Notifier interface {
	Dispatch(ev notifications.Event)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
