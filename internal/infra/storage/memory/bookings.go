package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/PT-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/PT-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/PT-BookingService/pkg/types"
)

// Clock источник времени для created_at/updated_at
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// BookingStore хранилище бронирований в памяти процесса.
// Возвращает те же ошибки, что и Postgres репозиторий, и так же гарантирует
// не больше одного неотменённого бронирования на (дата, время).
type BookingStore struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]*domain.Booking
	clock    Clock
}

func NewBookingStore() *BookingStore {
	return &BookingStore{
		bookings: make(map[uuid.UUID]*domain.Booking),
		clock:    systemClock{},
	}
}

// WithClock подменяет источник времени
func (s *BookingStore) WithClock(c Clock) *BookingStore {
	s.clock = c
	return s
}

func (s *BookingStore) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bookings[booking.ID]; exists {
		return nil, fmt.Errorf("%w: Create - duplicate id %s", bookingRepo.ErrExecQuery, booking.ID)
	}
	if booking.IsActive() && s.occupiedLocked(booking.BookingDate, booking.StartTime, uuid.Nil) {
		return nil, fmt.Errorf("%w: Create - %s %s", bookingRepo.ErrSlotConflict, booking.BookingDate, booking.StartTime)
	}

	now := s.clock.Now()
	stored := *booking
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.bookings[stored.ID] = &stored

	booking.CreatedAt = now
	booking.UpdatedAt = now
	return booking, nil
}

func (s *BookingStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return copyBooking(b), nil
}

func (s *BookingStore) List(_ context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if filter.Matches(b) {
			result = append(result, copyBooking(b))
		}
	}

	if filter.IsSingleDate() {
		sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	} else {
		sort.Slice(result, func(i, j int) bool {
			return result[i].DateTime().String() > result[j].DateTime().String()
		})
	}
	return result, nil
}

func (s *BookingStore) UpdateStatus(_ context.Context, id uuid.UUID, expected, next domain.BookingStatus) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	if b.Status != expected {
		return nil, bookingRepo.ErrStatusMismatch
	}
	if next != domain.StatusCancelled && !b.IsActive() && s.occupiedLocked(b.BookingDate, b.StartTime, b.ID) {
		return nil, fmt.Errorf("%w: UpdateStatus - %s %s", bookingRepo.ErrSlotConflict, b.BookingDate, b.StartTime)
	}

	b.Status = next
	b.UpdatedAt = s.clock.Now()
	return copyBooking(b), nil
}

// UpdateSlot переносит только неотменённое бронирование
func (s *BookingStore) UpdateSlot(_ context.Context, id uuid.UUID, date types.DateString, start types.TimeString) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	if !b.IsActive() {
		return nil, bookingRepo.ErrStatusMismatch
	}
	if s.occupiedLocked(date, start, b.ID) {
		return nil, fmt.Errorf("%w: UpdateSlot - %s %s", bookingRepo.ErrSlotConflict, date, start)
	}

	b.BookingDate = date
	b.StartTime = start
	b.UpdatedAt = s.clock.Now()
	return copyBooking(b), nil
}

func (s *BookingStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[id]; !ok {
		return bookingRepo.ErrBookingNotFound
	}
	delete(s.bookings, id)
	return nil
}

// occupiedLocked вызывается под s.mu
func (s *BookingStore) occupiedLocked(date types.DateString, start types.TimeString, except uuid.UUID) bool {
	for id, b := range s.bookings {
		if id == except {
			continue
		}
		if b.Occupies(date, start) {
			return true
		}
	}
	return false
}

func copyBooking(b *domain.Booking) *domain.Booking {
	c := *b
	if b.Notes != nil {
		notes := *b.Notes
		c.Notes = &notes
	}
	return &c
}
