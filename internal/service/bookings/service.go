package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/PT-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/PT-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/PT-BookingService/internal/integrations/notifications"
	"github.com/m04kA/PT-BookingService/internal/service/bookings/models"
)

// maxTransitionAttempts ограничивает повторы compare-and-set при конкурентной смене статуса
const maxTransitionAttempts = 3

// Service сервис жизненного цикла бронирований
type Service struct {
	bookingRepo BookingRepository
	notifier    Notifier
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	notifier Notifier,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
// Пользователь видит только своё бронирование, администратор - любое
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s for user=%d", id, actor.UserID)

	booking, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(booking) {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%s", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя, включая отменённые
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest, actor domain.Actor) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	if req.UserID <= 0 {
		return nil, fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}
	if !actor.IsAdmin && actor.UserID != req.UserID {
		s.logger.Warn("GetUserBookings: access denied for user=%d to bookings of user=%d", actor.UserID, req.UserID)
		return nil, ErrAccessDenied
	}

	filter := domain.BookingsFilter{
		UserID:           &req.UserID,
		IncludeCancelled: true,
	}
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrStoreUnavailable, err)
	}

	s.logger.Info("GetUserBookings: fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// ListBookings получает бронирования по периоду и статусу (администратор)
//
// Примеры:
// - Все активные: пустой запрос
// - На дату: StartDate и EndDate указывают на одну дату
// - Включая отменённые: IncludeCancelled = true
func (s *Service) ListBookings(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("ListBookings: start=%v, end=%v, status=%v, includeCancelled=%t",
		req.StartDate, req.EndDate, req.Status, req.IncludeCancelled)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListBookings: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ListBookings: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListBookings - repository error: %v", ErrStoreUnavailable, err)
	}

	s.logger.Info("ListBookings: fetched %d bookings", len(bookings))
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование владельцем или администратором.
// Повторная отмена возвращает ErrAlreadyCancelled и ничего не меняет.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%s by user=%d", id, actor.UserID)

	cancelled, err := s.transition(ctx, "Cancel", id, domain.StatusCancelled, func(b *domain.Booking) error {
		if !actor.CanAccess(b) {
			s.logger.Warn("Cancel: access denied for user=%d to booking id=%s", actor.UserID, id)
			return ErrAccessDenied
		}
		if b.IsCancelled() {
			s.logger.Warn("Cancel: booking id=%s is already cancelled", id)
			return ErrAlreadyCancelled
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%s", id)
	s.notifier.Dispatch(notifications.BookingCancelled(cancelled))

	return models.FromDomainBooking(cancelled), nil
}

// UpdateStatus меняет статус бронирования (администратор).
// Допустимы pending -> confirmed и pending|confirmed -> cancelled.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: updating booking id=%s to status=%s", id, req.Status)

	next, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%s", req.Status, id)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	updated, err := s.transition(ctx, "UpdateStatus", id, next, func(b *domain.Booking) error {
		if !b.CanTransitionTo(next) {
			s.logger.Warn("UpdateStatus: booking id=%s cannot go %s -> %s", id, b.Status, next)
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, next)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("UpdateStatus: booking id=%s is now %s", id, updated.Status)

	switch updated.Status {
	case domain.StatusConfirmed:
		s.notifier.Dispatch(notifications.BookingConfirmed(updated))
	case domain.StatusCancelled:
		s.notifier.Dispatch(notifications.BookingCancelled(updated))
	}

	return models.FromDomainBooking(updated), nil
}

// Delete удаляет бронирование без смены статуса (администратор)
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	s.logger.Info("Delete: deleting booking id=%s", id)

	if err := s.bookingRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Delete: booking id=%s not found", id)
			return ErrBookingNotFound
		}
		s.logger.Error("Delete: repository error for booking id=%s: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrStoreUnavailable, err)
	}

	s.logger.Info("Delete: successfully deleted booking id=%s", id)
	return nil
}

// Вспомогательные методы

// get читает бронирование и приводит ошибки репозитория к ошибкам сервиса
func (s *Service) get(ctx context.Context, op string, id uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%s not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrStoreUnavailable, op, err)
	}
	return booking, nil
}

// transition меняет статус через compare-and-set по прочитанному статусу.
// Если статус успели изменить, бронирование перечитывается и guard проверяется заново.
func (s *Service) transition(
	ctx context.Context,
	op string,
	id uuid.UUID,
	next domain.BookingStatus,
	guard func(b *domain.Booking) error,
) (*domain.Booking, error) {
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		booking, err := s.get(ctx, op, id)
		if err != nil {
			return nil, err
		}

		if err := guard(booking); err != nil {
			return nil, err
		}

		updated, err := s.bookingRepo.UpdateStatus(ctx, id, booking.Status, next)
		switch {
		case err == nil:
			return updated, nil
		case errors.Is(err, bookingRepo.ErrStatusMismatch):
			s.logger.Warn("%s: booking id=%s changed concurrently, re-reading", op, id)
			continue
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			s.logger.Warn("%s: booking id=%s deleted concurrently", op, id)
			return nil, ErrBookingNotFound
		default:
			s.logger.Error("%s: repository error for booking id=%s: %v", op, id, err)
			return nil, fmt.Errorf("%w: %s - repository error: %v", ErrStoreUnavailable, op, err)
		}
	}

	return nil, fmt.Errorf("%w: %s - booking id=%s keeps changing", ErrInvalidTransition, op, id)
}
