package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/PT-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/PT-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/PT-BookingService/internal/integrations/notifications"
	"github.com/m04kA/PT-BookingService/internal/service/availability"
	"github.com/m04kA/PT-BookingService/pkg/clock"
	"github.com/m04kA/PT-BookingService/pkg/txmanager"
	"github.com/m04kA/PT-BookingService/pkg/types"
)

// UseCase use case для переноса бронирования на другие дату и время
type UseCase struct {
	bookingRepo  BookingRepository
	ruleRepo     RuleRepository
	txManager    TransactionManager
	notifier     Notifier
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	ruleRepo RuleRepository,
	txManager TransactionManager,
	notifier Notifier,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = clock.NewSystem(time.Local)
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		ruleRepo:     ruleRepo,
		txManager:    txManager,
		notifier:     notifier,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute переносит бронирование. Статус не меняется.
// Собственное исходное время бронирования не считается занятым.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: id=%s, date=%s, time=%s", req.BookingID, req.Date, req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	var (
		result   *domain.Booking
		previous types.LocalDateTime
	)

	// 2. Проверка и перенос в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Текущее состояние бронирования
		current, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("RescheduleBooking: booking id=%s not found", req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("RescheduleBooking: failed to get booking id=%s: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrStoreUnavailable, err)
		}

		if current.IsCancelled() {
			uc.logger.Warn("RescheduleBooking: booking id=%s is cancelled", req.BookingID)
			return ErrInvalidTransition
		}
		previous = current.DateTime()

		// 2.2. Нельзя перенести на прошедшее время
		if err := validateNotInPast(req.Date, req.StartTime, uc.timeProvider.Now()); err != nil {
			uc.logger.Warn("RescheduleBooking: %v", err)
			return err
		}

		// 2.3. Правила и бронирования на новую дату
		rules, err := uc.ruleRepo.ListByDate(txCtx, req.Date)
		if err != nil {
			uc.logger.Error("RescheduleBooking: failed to get rules: %v", err)
			return fmt.Errorf("%w: failed to get rules: %v", ErrStoreUnavailable, err)
		}

		bookings, err := uc.bookingRepo.List(txCtx, domain.BookingsFilter{
			StartDate: &req.Date,
			EndDate:   &req.Date,
		})
		if err != nil {
			uc.logger.Error("RescheduleBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrStoreUnavailable, err)
		}

		// 2.4. Разрешаем доступность без учёта самого бронирования
		offered, err := availability.Resolve(req.Date, rules, bookings, availability.IgnoreBooking(current.ID))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if !availability.Contains(offered, req.StartTime) {
			uc.logger.Warn("RescheduleBooking: %s %s is not offered, free=%v", req.Date, req.StartTime, offered)
			return ErrSlotUnavailable
		}

		// 2.5. Сохраняем новые дату и время
		updated, err := uc.bookingRepo.UpdateSlot(txCtx, current.ID, req.Date, req.StartTime)
		if err != nil {
			switch {
			case errors.Is(err, bookingRepo.ErrSlotConflict):
				uc.logger.Warn("RescheduleBooking: slot %s %s taken concurrently", req.Date, req.StartTime)
				return fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
			case errors.Is(err, bookingRepo.ErrBookingNotFound):
				return ErrBookingNotFound
			case errors.Is(err, bookingRepo.ErrStatusMismatch):
				uc.logger.Warn("RescheduleBooking: booking id=%s cancelled concurrently", current.ID)
				return ErrInvalidTransition
			}
			uc.logger.Error("RescheduleBooking: failed to update booking id=%s: %v", current.ID, err)
			return fmt.Errorf("%w: failed to update booking: %v", ErrStoreUnavailable, err)
		}

		result = updated
		return nil
	})

	if err != nil {
		return nil, uc.mapTxError(err)
	}

	uc.logger.Info("RescheduleBooking: booking id=%s moved %s -> %s", result.ID, previous, result.DateTime())

	// 3. Уведомляем владельца о старом и новом времени
	uc.notifier.Dispatch(notifications.BookingRescheduled(result, previous.String()))

	return &Response{
		ID:               result.ID,
		UserID:           result.UserID,
		BookingDate:      result.BookingDate,
		StartTime:        result.StartTime,
		PreviousDateTime: previous,
		Status:           string(result.Status),
		Name:             result.Name,
		Email:            result.Email,
		Notes:            result.Notes,
		CreatedAt:        result.CreatedAt,
		UpdatedAt:        result.UpdatedAt,
	}, nil
}

// mapTxError приводит ошибки транзакции к ошибкам use case
func (uc *UseCase) mapTxError(err error) error {
	switch {
	case errors.Is(err, ErrBookingNotFound),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrSlotUnavailable),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrDateInPast),
		errors.Is(err, ErrStoreUnavailable):
		return err
	case errors.Is(err, txmanager.ErrSerializationFailure):
		uc.logger.Warn("RescheduleBooking: serialization failure, slot taken concurrently: %v", err)
		return fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
	default:
		uc.logger.Error("RescheduleBooking: transaction failed: %v", err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
