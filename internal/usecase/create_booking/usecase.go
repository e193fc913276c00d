package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/PT-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/PT-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/PT-BookingService/internal/integrations/notifications"
	"github.com/m04kA/PT-BookingService/internal/service/availability"
	"github.com/m04kA/PT-BookingService/pkg/clock"
	"github.com/m04kA/PT-BookingService/pkg/txmanager"
)

// UseCase use case для создания бронирования
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

// Execute выполняет use case создания бронирования.
// Доступность пересчитывается внутри сериализуемой транзакции непосредственно перед вставкой,
// а уникальный индекс хранилища гарантирует одного победителя при гонке.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, date=%s, time=%s", req.UserID, req.Date, req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Нельзя записаться на прошедшее время
	if err := validateNotInPast(req.Date, req.StartTime, uc.timeProvider.Now()); err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, err
	}

	var result *domain.Booking

	// 3. Выполняем операции с хранилищем в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Правила на дату
		rules, err := uc.ruleRepo.ListByDate(txCtx, req.Date)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get rules: %v", err)
			return fmt.Errorf("%w: failed to get rules: %v", ErrStoreUnavailable, err)
		}

		// 3.2. Неотменённые бронирования на дату (FOR UPDATE внутри транзакции)
		bookings, err := uc.bookingRepo.List(txCtx, domain.BookingsFilter{
			StartDate: &req.Date,
			EndDate:   &req.Date,
		})
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrStoreUnavailable, err)
		}

		// 3.3. Повторно разрешаем доступность
		offered, err := availability.Resolve(req.Date, rules, bookings)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if !availability.Contains(offered, req.StartTime) {
			uc.logger.Warn("CreateBooking: %s %s is not offered, free=%v", req.Date, req.StartTime, offered)
			return ErrSlotUnavailable
		}

		// 3.4. Сохраняем бронирование
		booking := &domain.Booking{
			ID:          uuid.New(),
			UserID:      req.UserID,
			BookingDate: req.Date,
			StartTime:   req.StartTime,
			Status:      domain.StatusPending,
			Name:        strings.TrimSpace(req.Name),
			Email:       strings.TrimSpace(req.Email),
			Notes:       req.Notes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotConflict) {
				uc.logger.Warn("CreateBooking: slot %s %s taken concurrently", req.Date, req.StartTime)
				return fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrStoreUnavailable, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, uc.mapTxError(err)
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%s", result.ID)

	// 4. Уведомление не влияет на результат операции
	uc.notifier.Dispatch(notifications.BookingCreated(result))

	return toResponse(result), nil
}

// mapTxError приводит ошибки транзакции к ошибкам use case
func (uc *UseCase) mapTxError(err error) error {
	switch {
	case errors.Is(err, ErrSlotUnavailable),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrStoreUnavailable):
		return err
	case errors.Is(err, txmanager.ErrSerializationFailure):
		uc.logger.Warn("CreateBooking: serialization failure, slot taken concurrently: %v", err)
		return fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
	default:
		uc.logger.Error("CreateBooking: transaction failed: %v", err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}

func toResponse(b *domain.Booking) *Response {
	return &Response{
		ID:          b.ID,
		UserID:      b.UserID,
		BookingDate: b.BookingDate,
		StartTime:   b.StartTime,
		Status:      string(b.Status),
		Name:        b.Name,
		Email:       b.Email,
		Notes:       b.Notes,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
