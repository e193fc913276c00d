package get_available_slots

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/PT-BookingService/internal/domain"
	"github.com/m04kA/PT-BookingService/internal/service/availability"
	"github.com/m04kA/PT-BookingService/pkg/clock"
)

// UseCase use case для получения доступных для записи времён на дату
type UseCase struct {
	ruleRepo     RuleRepository
	bookingRepo  BookingRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	ruleRepo RuleRepository,
	bookingRepo BookingRepository,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = clock.NewSystem(time.Local)
	}
	return &UseCase{
		ruleRepo:     ruleRepo,
		bookingRepo:  bookingRepo,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: date=%s", req.Date)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Правила, применимые к дате
	rules, err := uc.ruleRepo.ListByDate(ctx, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get rules for date=%s: %v", req.Date, err)
		return nil, fmt.Errorf("%w: failed to get rules: %v", ErrStoreUnavailable, err)
	}

	// 3. Неотменённые бронирования на дату
	bookings, err := uc.bookingRepo.List(ctx, domain.BookingsFilter{
		StartDate: &req.Date,
		EndDate:   &req.Date,
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings for date=%s: %v", req.Date, err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrStoreUnavailable, err)
	}

	// 4. Разрешаем доступность
	slots, err := availability.Resolve(req.Date, rules, bookings)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: resolve failed for date=%s: %v", req.Date, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 5. Уже начавшиеся времена не предлагаем
	slots = dropStarted(req.Date, slots, uc.timeProvider.Now())

	uc.logger.Info("GetAvailableSlots: date=%s, rules=%d, bookings=%d, slots=%d",
		req.Date, len(rules), len(bookings), len(slots))

	return &Response{
		Date:  req.Date,
		Slots: slots,
	}, nil
}
