package get_available_slots

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/PT-BookingService/internal/domain"
	"github.com/m04kA/PT-BookingService/internal/infra/storage/memory"
	"github.com/m04kA/PT-BookingService/pkg/clock"
	"github.com/m04kA/PT-BookingService/pkg/logger"
	"github.com/m04kA/PT-BookingService/pkg/ptr"
	"github.com/m04kA/PT-BookingService/pkg/types"
)

// 2024-07-01 - понедельник
const monday types.DateString = "2024-07-01"

type failingRules struct{}

func (failingRules) ListByDate(context.Context, types.DateString) ([]*domain.AvailabilityRule, error) {
	return nil, errors.New("connection refused")
}

func setup(t *testing.T, now time.Time) (*UseCase, *memory.RuleStore, *memory.BookingStore) {
	t.Helper()

	rules := memory.NewRuleStore()
	bookings := memory.NewBookingStore()
	ctx := context.Background()

	for start, end := range map[types.TimeString]types.TimeString{"09:00": "10:00", "10:00": "11:00", "18:00": "19:00"} {
		_, err := rules.Create(ctx, &domain.AvailabilityRule{
			ID:          uuid.New(),
			DayOfWeek:   ptr.Ptr(int(time.Monday)),
			StartTime:   start,
			EndTime:     end,
			IsAvailable: true,
		})
		require.NoError(t, err)
	}

	uc := NewUseCase(rules, bookings, clock.NewFixed(now), logger.NewWithWriter(io.Discard, "error"))
	return uc, rules, bookings
}

func TestExecute_FutureDate(t *testing.T) {
	uc, _, bookings := setup(t, time.Date(2024, 6, 28, 12, 0, 0, 0, time.UTC))

	_, err := bookings.Create(context.Background(), &domain.Booking{
		ID: uuid.New(), UserID: 1, BookingDate: monday, StartTime: "10:00",
		Status: domain.StatusConfirmed, Name: "Client", Email: "client@example.com",
	})
	require.NoError(t, err)

	resp, err := uc.Execute(context.Background(), &Request{Date: monday})
	require.NoError(t, err)
	assert.Equal(t, monday, resp.Date)
	assert.Equal(t, []types.TimeString{"09:00", "18:00"}, resp.Slots)
}

func TestExecute_TodayHidesStartedTimes(t *testing.T) {
	uc, _, _ := setup(t, time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{Date: monday})
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"18:00"}, resp.Slots)
}

func TestExecute_PastDateIsEmpty(t *testing.T) {
	uc, _, _ := setup(t, time.Date(2024, 7, 2, 8, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{Date: monday})
	require.NoError(t, err)
	require.NotNil(t, resp.Slots)
	assert.Empty(t, resp.Slots)
}

func TestExecute_NoRulesIsEmpty(t *testing.T) {
	uc, _, _ := setup(t, time.Date(2024, 6, 28, 12, 0, 0, 0, time.UTC))

	// 2024-07-02 - вторник, правил нет
	resp, err := uc.Execute(context.Background(), &Request{Date: "2024-07-02"})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_InvalidDate(t *testing.T) {
	uc, _, _ := setup(t, time.Now())

	for _, date := range []types.DateString{"", "2024-13-01", "01.07.2024"} {
		_, err := uc.Execute(context.Background(), &Request{Date: date})
		assert.ErrorIs(t, err, ErrInvalidInput, "date %q", date)
	}
}

func TestExecute_StoreUnavailable(t *testing.T) {
	uc := NewUseCase(failingRules{}, memory.NewBookingStore(), clock.NewFixed(time.Now()),
		logger.NewWithWriter(io.Discard, "error"))

	_, err := uc.Execute(context.Background(), &Request{Date: monday})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
