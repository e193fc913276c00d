package reschedule_booking

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/PT-BookingService/internal/domain"
	"github.com/m04kA/PT-BookingService/internal/infra/storage/memory"
	"github.com/m04kA/PT-BookingService/internal/integrations/notifications"
	"github.com/m04kA/PT-BookingService/pkg/clock"
	"github.com/m04kA/PT-BookingService/pkg/logger"
	"github.com/m04kA/PT-BookingService/pkg/ptr"
	"github.com/m04kA/PT-BookingService/pkg/txmanager"
	"github.com/m04kA/PT-BookingService/pkg/types"
)

// 2024-07-01 - понедельник
const monday types.DateString = "2024-07-01"

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (n *recordingNotifier) Dispatch(ev notifications.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

type fixture struct {
	uc       *UseCase
	bookings *memory.BookingStore
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	rules := memory.NewRuleStore()
	for start, end := range map[types.TimeString]types.TimeString{"09:00": "10:00", "10:00": "11:00", "11:00": "12:00"} {
		_, err := rules.Create(context.Background(), &domain.AvailabilityRule{
			ID:          uuid.New(),
			DayOfWeek:   ptr.Ptr(int(time.Monday)),
			StartTime:   start,
			EndTime:     end,
			IsAvailable: true,
		})
		require.NoError(t, err)
	}

	f := &fixture{
		bookings: memory.NewBookingStore(),
		notifier: &recordingNotifier{},
	}
	f.uc = NewUseCase(f.bookings, rules, txmanager.Noop{}, f.notifier,
		clock.NewFixed(time.Date(2024, 6, 28, 12, 0, 0, 0, time.UTC)),
		logger.NewWithWriter(io.Discard, "error"))
	return f
}

func (f *fixture) book(t *testing.T, start types.TimeString, status domain.BookingStatus) *domain.Booking {
	t.Helper()
	b, err := f.bookings.Create(context.Background(), &domain.Booking{
		ID:          uuid.New(),
		UserID:      42,
		BookingDate: monday,
		StartTime:   start,
		Status:      status,
		Name:        "Anna",
		Email:       "anna@example.com",
	})
	require.NoError(t, err)
	return b
}

func TestExecute_MovesConfirmedBookingKeepingStatus(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "09:00", domain.StatusConfirmed)

	resp, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, Date: monday, StartTime: "10:00"})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, monday, resp.BookingDate)
	assert.Equal(t, types.TimeString("10:00"), resp.StartTime)
	assert.Equal(t, "2024-07-01T09:00", resp.PreviousDateTime.String())

	stored, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("10:00"), stored.StartTime)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)

	require.Len(t, f.notifier.events, 1)
	ev := f.notifier.events[0]
	assert.Equal(t, notifications.EventBookingRescheduled, ev.Type)
	assert.Equal(t, "2024-07-01T09:00", ev.PreviousDateTime)
	assert.Equal(t, "2024-07-01T10:00", ev.Booking.DateTime)
}

func TestExecute_OwnSlotIsNotConsideredTaken(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "09:00", domain.StatusPending)

	resp, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, Date: monday, StartTime: "09:00"})
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("09:00"), resp.StartTime)
}

func TestExecute_TakenSlot(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "09:00", domain.StatusPending)
	f.book(t, "10:00", domain.StatusConfirmed)

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, Date: monday, StartTime: "10:00"})
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// время, не открытое правилами
	_, err = f.uc.Execute(context.Background(), &Request{BookingID: b.ID, Date: monday, StartTime: "15:00"})
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	stored, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("09:00"), stored.StartTime)
	assert.Empty(t, f.notifier.events)
}

func TestExecute_CancelledBookingFreesItsSlot(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "09:00", domain.StatusPending)
	f.book(t, "10:00", domain.StatusCancelled)

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, Date: monday, StartTime: "10:00"})
	assert.NoError(t, err)
}

func TestExecute_CancelledBookingCannotMove(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "09:00", domain.StatusCancelled)

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, Date: monday, StartTime: "10:00"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestExecute_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: uuid.New(), Date: monday, StartTime: "10:00"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_PastAndInvalid(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "09:00", domain.StatusPending)

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, Date: "2024-06-24", StartTime: "10:00"})
	assert.ErrorIs(t, err, ErrDateInPast)

	_, err = f.uc.Execute(context.Background(), &Request{BookingID: b.ID, Date: monday, StartTime: "25:00"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{Date: monday, StartTime: "10:00"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// cancellingStore отменяет бронирование сразу после чтения, как конкурентный cancel
type cancellingStore struct {
	*memory.BookingStore
}

func (s cancellingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	b, err := s.BookingStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.BookingStore.UpdateStatus(ctx, id, b.Status, domain.StatusCancelled); err != nil {
		return nil, err
	}
	return b, nil
}

func TestExecute_CancelledBetweenReadAndUpdate(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "09:00", domain.StatusPending)

	rules := memory.NewRuleStore()
	_, err := rules.Create(context.Background(), &domain.AvailabilityRule{
		ID:          uuid.New(),
		DayOfWeek:   ptr.Ptr(int(time.Monday)),
		StartTime:   "10:00",
		EndTime:     "11:00",
		IsAvailable: true,
	})
	require.NoError(t, err)

	uc := NewUseCase(cancellingStore{f.bookings}, rules, txmanager.Noop{}, f.notifier,
		clock.NewFixed(time.Date(2024, 6, 28, 12, 0, 0, 0, time.UTC)),
		logger.NewWithWriter(io.Discard, "error"))

	_, err = uc.Execute(context.Background(), &Request{BookingID: b.ID, Date: monday, StartTime: "10:00"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.Equal(t, types.TimeString("09:00"), stored.StartTime)
	assert.Empty(t, f.notifier.events)
}

func TestExecute_NotFoundBeforePastCheck(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: uuid.New(), Date: "2000-01-03", StartTime: "10:00"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
