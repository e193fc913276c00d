package create_booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/PT-BookingService/internal/domain"
	"github.com/m04kA/PT-BookingService/internal/infra/storage/memory"
	"github.com/m04kA/PT-BookingService/internal/integrations/notifications"
	"github.com/m04kA/PT-BookingService/internal/service/availability"
	"github.com/m04kA/PT-BookingService/pkg/clock"
	"github.com/m04kA/PT-BookingService/pkg/logger"
	"github.com/m04kA/PT-BookingService/pkg/ptr"
	"github.com/m04kA/PT-BookingService/pkg/txmanager"
	"github.com/m04kA/PT-BookingService/pkg/types"
)

// 2024-07-01 - понедельник
const monday types.DateString = "2024-07-01"

var now = time.Date(2024, 6, 28, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (n *recordingNotifier) Dispatch(ev notifications.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) Events() []notifications.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifications.Event(nil), n.events...)
}

type serializationFailureTx struct{}

// DoSerializable откатывает транзакцию до фиксации, fn не оставляет следов
func (serializationFailureTx) DoSerializable(context.Context, func(ctx context.Context) error) error {
	return fmt.Errorf("%w: %v", txmanager.ErrSerializationFailure, &pq.Error{Code: "40001"})
}

type fixture struct {
	uc       *UseCase
	rules    *memory.RuleStore
	bookings *memory.BookingStore
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		rules:    memory.NewRuleStore(),
		bookings: memory.NewBookingStore(),
		notifier: &recordingNotifier{},
	}
	_, err := f.rules.Create(context.Background(), &domain.AvailabilityRule{
		ID:          uuid.New(),
		DayOfWeek:   ptr.Ptr(int(time.Monday)),
		StartTime:   "09:00",
		EndTime:     "10:00",
		IsAvailable: true,
	})
	require.NoError(t, err)

	f.uc = NewUseCase(f.bookings, f.rules, txmanager.Noop{}, f.notifier, clock.NewFixed(now),
		logger.NewWithWriter(io.Discard, "error"))
	return f
}

func validRequest() *Request {
	return &Request{
		UserID:    42,
		Date:      monday,
		StartTime: "09:00",
		Name:      "Anna",
		Email:     "anna@example.com",
		Notes:     ptr.Ptr("knee injury"),
	}
}

func TestExecute_CreatesPendingBooking(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, monday, resp.BookingDate)
	assert.Equal(t, types.TimeString("09:00"), resp.StartTime)
	assert.Equal(t, "knee injury", *resp.Notes)

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notifications.EventBookingCreated, events[0].Type)
	assert.Equal(t, resp.ID.String(), events[0].Booking.ID)
}

func TestExecute_CreatedTimeIsNoLongerOffered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, validRequest())
	require.NoError(t, err)

	rules, err := f.rules.ListByDate(ctx, monday)
	require.NoError(t, err)
	bookings, err := f.bookings.List(ctx, domain.BookingsFilter{StartDate: ptr.Ptr(monday), EndDate: ptr.Ptr(monday)})
	require.NoError(t, err)

	offered, err := availability.Resolve(monday, rules, bookings)
	require.NoError(t, err)
	assert.NotContains(t, offered, types.TimeString("09:00"))
}

func TestExecute_SecondBookingForSameSlot(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.UserID = 7
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Len(t, f.notifier.Events(), 1)
}

func TestExecute_TimeNotOffered(t *testing.T) {
	f := newFixture(t)

	req := validRequest()
	req.StartTime = "11:00"
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Empty(t, f.notifier.Events())
}

func TestExecute_ConcurrentCreatesHaveOneWinner(t *testing.T) {
	f := newFixture(t)

	const workers = 16
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		successes   int
		unavailable int
	)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			<-start

			req := validRequest()
			req.UserID = userID
			_, err := f.uc.Execute(context.Background(), req)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotUnavailable):
				unavailable++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(i + 1))
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, unavailable)

	active, err := f.bookings.List(context.Background(), domain.BookingsFilter{StartDate: ptr.Ptr(monday), EndDate: ptr.Ptr(monday)})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestExecute_SerializationFailureIsSlotUnavailable(t *testing.T) {
	f := newFixture(t)
	f.uc.txManager = serializationFailureTx{}

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Empty(t, f.notifier.Events())

	stored, err := f.bookings.List(context.Background(), domain.BookingsFilter{IncludeCancelled: true})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestExecute_RejectsPast(t *testing.T) {
	f := newFixture(t)

	f.uc.timeProvider = clock.NewFixed(time.Date(2024, 7, 2, 8, 0, 0, 0, time.UTC))
	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrDateInPast)

	f.uc.timeProvider = clock.NewFixed(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
	_, err = f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrDateInPast)

	f.uc.timeProvider = clock.NewFixed(time.Date(2024, 7, 1, 8, 59, 0, 0, time.UTC))
	_, err = f.uc.Execute(context.Background(), validRequest())
	assert.NoError(t, err)
}

func TestExecute_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"no user", func(r *Request) { r.UserID = 0 }},
		{"bad date", func(r *Request) { r.Date = "2024-02-30" }},
		{"bad time", func(r *Request) { r.StartTime = "9:00" }},
		{"empty name", func(r *Request) { r.Name = "  " }},
		{"empty email", func(r *Request) { r.Email = "\t" }},
		{"long notes", func(r *Request) { r.Notes = ptr.Ptr(string(make([]byte, domain.MaxNotesLength+1))) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExecute_NameAndEmailOnlyNeedToBeNonEmpty(t *testing.T) {
	f := newFixture(t)

	req := validRequest()
	req.Name = strings.Repeat("Хлоя ", 100)
	req.Email = "chloe at example"

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "chloe at example", resp.Email)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
}
