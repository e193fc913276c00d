package notifications

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/PT-BookingService/internal/domain"
	"github.com/m04kA/PT-BookingService/pkg/logger"
	"github.com/m04kA/PT-BookingService/pkg/metrics"
)

type recordingPublisher struct {
	mu      sync.Mutex
	events  []Event
	err     error
	release chan struct{}
}

func (p *recordingPublisher) Publish(ctx context.Context, ev Event) error {
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

type jsonPublisherFunc func(ctx context.Context, key string, v any) error

func (f jsonPublisherFunc) PublishJSON(ctx context.Context, key string, v any) error {
	return f(ctx, key, v)
}

func testBooking() *domain.Booking {
	notes := "first session"
	return &domain.Booking{
		ID:          uuid.New(),
		UserID:      42,
		BookingDate: "2024-07-01",
		StartTime:   "09:00",
		Status:      domain.StatusPending,
		Name:        "Client",
		Email:       "client@example.com",
		Notes:       &notes,
	}
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, "debug")
}

func TestDispatcher_DeliversInOrderAndDrainsOnClose(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(pub, testLogger())

	b := testBooking()
	d.Dispatch(BookingCreated(b))
	d.Dispatch(BookingRescheduled(b, "2024-06-30T10:00"))
	d.Dispatch(BookingCancelled(b))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	events := pub.Events()
	require.Len(t, events, 3)
	assert.Equal(t, EventBookingCreated, events[0].Type)
	assert.Equal(t, EventBookingRescheduled, events[1].Type)
	assert.Equal(t, "2024-06-30T10:00", events[1].PreviousDateTime)
	assert.Equal(t, "2024-07-01T09:00", events[1].Booking.DateTime)
	assert.Equal(t, EventBookingCancelled, events[2].Type)
	assert.Equal(t, "first session", events[2].Booking.Notes)
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry("test", reg)

	pub := &recordingPublisher{release: make(chan struct{})}
	d := NewDispatcher(pub, testLogger(), WithQueueSize(1), WithRecorder(NewPrometheusRecorder(m)))

	b := testBooking()
	// первое событие забирает воркер и блокируется в Publish,
	// второе занимает очередь, остальные отбрасываются
	d.Dispatch(BookingCreated(b))
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, time.Millisecond)
	d.Dispatch(BookingCreated(b))
	d.Dispatch(BookingCreated(b))
	d.Dispatch(BookingCreated(b))

	close(pub.release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	assert.Len(t, pub.Events(), 2)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.NotificationsTotal.WithLabelValues(string(EventBookingCreated), ResultDropped)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.NotificationsTotal.WithLabelValues(string(EventBookingCreated), ResultDelivered)))
}

func TestDispatcher_PublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	d := NewDispatcher(pub, testLogger())

	d.Dispatch(BookingConfirmed(testBooking()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
	assert.Len(t, pub.Events(), 1)
}

func TestDispatcher_DispatchAfterCloseIsDropped(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(pub, testLogger())

	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	assert.NotPanics(t, func() { d.Dispatch(BookingCreated(testBooking())) })
	assert.Empty(t, pub.Events())
}

func TestBrokerPublisher_UsesEventTypeAsRoutingKey(t *testing.T) {
	var gotKey string
	var gotValue any
	p := NewBrokerPublisher(jsonPublisherFunc(func(_ context.Context, key string, v any) error {
		gotKey, gotValue = key, v
		return nil
	}))

	ev := BookingCancelled(testBooking())
	require.NoError(t, p.Publish(context.Background(), ev))
	assert.Equal(t, "booking.cancelled", gotKey)
	assert.Equal(t, ev, gotValue)

	failing := NewBrokerPublisher(jsonPublisherFunc(func(context.Context, string, any) error {
		return errors.New("channel closed")
	}))
	assert.ErrorIs(t, failing.Publish(context.Background(), ev), ErrPublish)
}
