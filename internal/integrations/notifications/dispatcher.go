package notifications

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultQueueSize      = 100
	DefaultPublishTimeout = 5 * time.Second
)

// Результаты доставки для метрик
const (
	ResultDelivered = "delivered"
	ResultFailed    = "failed"
	ResultDropped   = "dropped"
)

// Dispatcher асинхронно доставляет события через Publisher.
// Dispatch никогда не блокирует вызывающего: при переполненной очереди событие
// отбрасывается с записью в лог. Ошибки доставки только логируются.
type Dispatcher struct {
	publisher Publisher
	recorder  Recorder
	logger    Logger
	timeout   time.Duration

	queue chan Event
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// Option настраивает Dispatcher
type Option func(*Dispatcher)

func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Event, n)
		}
	}
}

func WithPublishTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// NewDispatcher создаёт диспетчер и запускает воркер
func NewDispatcher(publisher Publisher, logger Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		publisher: publisher,
		logger:    logger,
		timeout:   DefaultPublishTimeout,
		queue:     make(chan Event, DefaultQueueSize),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}

	go d.worker()
	return d
}

// Dispatch ставит событие в очередь
func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("Notifications: dispatcher closed, dropping %s for booking id=%s", ev.Type, ev.Booking.ID)
		d.record(ev.Type, ResultDropped)
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.logger.Warn("Notifications: queue full, dropping %s for booking id=%s", ev.Type, ev.Booking.ID)
		d.record(ev.Type, ResultDropped)
	}
}

// Close перестаёт принимать события и ждёт доставки уже поставленных в очередь
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, ev); err != nil {
		d.logger.Error("Notifications: failed to publish %s for booking id=%s: %v", ev.Type, ev.Booking.ID, err)
		d.record(ev.Type, ResultFailed)
		return
	}

	d.logger.Info("Notifications: published %s for booking id=%s", ev.Type, ev.Booking.ID)
	d.record(ev.Type, ResultDelivered)
}

func (d *Dispatcher) record(t EventType, result string) {
	if d.recorder != nil {
		d.recorder.Record(t, result)
	}
}
