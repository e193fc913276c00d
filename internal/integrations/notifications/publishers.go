package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/PT-BookingService/pkg/metrics"
)

// JSONPublisher публикует JSON по ключу маршрутизации (*mq.Publisher)
type JSONPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// BrokerPublisher отправляет события в topic exchange RabbitMQ,
// тип события используется как ключ маршрутизации
type BrokerPublisher struct {
	client JSONPublisher
}

func NewBrokerPublisher(client JSONPublisher) *BrokerPublisher {
	return &BrokerPublisher{client: client}
}

func (p *BrokerPublisher) Publish(ctx context.Context, ev Event) error {
	if err := p.client.PublishJSON(ctx, string(ev.Type), ev); err != nil {
		return fmt.Errorf("%w: rabbitmq %s: %v", ErrPublish, ev.Type, err)
	}
	return nil
}

// RedisPublisher публикует события в канал Redis Pub/Sub
type RedisPublisher struct {
	client  redis.Cmdable
	channel string
}

func NewRedisPublisher(client redis.Cmdable, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrPublish, ev.Type, err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("%w: redis channel %s: %v", ErrPublish, p.channel, err)
	}
	return nil
}

// LogPublisher только пишет событие в лог (локальная разработка)
type LogPublisher struct {
	logger Logger
}

func NewLogPublisher(logger Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, ev Event) error {
	if ev.PreviousDateTime != "" {
		p.logger.Info("Notification %s: booking id=%s user=%d %s -> %s <%s>",
			ev.Type, ev.Booking.ID, ev.Booking.UserID, ev.PreviousDateTime, ev.Booking.DateTime, ev.Booking.Email)
		return nil
	}
	p.logger.Info("Notification %s: booking id=%s user=%d at %s <%s>",
		ev.Type, ev.Booking.ID, ev.Booking.UserID, ev.Booking.DateTime, ev.Booking.Email)
	return nil
}

// PrometheusRecorder считает исходы доставки в booking_notifications_total
type PrometheusRecorder struct {
	metrics *metrics.Metrics
}

func NewPrometheusRecorder(m *metrics.Metrics) *PrometheusRecorder {
	return &PrometheusRecorder{metrics: m}
}

func (r *PrometheusRecorder) Record(event EventType, result string) {
	r.metrics.NotificationsTotal.WithLabelValues(string(event), result).Inc()
}
