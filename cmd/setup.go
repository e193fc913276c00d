package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/PT-BookingService/internal/config"
	bookingRepo "github.com/m04kA/PT-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/PT-BookingService/internal/infra/storage/memory"
	ruleRepo "github.com/m04kA/PT-BookingService/internal/infra/storage/rule"
	"github.com/m04kA/PT-BookingService/internal/integrations/notifications"
	bookingsService "github.com/m04kA/PT-BookingService/internal/service/bookings"
	rulesService "github.com/m04kA/PT-BookingService/internal/service/rules"
	createBookingUC "github.com/m04kA/PT-BookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/PT-BookingService/internal/usecase/get_available_slots"
	rescheduleBookingUC "github.com/m04kA/PT-BookingService/internal/usecase/reschedule_booking"
	"github.com/m04kA/PT-BookingService/migrations"
	"github.com/m04kA/PT-BookingService/pkg/dbmetrics"
	"github.com/m04kA/PT-BookingService/pkg/logger"
	"github.com/m04kA/PT-BookingService/pkg/metrics"
	"github.com/m04kA/PT-BookingService/pkg/mq"
	"github.com/m04kA/PT-BookingService/pkg/txmanager"
)

// bookingStore объединяет то, что нужно от хранилища бронирований всем потребителям
type bookingStore interface {
	createBookingUC.BookingRepository
	rescheduleBookingUC.BookingRepository
	getAvailableSlotsUC.BookingRepository
	bookingsService.BookingRepository
}

type ruleStore interface {
	createBookingUC.RuleRepository
	getAvailableSlotsUC.RuleRepository
	rulesService.RuleRepository
}

type txManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

type storage struct {
	bookings bookingStore
	rules    ruleStore
	tx       txManager
	close    func()
}

// setupStorage поднимает хранилище по storage.driver
func setupStorage(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("Using in-memory storage, data is lost on restart")
		return &storage{
			bookings: memory.NewBookingStore(),
			rules:    memory.NewRuleStore(),
			tx:       txmanager.Noop{},
			close:    func() {},
		}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(context.Background(), db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		log.Info("Database migrations applied")
	}

	// С nil метриками обёртка работает как обычный *sql.DB
	stopStats := make(chan struct{})
	wrappedDB := dbmetrics.WrapWithDefault(db, m, stopStats)
	if m != nil {
		log.Info("Database metrics collection started")
	}

	return &storage{
		bookings: bookingRepo.NewRepository(wrappedDB),
		rules:    ruleRepo.NewRepository(wrappedDB),
		tx:       txmanager.NewTransactionManager(wrappedDB),
		close: func() {
			close(stopStats)
			_ = db.Close()
		},
	}, nil
}

// setupNotifications создаёт диспетчер уведомлений по notifications.driver
func setupNotifications(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*notifications.Dispatcher, func(), error) {
	var (
		publisher notifications.Publisher
		closeFn   = func() {}
	)

	switch cfg.Notifications.Driver {
	case config.NotificationsDriverRabbitMQ:
		client, err := mq.NewPublisher(cfg.Notifications.RabbitMQ.URL, cfg.Notifications.RabbitMQ.Exchange)
		if err != nil {
			return nil, nil, err
		}
		publisher = notifications.NewBrokerPublisher(client)
		closeFn = func() { _ = client.Close() }
		log.Info("Notifications published to RabbitMQ exchange %s", cfg.Notifications.RabbitMQ.Exchange)

	case config.NotificationsDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Notifications.Redis.Addr,
			Password: cfg.Notifications.Redis.Password,
			DB:       cfg.Notifications.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		publisher = notifications.NewRedisPublisher(client, cfg.Notifications.Redis.Channel)
		closeFn = func() { _ = client.Close() }
		log.Info("Notifications published to Redis channel %s", cfg.Notifications.Redis.Channel)

	default:
		publisher = notifications.NewLogPublisher(log)
		log.Info("Notifications written to log")
	}

	opts := []notifications.Option{
		notifications.WithQueueSize(cfg.Notifications.QueueSize),
		notifications.WithPublishTimeout(time.Duration(cfg.Notifications.PublishTimeout) * time.Second),
	}
	if m != nil {
		opts = append(opts, notifications.WithRecorder(notifications.NewPrometheusRecorder(m)))
	}

	return notifications.NewDispatcher(publisher, log, opts...), closeFn, nil
}
