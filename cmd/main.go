package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/m04kA/PT-BookingService/internal/api/handlers"
	cancelBookingHandler "github.com/m04kA/PT-BookingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/PT-BookingService/internal/api/handlers/create_booking"
	createRuleHandler "github.com/m04kA/PT-BookingService/internal/api/handlers/create_rule"
	deleteBookingHandler "github.com/m04kA/PT-BookingService/internal/api/handlers/delete_booking"
	deleteRuleHandler "github.com/m04kA/PT-BookingService/internal/api/handlers/delete_rule"
	getAvailableSlotsHandler "github.com/m04kA/PT-BookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/PT-BookingService/internal/api/handlers/get_booking"
	getBookingsHandler "github.com/m04kA/PT-BookingService/internal/api/handlers/get_bookings"
	getUserBookingsHandler "github.com/m04kA/PT-BookingService/internal/api/handlers/get_user_bookings"
	listRulesHandler "github.com/m04kA/PT-BookingService/internal/api/handlers/list_rules"
	rescheduleBookingHandler "github.com/m04kA/PT-BookingService/internal/api/handlers/reschedule_booking"
	updateBookingStatusHandler "github.com/m04kA/PT-BookingService/internal/api/handlers/update_booking_status"
	updateRuleHandler "github.com/m04kA/PT-BookingService/internal/api/handlers/update_rule"
	"github.com/m04kA/PT-BookingService/internal/api/middleware"
	"github.com/m04kA/PT-BookingService/internal/config"
	bookingsService "github.com/m04kA/PT-BookingService/internal/service/bookings"
	rulesService "github.com/m04kA/PT-BookingService/internal/service/rules"
	createBookingUC "github.com/m04kA/PT-BookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/PT-BookingService/internal/usecase/get_available_slots"
	rescheduleBookingUC "github.com/m04kA/PT-BookingService/internal/usecase/reschedule_booking"
	"github.com/m04kA/PT-BookingService/pkg/clock"
	"github.com/m04kA/PT-BookingService/pkg/logger"
	"github.com/m04kA/PT-BookingService/pkg/metrics"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting PT-BookingService...")
	log.Info("Configuration loaded (storage=%s, notifications=%s, timezone=%s)",
		cfg.Storage.Driver, cfg.Notifications.Driver, cfg.Booking.Timezone)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилище: postgres или память
	store, err := setupStorage(cfg, log, metricsCollector)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.close()

	// Уведомления о бронированиях
	dispatcher, closeNotifications, err := setupNotifications(cfg, log, metricsCollector)
	if err != nil {
		log.Fatal("Failed to initialize notifications: %v", err)
	}
	defer closeNotifications()

	// Часовой пояс нужен только для определения "сейчас"
	loc, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Failed to load timezone: %v", err)
	}
	businessClock := clock.NewSystem(loc)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(store.bookings, dispatcher, log)
	ruleSvc := rulesService.NewService(store.rules, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		store.bookings,
		store.rules,
		store.tx,
		dispatcher,
		businessClock,
		log,
	)
	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		store.bookings,
		store.rules,
		store.tx,
		dispatcher,
		businessClock,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		store.rules,
		store.bookings,
		businessClock,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getBookings := getBookingsHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	deleteBooking := deleteBookingHandler.NewHandler(bookingSvc, log)
	listRules := listRulesHandler.NewHandler(ruleSvc, log)
	createRule := createRuleHandler.NewHandler(ruleSvc, log)
	updateRule := updateRuleHandler.NewHandler(ruleSvc, log)
	deleteRule := deleteRuleHandler.NewHandler(ruleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные времена начала на дату
	api.HandleFunc("/availability", getAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(cfg.Admin.IsAdmin))

	// Создание бронирования (с ограничением частоты по IP)
	var createBookingHandle http.Handler = http.HandlerFunc(createBooking.Handle)
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		createBookingHandle = limiter.Limit(createBookingHandle)
		log.Info("Rate limit on booking creation: %.2f rps, burst %d",
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}
	protected.Handle("/bookings", createBookingHandle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// ============================================================
	// ADMIN ROUTES (X-User-ID из списка admin.user_ids)
	// ============================================================

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminOnly)

	// --- Бронирования ---
	admin.HandleFunc("/bookings", getBookings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/bookings/{bookingId}", deleteBooking.Handle).Methods(http.MethodDelete)

	// --- Правила доступности ---
	admin.HandleFunc("/availability-rules", listRules.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/availability-rules", createRule.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/availability-rules/{ruleId}", updateRule.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/availability-rules/{ruleId}", deleteRule.Handle).Methods(http.MethodDelete)

	// CORS для фронтенда
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.UserIDHeader},
	}).Handler(r)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      corsHandler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся отправки уведомлений из очереди
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Error("Notifications queue not drained: %v", err)
	}

	log.Info("Server stopped gracefully")
}
