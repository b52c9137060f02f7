package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	cancelBookingHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/get_booking"
	getBookingsHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/get_bookings"
	getCalendarConfigHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/get_calendar_config"
	getNextBookingHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/get_next_booking"
	getNextSlotHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/get_next_slot"
	getUserBookingsHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/get_user_bookings"
	reconcileHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/reconcile_slot_counters"
	updateBookingStatusHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/update_booking_status"
	updateCalendarConfigHandler "github.com/m04kA/SMC-SlotBooking/internal/api/handlers/update_calendar_config"
	"github.com/m04kA/SMC-SlotBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SlotBooking/internal/config"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/assets"
	calendarCache "github.com/m04kA/SMC-SlotBooking/internal/infra/cache/calendar"
	"github.com/m04kA/SMC-SlotBooking/internal/integrations/accountservice"
	"github.com/m04kA/SMC-SlotBooking/internal/integrations/notifier"
	"github.com/m04kA/SMC-SlotBooking/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-SlotBooking/internal/service/bookings"
	calendarService "github.com/m04kA/SMC-SlotBooking/internal/service/calendar"
	createBookingUC "github.com/m04kA/SMC-SlotBooking/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-SlotBooking/internal/usecase/get_available_slots"
	nextAvailableSlotUC "github.com/m04kA/SMC-SlotBooking/internal/usecase/next_available_slot"
	reconcileUC "github.com/m04kA/SMC-SlotBooking/internal/usecase/reconcile_slot_counters"
	"github.com/m04kA/SMC-SlotBooking/internal/worker/reconciler"
	"github.com/m04kA/SMC-SlotBooking/pkg/logger"
	"github.com/m04kA/SMC-SlotBooking/pkg/metrics"
)

type bookingNotifier interface {
	Notify(ctx context.Context, template, recipient string, vars map[string]string) error
	Close() error
}

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

	log.Info("Starting SMC-SlotBooking...")
	log.Info("Configuration loaded from config.toml (storage=%s)", cfg.Storage.Driver)

	// Инициализируем метрики (если включены). nil коллектор безопасен
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилище
	store, err := openStorage(cfg, metricsCollector, log, stopMetricsCh)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.close()

	// Кэш конфигурации календаря. Без Redis передаём nil интерфейс
	var configCache calendarService.ConfigCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is unreachable, calendar config will be read from storage on miss: %v", err)
		}
		pingCancel()

		configCache = calendarCache.NewCache(redisClient, config.Seconds(cfg.Redis.TTL))
		log.Info("Calendar config cache enabled (addr=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
	}

	// Уведомления
	var notify bookingNotifier
	if cfg.Notifications.Enabled {
		publisher, err := notifier.Dial(cfg.Notifications.AMQPURL, cfg.Notifications.Queue, log)
		if err != nil {
			log.Fatal("Failed to connect to message broker: %v", err)
		}
		notify = publisher
		log.Info("Notifications are published to queue %s", cfg.Notifications.Queue)
	} else {
		notify = notifier.NewLogNotifier(log)
		log.Info("Notifications disabled, messages are only logged")
	}
	defer func() {
		if err := notify.Close(); err != nil {
			log.Error("Failed to close notifier: %v", err)
		}
	}()

	// Интеграции
	accountClient := accountservice.NewClient(
		cfg.AccountService.URL,
		config.Seconds(cfg.AccountService.Timeout),
		log,
	)
	imageStore := assets.NewDiskStore(cfg.Assets.Dir, cfg.Assets.PublicBaseURL)
	log.Info("Integration clients initialized (AccountService=%s timeout=%ds, assets=%s)",
		cfg.AccountService.URL, cfg.AccountService.Timeout, cfg.Assets.Dir)

	// Инициализируем сервисы
	calendarSvc := calendarService.NewService(store.config, configCache, log)
	availabilitySvc := availability.NewService(store.slotCounters, store.bookings, log)
	bookingSvc := bookingsService.NewService(
		store.bookings,
		store.slotCounters,
		calendarSvc,
		store.tx,
		notify,
		metricsCollector,
		bookingsService.RealTimeProvider{},
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		store.bookings,
		store.slotCounters,
		calendarSvc,
		accountClient,
		imageStore,
		store.tx,
		notify,
		metricsCollector,
		cfg.Notifications.AdminEmail,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(calendarSvc, availabilitySvc, log)
	nextAvailableSlotUseCase := nextAvailableSlotUC.NewUseCase(calendarSvc, availabilitySvc, log)
	reconcileUseCase := reconcileUC.NewUseCase(
		store.slotCounters,
		store.bookings,
		calendarSvc,
		store.tx,
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	maxUploadBytes := int64(cfg.Server.MaxUploadMB) << 20
	getCalendarConfig := getCalendarConfigHandler.NewHandler(calendarSvc, log)
	updateCalendarConfig := updateCalendarConfigHandler.NewHandler(calendarSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getNextSlot := getNextSlotHandler.NewHandler(nextAvailableSlotUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, maxUploadBytes, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getNextBooking := getNextBookingHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getBookings := getBookingsHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	reconcileCounters := reconcileHandler.NewHandler(reconcileUseCase, cfg.Reconciler.HorizonDays, log)

	auth := middleware.NewAuth(cfg.Auth.JWTSecret, cfg.Auth.AdminRole)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/calendar/config", getCalendarConfig.Handle).Methods(http.MethodGet)

	calendarRoutes := api.PathPrefix("/calendar").Subrouter()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		calendarRoutes.Use(limiter.Limit)
		log.Info("Rate limit enabled for calendar routes (rps=%.1f, burst=%d)",
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}
	calendarRoutes.HandleFunc("/slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	calendarRoutes.HandleFunc("/next-slot", getNextSlot.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют Bearer токен)
	// ============================================================

	protected := api.PathPrefix("/bookings").Subrouter()
	protected.Use(auth.Authenticate)

	protected.HandleFunc("", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("", getUserBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/next", getNextBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/{bookingId:[0-9]+}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/{bookingId:[0-9]+}", cancelBooking.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/{bookingId:[0-9]+}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	// --- Администрирование ---
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth.Authenticate, auth.RequireAdmin)

	admin.HandleFunc("/calendar", getCalendarConfig.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/calendar", updateCalendarConfig.Handle).Methods(http.MethodPut)
	admin.HandleFunc("/bookings", getBookings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{bookingId:[0-9]+}/status", updateBookingStatus.Handle).Methods(http.MethodPut)
	admin.HandleFunc("/slot-counters/reconcile", reconcileCounters.Handle).Methods(http.MethodPost)

	// Загруженные фото клиентов
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(filepath.Join(cfg.Assets.Dir, "uploads"))))).Methods(http.MethodGet)

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	// Фоновая сверка счетчиков
	workerCtx, stopWorker := context.WithCancel(context.Background())
	var counterWorker *reconciler.Worker
	if cfg.Reconciler.Enabled {
		counterWorker = reconciler.NewWorker(
			reconcileUseCase,
			config.Seconds(cfg.Reconciler.Interval),
			cfg.Reconciler.HorizonDays,
			log,
		)
		counterWorker.Start(workerCtx)
		log.Info("Slot counter reconciler started (interval=%ds, horizon=%d days)",
			cfg.Reconciler.Interval, cfg.Reconciler.HorizonDays)
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  config.Seconds(cfg.Server.ReadTimeout),
		WriteTimeout: config.Seconds(cfg.Server.WriteTimeout),
		IdleTimeout:  config.Seconds(cfg.Server.IdleTimeout),
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Seconds(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем воркер сверки
	stopWorker()
	if counterWorker != nil {
		counterWorker.Wait()
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
