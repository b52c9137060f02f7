package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-SlotBooking/internal/config"
	bookingRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/booking"
	configRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/config"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/storage/memory"
	slotCounterRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/slotcounter"
	"github.com/m04kA/SMC-SlotBooking/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-SlotBooking/internal/service/bookings"
	calendarService "github.com/m04kA/SMC-SlotBooking/internal/service/calendar"
	createBookingUC "github.com/m04kA/SMC-SlotBooking/internal/usecase/create_booking"
	reconcileUC "github.com/m04kA/SMC-SlotBooking/internal/usecase/reconcile_slot_counters"
	"github.com/m04kA/SMC-SlotBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SlotBooking/pkg/logger"
	"github.com/m04kA/SMC-SlotBooking/pkg/metrics"
	"github.com/m04kA/SMC-SlotBooking/pkg/txmanager"
)

// bookingStore всё, что сервисы и use cases требуют от хранилища бронирований
type bookingStore interface {
	bookingsService.BookingRepository
	createBookingUC.BookingRepository
	reconcileUC.BookingRepository
	availability.BookingRepository
}

// slotCounterStore всё, что требуется от журнала занятости слотов
type slotCounterStore interface {
	bookingsService.SlotCounterRepository
	createBookingUC.SlotCounterRepository
	reconcileUC.SlotCounterRepository
	availability.SlotCounterRepository
}

type txManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type storage struct {
	bookings     bookingStore
	slotCounters slotCounterStore
	config       calendarService.ConfigRepository
	tx           txManager
	close        func()
}

// openStorage поднимает postgres (с метриками запросов) или in-memory хранилище
func openStorage(cfg *config.Config, m *metrics.Metrics, log *logger.Logger, stopMetricsCh <-chan struct{}) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("Using in-memory storage, data will be lost on restart")
		store := memory.NewStore()
		return &storage{
			bookings:     store.Bookings(),
			slotCounters: store.SlotCounters(),
			config:       store.Config(),
			tx:           store.TxManager(),
			close:        func() {},
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

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, m, stopMetricsCh)

	return &storage{
		bookings:     bookingRepo.NewRepository(wrappedDB),
		slotCounters: slotCounterRepo.NewRepository(wrappedDB),
		config:       configRepo.NewRepository(wrappedDB),
		tx:           txmanager.NewTransactionManager(wrappedDB, log),
		close: func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close database: %v", err)
			}
		},
	}, nil
}
