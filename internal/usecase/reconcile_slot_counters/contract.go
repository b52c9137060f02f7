package reconcile_slot_counters

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// SlotCounterRepository интерфейс журнала занятости слотов
type SlotCounterRepository interface {
	GetByDateRange(ctx context.Context, fromYMD, toYMD string) ([]*domain.SlotCounter, error)
	LockForUpdate(ctx context.Context, key domain.SlotKey) (int, error)
	SetCount(ctx context.Context, key domain.SlotKey, count int) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetLiveBetween(ctx context.Context, from, to time.Time) ([]*domain.Booking, error)
	CountLiveAt(ctx context.Context, instant time.Time) (int, error)
}

// CalendarService источник конфигурации календаря (читается в обход кэша)
type CalendarService interface {
	GetFresh(ctx context.Context) (*domain.CalendarConfig, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics метрики сверки
type Metrics interface {
	AddCounterCorrections(n int)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
