package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByIDAndAccount(ctx context.Context, id, accountID int64) (*domain.Booking, error)
	GetByAccountID(ctx context.Context, accountID int64) ([]*domain.Booking, error)
	FindUpcomingForAddress(ctx context.Context, accountID, addressID int64, from time.Time, excludeID *int64) (*domain.Booking, error)
	GetWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, change domain.StatusChange) error
	SetCancellationReason(ctx context.Context, id int64, reason string) error
	Delete(ctx context.Context, id int64, status domain.BookingStatus) error
}

// SlotCounterRepository интерфейс журнала занятости слотов
type SlotCounterRepository interface {
	Increment(ctx context.Context, key domain.SlotKey, capacity int) (int, error)
	Decrement(ctx context.Context, key domain.SlotKey) (int, error)
}

// CalendarService источник актуальной конфигурации календаря
type CalendarService interface {
	GetFresh(ctx context.Context) (*domain.CalendarConfig, error)
}

// TxManager интерфейс менеджера транзакций
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier интерфейс отправки уведомлений
type Notifier interface {
	Notify(ctx context.Context, template, recipient string, vars map[string]string) error
}

// Metrics метрики учёта вместимости
type Metrics interface {
	IncCounterUnderflow()
}

// TimeProvider источник текущего времени
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider возвращает системное время
type RealTimeProvider struct{}

func (RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
