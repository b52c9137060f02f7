package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/assets"
	"github.com/m04kA/SMC-SlotBooking/internal/integrations/accountservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByIDAndAccount(ctx context.Context, id, accountID int64) (*domain.Booking, error)
	FindUpcomingForAddress(ctx context.Context, accountID, addressID int64, from time.Time, excludeID *int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, change domain.StatusChange) error
	LockAccountAddress(ctx context.Context, accountID, addressID int64) error
}

// SlotCounterRepository интерфейс журнала занятости слотов
type SlotCounterRepository interface {
	Increment(ctx context.Context, key domain.SlotKey, capacity int) (int, error)
	Decrement(ctx context.Context, key domain.SlotKey) (int, error)
}

// CalendarService источник конфигурации календаря (читается в обход кэша)
type CalendarService interface {
	GetFresh(ctx context.Context) (*domain.CalendarConfig, error)
}

// AccountServiceClient интерфейс клиента для AccountService
type AccountServiceClient interface {
	GetAccount(ctx context.Context, accountID int64) (*accountservice.Account, error)
	ListSubscriptions(ctx context.Context, accountID int64) ([]accountservice.Subscription, error)
	IsBlacklisted(ctx context.Context, accountID int64) (bool, error)
}

// ImageStore хранилище загруженных изображений
type ImageStore interface {
	StoreImage(ctx context.Context, upload assets.Upload) (string, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier интерфейс отправки уведомлений
type Notifier interface {
	Notify(ctx context.Context, template, recipient string, vars map[string]string) error
}

// Metrics метрики бронирования
type Metrics interface {
	ObserveReservation(result string)
	IncCounterUnderflow()
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
