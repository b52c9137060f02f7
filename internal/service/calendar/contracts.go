package calendar

import (
	"context"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// ConfigRepository интерфейс репозитория конфигурации календаря
type ConfigRepository interface {
	Get(ctx context.Context) (*domain.CalendarConfig, error)
	Save(ctx context.Context, cfg *domain.CalendarConfig) (*domain.CalendarConfig, error)
}

// ConfigCache интерфейс кэша конфигурации
type ConfigCache interface {
	Get(ctx context.Context) (*domain.CalendarConfig, error)
	Set(ctx context.Context, cfg *domain.CalendarConfig) error
	Invalidate(ctx context.Context) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
