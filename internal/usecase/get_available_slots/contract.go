package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// CalendarService источник конфигурации календаря (допускается кэш)
type CalendarService interface {
	Get(ctx context.Context) (*domain.CalendarConfig, error)
}

// AvailabilityService единственный путь расчета доступности
type AvailabilityService interface {
	SlotsForDate(ctx context.Context, cfg *domain.CalendarConfig, ymd string, now time.Time) (*domain.DayAvailability, error)
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
