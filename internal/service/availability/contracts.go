package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

// SlotCounterRepository интерфейс журнала занятости слотов
type SlotCounterRepository interface {
	GetCounts(ctx context.Context, ymd string, times []types.TimeString) (map[types.TimeString]int, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetLiveBetween(ctx context.Context, from, to time.Time) ([]*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
