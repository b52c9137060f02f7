package update_calendar_config

import (
	"context"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/internal/service/calendar/models"
)

type CalendarService interface {
	Update(ctx context.Context, req *models.UpdateCalendarRequest) (*domain.CalendarConfig, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
