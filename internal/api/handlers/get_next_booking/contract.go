package get_next_booking

import (
	"context"

	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings/models"
)

type BookingService interface {
	GetNextForAddress(ctx context.Context, accountID, addressID int64) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
