package get_user_bookings

import (
	"context"

	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings/models"
)

type BookingService interface {
	GetAccountBookings(ctx context.Context, accountID int64) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
