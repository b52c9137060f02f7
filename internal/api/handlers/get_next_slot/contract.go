package get_next_slot

import (
	"context"

	nextAvailableSlot "github.com/m04kA/SMC-SlotBooking/internal/usecase/next_available_slot"
)

type NextAvailableSlotUseCase interface {
	Execute(ctx context.Context) (*nextAvailableSlot.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
