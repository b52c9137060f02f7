package reconcile_slot_counters

import (
	"context"

	reconcile "github.com/m04kA/SMC-SlotBooking/internal/usecase/reconcile_slot_counters"
)

type ReconcileUseCase interface {
	Execute(ctx context.Context, req *reconcile.Request) (*reconcile.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
