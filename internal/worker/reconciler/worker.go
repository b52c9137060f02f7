package reconciler

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/usecase/reconcile_slot_counters"
)

// Reconciler use case сверки счетчиков
type Reconciler interface {
	Execute(ctx context.Context, req *reconcile_slot_counters.Request) (*reconcile_slot_counters.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Worker периодически запускает сверку счетчиков слотов
type Worker struct {
	reconciler  Reconciler
	interval    time.Duration
	horizonDays int
	logger      Logger

	wg sync.WaitGroup
}

func NewWorker(reconciler Reconciler, interval time.Duration, horizonDays int, logger Logger) *Worker {
	return &Worker{
		reconciler:  reconciler,
		interval:    interval,
		horizonDays: horizonDays,
		logger:      logger,
	}
}

// Start запускает сверку в фоне: сразу и затем раз в interval. Останавливается при отмене ctx
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
	w.logger.Info("Reconciler: started with interval %v, horizon %d days", w.interval, w.horizonDays)
}

// Wait дожидается остановки фоновой горутины
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			w.runOnce(ctx)
		case <-ctx.Done():
			w.logger.Info("Reconciler: stopped")
			return
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	resp, err := w.reconciler.Execute(ctx, &reconcile_slot_counters.Request{HorizonDays: w.horizonDays})
	if err != nil {
		w.logger.Error("Reconciler: run failed: %v", err)
		return
	}
	if len(resp.Corrections) > 0 {
		w.logger.Info("Reconciler: corrected %d of %d counters", len(resp.Corrections), resp.Checked)
	}
}
