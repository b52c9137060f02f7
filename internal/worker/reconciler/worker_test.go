package reconciler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SlotBooking/internal/usecase/reconcile_slot_counters"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type countingReconciler struct {
	calls   atomic.Int32
	horizon atomic.Int32
	err     error
}

func (r *countingReconciler) Execute(_ context.Context, req *reconcile_slot_counters.Request) (*reconcile_slot_counters.Response, error) {
	r.calls.Add(1)
	r.horizon.Store(int32(req.HorizonDays))
	if r.err != nil {
		return nil, r.err
	}
	return &reconcile_slot_counters.Response{}, nil
}

func TestWorker_RunsImmediatelyAndOnTicks(t *testing.T) {
	rec := &countingReconciler{}
	w := NewWorker(rec, 10*time.Millisecond, 30, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	assert.Eventually(t, func() bool { return rec.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	w.Wait()

	assert.Equal(t, int32(30), rec.horizon.Load())
}

func TestWorker_StopsOnCancelAndSurvivesErrors(t *testing.T) {
	rec := &countingReconciler{err: errors.New("db down")}
	w := NewWorker(rec, time.Hour, 7, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	assert.Eventually(t, func() bool { return rec.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
