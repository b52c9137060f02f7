package memory

import (
	"context"
	"sort"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/storage/slotcounter"
	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

// SlotCounterRepository счетчики слотов в памяти
type SlotCounterRepository struct {
	store *Store
}

func (r *SlotCounterRepository) Increment(ctx context.Context, key domain.SlotKey, capacity int) (int, error) {
	if capacity < 1 {
		return 0, slotcounter.ErrInvalidCapacity
	}

	defer r.store.lock(ctx)()

	counter, ok := r.store.counters[key]
	if !ok {
		counter = &domain.SlotCounter{Key: key}
		r.store.counters[key] = counter
	}
	if counter.Count >= capacity {
		return 0, slotcounter.ErrSlotFull
	}

	counter.Count++
	counter.UpdatedAt = r.store.now()
	return counter.Count, nil
}

func (r *SlotCounterRepository) Decrement(ctx context.Context, key domain.SlotKey) (int, error) {
	defer r.store.lock(ctx)()

	counter, ok := r.store.counters[key]
	if !ok || counter.Count <= 0 {
		return 0, slotcounter.ErrCounterUnderflow
	}

	counter.Count--
	counter.UpdatedAt = r.store.now()
	return counter.Count, nil
}

func (r *SlotCounterRepository) GetCounts(ctx context.Context, ymd string, times []types.TimeString) (map[types.TimeString]int, error) {
	defer r.store.lock(ctx)()

	result := make(map[types.TimeString]int, len(times))
	for _, t := range times {
		if counter, ok := r.store.counters[domain.SlotKey{YMD: ymd, Time: t}]; ok {
			result[t] = counter.Count
		}
	}
	return result, nil
}

func (r *SlotCounterRepository) GetByDateRange(ctx context.Context, fromYMD, toYMD string) ([]*domain.SlotCounter, error) {
	defer r.store.lock(ctx)()

	counters := make([]*domain.SlotCounter, 0)
	for key, c := range r.store.counters {
		if key.YMD < fromYMD || key.YMD > toYMD {
			continue
		}
		cp := *c
		counters = append(counters, &cp)
	}
	sort.Slice(counters, func(i, j int) bool {
		if counters[i].Key.YMD != counters[j].Key.YMD {
			return counters[i].Key.YMD < counters[j].Key.YMD
		}
		return counters[i].Key.Time.Minutes() < counters[j].Key.Time.Minutes()
	})
	return counters, nil
}

func (r *SlotCounterRepository) LockForUpdate(ctx context.Context, key domain.SlotKey) (int, error) {
	defer r.store.lock(ctx)()

	counter, ok := r.store.counters[key]
	if !ok {
		counter = &domain.SlotCounter{Key: key, UpdatedAt: r.store.now()}
		r.store.counters[key] = counter
	}
	return counter.Count, nil
}

func (r *SlotCounterRepository) SetCount(ctx context.Context, key domain.SlotKey, count int) error {
	if count < 0 {
		count = 0
	}

	defer r.store.lock(ctx)()

	counter, ok := r.store.counters[key]
	if !ok {
		counter = &domain.SlotCounter{Key: key}
		r.store.counters[key] = counter
	}
	counter.Count = count
	counter.UpdatedAt = r.store.now()
	return nil
}
