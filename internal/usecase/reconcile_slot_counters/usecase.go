package reconcile_slot_counters

import (
	"context"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// UseCase пересчитывает счетчики слотов по живым бронированиям
type UseCase struct {
	counterRepo  SlotCounterRepository
	bookingRepo  BookingRepository
	calendar     CalendarService
	txManager    TransactionManager
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	counterRepo SlotCounterRepository,
	bookingRepo BookingRepository,
	calendar CalendarService,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		counterRepo:  counterRepo,
		bookingRepo:  bookingRepo,
		calendar:     calendar,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute сверяет счетчики в диапазоне [сегодня, сегодня+HorizonDays].
// Каждый слот исправляется в своей транзакции под блокировкой строки счетчика
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.HorizonDays < 0 {
		return nil, fmt.Errorf("%w: horizonDays must not be negative", ErrInvalidInput)
	}

	// 1. Диапазон дат в зоне календаря
	cfg, err := uc.calendar.GetFresh(ctx)
	if err != nil {
		uc.logger.Error("ReconcileSlotCounters: failed to load calendar config: %v", err)
		return nil, fmt.Errorf("%w: failed to load calendar config: %v", ErrInternal, err)
	}

	from := cfg.Today(uc.timeProvider.Now())
	to, err := domain.AddDays(from, req.HorizonDays)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 2. Слоты для проверки: существующие счетчики и слоты живых бронирований
	keys, err := uc.collectKeys(ctx, cfg, from, to)
	if err != nil {
		return nil, err
	}

	resp := &Response{From: from, To: to, Corrections: []Correction{}}

	// 3. Пересчет каждого слота
	for _, key := range keys {
		correction, err := uc.reconcileSlot(ctx, cfg, key)
		if err != nil {
			uc.logger.Error("ReconcileSlotCounters: failed to reconcile slot %s: %v", key, err)
			return nil, fmt.Errorf("%w: slot %s: %v", ErrInternal, key, err)
		}
		resp.Checked++
		if correction != nil {
			uc.logger.Warn("ReconcileSlotCounters: slot %s corrected %d -> %d", key, correction.Was, correction.Now)
			resp.Corrections = append(resp.Corrections, *correction)
		}
	}

	uc.metrics.AddCounterCorrections(len(resp.Corrections))
	uc.logger.Info("ReconcileSlotCounters: checked %d slots in [%s, %s], corrected %d",
		resp.Checked, from, to, len(resp.Corrections))
	return resp, nil
}

func (uc *UseCase) collectKeys(ctx context.Context, cfg *domain.CalendarConfig, from, to string) ([]domain.SlotKey, error) {
	seen := make(map[domain.SlotKey]struct{})

	counters, err := uc.counterRepo.GetByDateRange(ctx, from, to)
	if err != nil {
		uc.logger.Error("ReconcileSlotCounters: failed to load counters: %v", err)
		return nil, fmt.Errorf("%w: failed to load counters: %v", ErrInternal, err)
	}
	for _, c := range counters {
		seen[c.Key] = struct{}{}
	}

	dayAfter, err := domain.AddDays(to, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	start, err := cfg.SlotAt(from, "00:00")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	end, err := cfg.SlotAt(dayAfter, "00:00")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	bookings, err := uc.bookingRepo.GetLiveBetween(ctx, start, end)
	if err != nil {
		uc.logger.Error("ReconcileSlotCounters: failed to load live bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to load live bookings: %v", ErrInternal, err)
	}
	for _, b := range bookings {
		seen[cfg.SlotKeyOf(b.SlotAt)] = struct{}{}
	}

	keys := make([]domain.SlotKey, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].YMD != keys[j].YMD {
			return keys[i].YMD < keys[j].YMD
		}
		return keys[i].Time.Minutes() < keys[j].Time.Minutes()
	})
	return keys, nil
}

// reconcileSlot приводит счетчик слота к числу живых бронирований. Возвращает nil, если счетчик верен
func (uc *UseCase) reconcileSlot(ctx context.Context, cfg *domain.CalendarConfig, key domain.SlotKey) (*Correction, error) {
	slotAt, err := cfg.SlotAt(key.YMD, key.Time)
	if err != nil {
		return nil, err
	}

	var correction *Correction
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := uc.counterRepo.LockForUpdate(txCtx, key)
		if err != nil {
			return err
		}

		live, err := uc.bookingRepo.CountLiveAt(txCtx, slotAt)
		if err != nil {
			return err
		}

		if current == live {
			return nil
		}

		if err := uc.counterRepo.SetCount(txCtx, key, live); err != nil {
			return err
		}
		correction = &Correction{Date: key.YMD, Time: key.Time.String(), Was: current, Now: live}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return correction, nil
}
