package next_available_slot

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// UseCase поиск ближайшего свободного слота
type UseCase struct {
	calendar     CalendarService
	availability AvailabilityService
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(calendar CalendarService, availability AvailabilityService, logger Logger) *UseCase {
	return &UseCase{
		calendar:     calendar,
		availability: availability,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute просматривает NextSlotHorizonDays дней начиная с сегодня+minLeadDays.
// Возвращает nil, если свободных слотов нет
func (uc *UseCase) Execute(ctx context.Context) (*Response, error) {
	now := uc.timeProvider.Now()

	cfg, err := uc.calendar.Get(ctx)
	if err != nil {
		uc.logger.Error("NextAvailableSlot: failed to get calendar config: %v", err)
		return nil, fmt.Errorf("%w: failed to get calendar config: %v", ErrInternal, err)
	}

	start, err := domain.AddDays(cfg.Today(now), cfg.MinLeadDays)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	for i := 0; i < domain.NextSlotHorizonDays; i++ {
		ymd, err := domain.AddDays(start, i)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}

		day, err := uc.availability.SlotsForDate(ctx, cfg, ymd, now)
		if err != nil {
			uc.logger.Error("NextAvailableSlot: failed to compute availability for %s: %v", ymd, err)
			return nil, fmt.Errorf("%w: failed to compute availability: %v", ErrInternal, err)
		}

		hh, ok := day.FirstSlot()
		if !ok {
			continue
		}

		slotAt, err := cfg.SlotAt(ymd, hh)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}

		uc.logger.Info("NextAvailableSlot: found %s %s", ymd, hh)
		return &Response{
			NextSlot: slotAt,
			Date:     ymd,
			Time:     hh.String(),
			Timezone: cfg.Timezone,
		}, nil
	}

	uc.logger.Info("NextAvailableSlot: no free slots within %d days from %s", domain.NextSlotHorizonDays, start)
	return nil, nil
}
