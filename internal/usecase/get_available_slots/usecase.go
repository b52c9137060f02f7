package get_available_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// UseCase use case для получения доступных слотов на дату
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

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: date=%s", req.Date)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Конфигурация календаря
	cfg, err := uc.calendar.Get(ctx)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get calendar config: %v", err)
		return nil, fmt.Errorf("%w: failed to get calendar config: %v", ErrInternal, err)
	}

	// 3. Доступность на дату
	day, err := uc.availability.SlotsForDate(ctx, cfg, req.Date, uc.timeProvider.Now())
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to compute availability for %s: %v", req.Date, err)
		return nil, fmt.Errorf("%w: failed to compute availability: %v", ErrInternal, err)
	}

	uc.logger.Info("GetAvailableSlots: %d slots available on %s", len(day.Slots), req.Date)
	return toResponse(day, cfg), nil
}

func toResponse(day *domain.DayAvailability, cfg *domain.CalendarConfig) *Response {
	resp := &Response{
		Date:            day.Date,
		Timezone:        cfg.Timezone,
		Slots:           make([]string, 0, len(day.Slots)),
		Taken:           make(map[string]int, len(day.Taken)),
		CapacityPerSlot: day.CapacityPerSlot,
	}
	for _, hh := range day.Slots {
		resp.Slots = append(resp.Slots, hh.String())
	}
	for hh, n := range day.Taken {
		resp.Taken[hh.String()] = n
	}
	return resp
}
