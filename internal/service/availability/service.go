package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

// Service единственное место, где вычисляется доступность слотов.
// Занятость слота = max(значение счетчика, число живых бронирований на этот момент)
type Service struct {
	counterRepo SlotCounterRepository
	bookingRepo BookingRepository
	logger      Logger
}

func NewService(counterRepo SlotCounterRepository, bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		counterRepo: counterRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// SlotsForDate возвращает доступные часы даты ymd, занятость каждого часа-кандидата и вместимость слота
func (s *Service) SlotsForDate(ctx context.Context, cfg *domain.CalendarConfig, ymd string, now time.Time) (*domain.DayAvailability, error) {
	capacity := cfg.Capacity()
	result := &domain.DayAvailability{
		Date:            ymd,
		Slots:           []types.TimeString{},
		Taken:           map[types.TimeString]int{},
		CapacityPerSlot: capacity,
	}

	// 1. Часы-кандидаты с учётом закрытий, минимального срока и прошедшего времени
	hours, err := CandidateHours(cfg, ymd, now)
	if err != nil {
		return nil, err
	}
	if len(hours) == 0 {
		return result, nil
	}

	// 2. Значения счетчиков
	counts, err := s.counterRepo.GetCounts(ctx, ymd, hours)
	if err != nil {
		s.logger.Error("SlotsForDate: failed to load counters for %s: %v", ymd, err)
		return nil, fmt.Errorf("%w: SlotsForDate - counters: %v", ErrInternal, err)
	}

	// 3. Живые бронирования за сутки в зоне календаря
	live, err := s.liveByHour(ctx, cfg, ymd)
	if err != nil {
		return nil, err
	}

	// 4. Занятость и доступные слоты
	for _, hh := range hours {
		taken := counts[hh]
		if live[hh] > taken {
			taken = live[hh]
		}
		result.Taken[hh] = taken
		if taken < capacity {
			result.Slots = append(result.Slots, hh)
		}
	}

	return result, nil
}

func (s *Service) liveByHour(ctx context.Context, cfg *domain.CalendarConfig, ymd string) (map[types.TimeString]int, error) {
	loc := cfg.Location()
	dayStart, err := time.ParseInLocation(domain.DateFormat, ymd, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, ymd)
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	bookings, err := s.bookingRepo.GetLiveBetween(ctx, dayStart, dayEnd)
	if err != nil {
		s.logger.Error("SlotsForDate: failed to load live bookings for %s: %v", ymd, err)
		return nil, fmt.Errorf("%w: SlotsForDate - bookings: %v", ErrInternal, err)
	}

	live := make(map[types.TimeString]int)
	for _, b := range bookings {
		key := cfg.SlotKeyOf(b.SlotAt)
		if key.YMD == ymd {
			live[key.Time]++
		}
	}
	return live, nil
}

// CandidateHours возвращает часы даты, которые календарь предлагает в момент now:
// прошлые даты и даты ближе минимального срока пусты, сегодня остаются только часы строго позже текущей минуты
func CandidateHours(cfg *domain.CalendarConfig, ymd string, now time.Time) ([]types.TimeString, error) {
	daysAhead, err := cfg.DaysAhead(ymd, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, ymd)
	}
	if daysAhead < 0 || daysAhead < cfg.MinLeadDays {
		return []types.TimeString{}, nil
	}

	hours := cfg.HoursForDate(ymd)
	if daysAhead > 0 {
		return hours, nil
	}

	nowMinutes := types.NewTimeString(now.In(cfg.Location())).Minutes()
	out := make([]types.TimeString, 0, len(hours))
	for _, hh := range hours {
		if hh.Minutes() > nowMinutes {
			out = append(out, hh)
		}
	}
	return out, nil
}

// CheckBookable проверяет, что календарь предлагает слот (ymd, hh) в момент now
func CheckBookable(cfg *domain.CalendarConfig, ymd string, hh types.TimeString, now time.Time) error {
	hours, err := CandidateHours(cfg, ymd, now)
	if err != nil {
		return err
	}
	for _, h := range hours {
		if h == hh {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s", ErrTimeNotBookable, ymd, hh)
}
