package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	_ "time/tzdata" // зоны нужны и в контейнерах без системной базы tzdata

	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

// ErrInvalidDate возвращается, если строка не является датой YYYY-MM-DD
var ErrInvalidDate = errors.New("domain: invalid date, expected YYYY-MM-DD")

// HourOverrides часы работы на конкретные даты: "YYYY-MM-DD" -> отсортированный список "HH:MM".
// Пустой список означает, что в эту дату закрыто
type HourOverrides map[string][]types.TimeString

// Dates возвращает даты в порядке возрастания
func (o HourOverrides) Dates() []string {
	dates := make([]string, 0, len(o))
	for d := range o {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Clone возвращает глубокую копию
func (o HourOverrides) Clone() HourOverrides {
	out := make(HourOverrides, len(o))
	for d, hours := range o {
		out[d] = append([]types.TimeString{}, hours...)
	}
	return out
}

// CalendarConfig единственная на сервис конфигурация календаря бронирований
type CalendarConfig struct {
	ID             int64
	Timezone       string             // IANA-зона, все вычисления дат ведутся в ней
	SlotMinutes    int                // информационно, часы задаются списками явно
	MinLeadDays    int                // минимальное количество дней между "сегодня" и днем слота
	ClosedWeekdays []int              // 0 = воскресенье .. 6 = суббота
	DefaultHours   []types.TimeString // часы обычного рабочего дня
	Overrides      HourOverrides      // часы на конкретные даты
	Holidays       []string           // даты, закрытые безусловно
	MaxConcurrent  int                // вместимость одного слота
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewDefaultCalendarConfig возвращает конфигурацию по умолчанию
func NewDefaultCalendarConfig() *CalendarConfig {
	return &CalendarConfig{
		Timezone:       DefaultTimezone,
		SlotMinutes:    DefaultSlotMinutes,
		MinLeadDays:    DefaultMinLeadDays,
		ClosedWeekdays: []int{},
		DefaultHours:   []types.TimeString{},
		Overrides:      HourOverrides{},
		Holidays:       []string{},
		MaxConcurrent:  DefaultMaxConcurrent,
	}
}

// Normalize приводит конфигурацию к инвариантам: списки часов отсортированы и валидны,
// даты валидны, MaxConcurrent >= 1. Вызывается при каждой загрузке и сохранении
func (c *CalendarConfig) Normalize() {
	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		c.Timezone = DefaultTimezone
	}

	if c.SlotMinutes <= 0 {
		c.SlotMinutes = DefaultSlotMinutes
	}
	if c.MinLeadDays < 0 {
		c.MinLeadDays = 0
	}
	if c.MaxConcurrent < 1 {
		c.MaxConcurrent = 1
	}

	c.ClosedWeekdays = normalizeWeekdays(c.ClosedWeekdays)
	c.DefaultHours = NormalizeHours(c.DefaultHours)
	c.Holidays = normalizeDates(c.Holidays)

	overrides := make(HourOverrides, len(c.Overrides))
	for date, hours := range c.Overrides {
		date = strings.TrimSpace(date)
		if _, err := ParseDate(date); err != nil {
			continue
		}
		overrides[date] = NormalizeHours(hours)
	}
	c.Overrides = overrides
}

// NormalizeHours оставляет только валидные "HH:MM", убирает дубли и сортирует по минутам суток
func NormalizeHours(hours []types.TimeString) []types.TimeString {
	seen := make(map[types.TimeString]struct{}, len(hours))
	out := make([]types.TimeString, 0, len(hours))
	for _, h := range hours {
		h = types.TimeString(strings.TrimSpace(string(h)))
		if h.Validate() != nil {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Minutes() < out[j].Minutes() })
	return out
}

func normalizeWeekdays(days []int) []int {
	seen := make(map[int]struct{}, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

func normalizeDates(dates []string) []string {
	seen := make(map[string]struct{}, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		d = strings.TrimSpace(d)
		if _, err := ParseDate(d); err != nil {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Location возвращает зону календаря
func (c *CalendarConfig) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

// Capacity возвращает вместимость слота, не меньше 1
func (c *CalendarConfig) Capacity() int {
	if c.MaxConcurrent < 1 {
		return 1
	}
	return c.MaxConcurrent
}

func (c *CalendarConfig) IsHoliday(ymd string) bool {
	for _, h := range c.Holidays {
		if h == ymd {
			return true
		}
	}
	return false
}

func (c *CalendarConfig) IsClosedWeekday(weekday time.Weekday) bool {
	for _, d := range c.ClosedWeekdays {
		if time.Weekday(d) == weekday {
			return true
		}
	}
	return false
}

// HoursForDate возвращает часы, открытые в дату ymd. Порядок проверки:
// праздник -> override на дату (даже пустой) -> закрытый день недели -> часы по умолчанию
func (c *CalendarConfig) HoursForDate(ymd string) []types.TimeString {
	if c.IsHoliday(ymd) {
		return []types.TimeString{}
	}

	if hours, ok := c.Overrides[ymd]; ok {
		return NormalizeHours(hours)
	}

	day, err := ParseDate(ymd)
	if err != nil {
		return []types.TimeString{}
	}
	if c.IsClosedWeekday(day.Weekday()) {
		return []types.TimeString{}
	}

	return NormalizeHours(c.DefaultHours)
}

// Today возвращает текущую дату календаря в формате YYYY-MM-DD
func (c *CalendarConfig) Today(now time.Time) string {
	return now.In(c.Location()).Format(DateFormat)
}

// DaysAhead возвращает количество календарных дней от "сегодня" до ymd (отрицательное для прошлого)
func (c *CalendarConfig) DaysAhead(ymd string, now time.Time) (int, error) {
	day, err := ParseDate(ymd)
	if err != nil {
		return 0, err
	}
	today, _ := ParseDate(c.Today(now))
	return int(day.Sub(today).Hours() / 24), nil
}

// SlotAt возвращает момент начала слота (ymd, hh) в зоне календаря
func (c *CalendarConfig) SlotAt(ymd string, hh types.TimeString) (time.Time, error) {
	if err := hh.Validate(); err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(LocalSlotFormat, ymd+"T"+hh.String(), c.Location())
}

// SlotKeyOf возвращает ключ слота для момента времени в зоне календаря
func (c *CalendarConfig) SlotKeyOf(instant time.Time) SlotKey {
	local := instant.In(c.Location())
	return SlotKey{
		YMD:  local.Format(DateFormat),
		Time: types.NewTimeString(local),
	}
}

// Clone возвращает глубокую копию конфигурации
func (c *CalendarConfig) Clone() *CalendarConfig {
	out := *c
	out.ClosedWeekdays = append([]int{}, c.ClosedWeekdays...)
	out.DefaultHours = append([]types.TimeString{}, c.DefaultHours...)
	out.Holidays = append([]string{}, c.Holidays...)
	out.Overrides = c.Overrides.Clone()
	return &out
}

// ParseDate строго парсит дату YYYY-MM-DD (в UTC, используется только как календарная дата)
func ParseDate(ymd string) (time.Time, error) {
	if len(ymd) != len(DateFormat) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, ymd)
	}
	day, err := time.Parse(DateFormat, ymd)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, ymd)
	}
	return day, nil
}

// AddDays сдвигает дату YYYY-MM-DD на n дней
func AddDays(ymd string, n int) (string, error) {
	day, err := ParseDate(ymd)
	if err != nil {
		return "", err
	}
	return day.AddDate(0, 0, n).Format(DateFormat), nil
}
