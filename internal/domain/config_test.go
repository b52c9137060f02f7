package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

func hours(hh ...string) []types.TimeString {
	out := make([]types.TimeString, 0, len(hh))
	for _, h := range hh {
		out = append(out, types.TimeString(h))
	}
	return out
}

func TestHoursForDate_HolidayBeatsOverride(t *testing.T) {
	cfg := NewDefaultCalendarConfig()
	cfg.DefaultHours = hours("09:00", "10:00")
	cfg.Overrides = HourOverrides{"2026-07-04": hours("11:00")}
	cfg.Holidays = []string{"2026-07-04"}
	cfg.Normalize()

	assert.Empty(t, cfg.HoursForDate("2026-07-04"))
	assert.Equal(t, hours("09:00", "10:00"), cfg.HoursForDate("2026-07-06"))
}

func TestHoursForDate_EmptyOverrideCloses(t *testing.T) {
	cfg := NewDefaultCalendarConfig()
	cfg.DefaultHours = hours("09:00")
	cfg.Overrides = HourOverrides{"2026-07-07": {}}
	cfg.Normalize()

	// вторник, не праздник и не закрытый день недели
	assert.Empty(t, cfg.HoursForDate("2026-07-07"))
	assert.Equal(t, hours("09:00"), cfg.HoursForDate("2026-07-08"))
}

func TestHoursForDate_OverrideBeatsClosedWeekday(t *testing.T) {
	cfg := NewDefaultCalendarConfig()
	cfg.DefaultHours = hours("09:00")
	cfg.ClosedWeekdays = []int{0} // воскресенье
	cfg.Overrides = HourOverrides{"2026-07-12": hours("13:00", "12:00")}
	cfg.Normalize()

	assert.Equal(t, hours("12:00", "13:00"), cfg.HoursForDate("2026-07-12"))
	assert.Empty(t, cfg.HoursForDate("2026-07-19"))
}

func TestNormalize_RoundTripRules(t *testing.T) {
	cfg := &CalendarConfig{
		Timezone:       "Mars/Olympus",
		SlotMinutes:    0,
		MinLeadDays:    -3,
		ClosedWeekdays: []int{6, 0, 9, 6},
		DefaultHours:   hours("14:00", "9:00", "09:00", " 10:30 ", "25:00", "09:00"),
		Overrides: HourOverrides{
			"2026-12-24": hours("12:00", "08:00"),
			"not-a-date": hours("10:00"),
		},
		Holidays:      []string{"2026-12-25", "bad", "2026-01-01", "2026-12-25"},
		MaxConcurrent: 0,
	}

	cfg.Normalize()

	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Equal(t, DefaultSlotMinutes, cfg.SlotMinutes)
	assert.Equal(t, 0, cfg.MinLeadDays)
	assert.Equal(t, 1, cfg.MaxConcurrent)
	assert.Equal(t, []int{0, 6}, cfg.ClosedWeekdays)
	assert.Equal(t, hours("09:00", "10:30", "14:00"), cfg.DefaultHours)
	assert.Equal(t, HourOverrides{"2026-12-24": hours("08:00", "12:00")}, cfg.Overrides)
	assert.Equal(t, []string{"2026-01-01", "2026-12-25"}, cfg.Holidays)
}

func TestDaysAhead(t *testing.T) {
	cfg := NewDefaultCalendarConfig()
	// 2026-03-10 02:00 UTC = 2026-03-09 22:00 в Нью-Йорке
	now := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-03-09", cfg.Today(now))

	days, err := cfg.DaysAhead("2026-03-11", now)
	require.NoError(t, err)
	assert.Equal(t, 2, days)

	days, err = cfg.DaysAhead("2026-03-08", now)
	require.NoError(t, err)
	assert.Equal(t, -1, days)

	_, err = cfg.DaysAhead("2026-3-8", now)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestSlotAtAndKeyOf(t *testing.T) {
	cfg := NewDefaultCalendarConfig()

	at, err := cfg.SlotAt("2026-07-01", "09:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 1, 13, 0, 0, 0, time.UTC), at.UTC())

	key := cfg.SlotKeyOf(at.UTC())
	assert.Equal(t, SlotKey{YMD: "2026-07-01", Time: "09:00"}, key)
}

func TestClone_IsDeep(t *testing.T) {
	cfg := NewDefaultCalendarConfig()
	cfg.DefaultHours = hours("09:00")
	cfg.Overrides = HourOverrides{"2026-07-01": hours("10:00")}

	cp := cfg.Clone()
	cp.DefaultHours[0] = "11:00"
	cp.Overrides["2026-07-01"][0] = "12:00"

	assert.Equal(t, types.TimeString("09:00"), cfg.DefaultHours[0])
	assert.Equal(t, types.TimeString("10:00"), cfg.Overrides["2026-07-01"][0])
}
