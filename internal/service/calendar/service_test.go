package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	cacheCalendar "github.com/m04kA/SMC-SlotBooking/internal/infra/cache/calendar"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SlotBooking/internal/service/calendar/models"
	"github.com/m04kA/SMC-SlotBooking/pkg/ptr"
	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newService(t *testing.T) (*Service, *memory.ConfigRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := memory.NewStore().Config()
	return NewService(repo, cacheCalendar.NewCache(client, time.Minute), nopLogger{}), repo
}

func TestGet_DefaultsWhenNothingSaved(t *testing.T) {
	svc, _ := newService(t)

	cfg, err := svc.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTimezone, cfg.Timezone)
	assert.Equal(t, domain.DefaultMinLeadDays, cfg.MinLeadDays)
	assert.Equal(t, 1, cfg.Capacity())
}

func TestUpdate_PartialMergeAndCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	// прогреваем кэш значениями по умолчанию
	_, err := svc.Get(ctx)
	require.NoError(t, err)

	_, err = svc.Update(ctx, &models.UpdateCalendarRequest{
		DefaultHours:  &[]string{"13:00", "09:00", "9:00", "24:00"},
		MaxConcurrent: ptr.Ptr(3),
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, &models.UpdateCalendarRequest{
		Overrides: &map[string][]string{"2026-07-03": {}},
	})
	require.NoError(t, err)

	cfg, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"09:00", "13:00"}, cfg.DefaultHours)
	assert.Equal(t, 3, cfg.Capacity())
	assert.Empty(t, cfg.HoursForDate("2026-07-03"))
}

func TestUpdate_OverridesReplaceWholeMapping(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.Update(ctx, &models.UpdateCalendarRequest{
		Overrides: &map[string][]string{"2026-07-03": {"10:00"}, "2026-07-04": {"11:00"}},
	})
	require.NoError(t, err)

	saved, err := svc.Update(ctx, &models.UpdateCalendarRequest{
		Overrides: &map[string][]string{"2026-07-05": {"12:00"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-07-05"}, saved.Overrides.Dates())
}

func TestUpdate_EmptyRequestRejected(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Update(context.Background(), &models.UpdateCalendarRequest{})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdate_OutOfRangeValuesAreNormalized(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	saved, err := svc.Update(ctx, &models.UpdateCalendarRequest{
		Timezone:       ptr.Ptr("Mars/Olympus"),
		SlotMinutes:    ptr.Ptr(0),
		MinLeadDays:    ptr.Ptr(-3),
		MaxConcurrent:  ptr.Ptr(0),
		ClosedWeekdays: &[]int{7, 0, -1, 0},
		DefaultHours:   &[]string{"14:00", "9:00", "09:00"},
		Holidays:       &[]string{"12/25/2026", "2026-12-25"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultTimezone, saved.Timezone)
	assert.Equal(t, domain.DefaultSlotMinutes, saved.SlotMinutes)
	assert.Equal(t, 0, saved.MinLeadDays)
	assert.Equal(t, 1, saved.Capacity())
	assert.Equal(t, []int{0}, saved.ClosedWeekdays)
	assert.Equal(t, []types.TimeString{"09:00", "14:00"}, saved.DefaultHours)
	assert.Equal(t, []string{"2026-12-25"}, saved.Holidays)
}

func TestGet_WorksWithoutCache(t *testing.T) {
	svc := NewService(memory.NewStore().Config(), nil, nopLogger{})

	cfg, err := svc.Get(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestFromDomainConfig_PlainOverrides(t *testing.T) {
	cfg := domain.NewDefaultCalendarConfig()
	cfg.Overrides = domain.HourOverrides{"2026-07-03": {"09:00"}}

	resp := models.FromDomainConfig(cfg)

	assert.Equal(t, map[string][]string{"2026-07-03": {"09:00"}}, resp.Overrides)
	assert.Nil(t, resp.UpdatedAt)
}
