package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testConfig() *domain.CalendarConfig {
	cfg := domain.NewDefaultCalendarConfig()
	cfg.DefaultHours = []types.TimeString{"09:00", "10:00", "13:00"}
	cfg.Normalize()
	return cfg
}

// среда 2026-07-01 10:00 по Нью-Йорку
func testNow(t *testing.T, cfg *domain.CalendarConfig) time.Time {
	t.Helper()
	now, err := cfg.SlotAt("2026-07-01", "10:00")
	require.NoError(t, err)
	return now
}

func newService() (*Service, *memory.Store) {
	store := memory.NewStore()
	return NewService(store.SlotCounters(), store.Bookings(), nopLogger{}), store
}

func TestSlotsForDate_RespectsLeadTimeAndPast(t *testing.T) {
	svc, _ := newService()
	cfg := testConfig()
	now := testNow(t, cfg)

	for _, ymd := range []string{"2026-06-30", "2026-07-01", "2026-07-02"} {
		day, err := svc.SlotsForDate(context.Background(), cfg, ymd, now)
		require.NoError(t, err)
		assert.Empty(t, day.Slots, ymd)
	}

	day, err := svc.SlotsForDate(context.Background(), cfg, "2026-07-03", now)
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"09:00", "10:00", "13:00"}, day.Slots)
	assert.Equal(t, 1, day.CapacityPerSlot)
}

func TestSlotsForDate_TodayDropsHoursNotStrictlyAfterNow(t *testing.T) {
	svc, _ := newService()
	cfg := testConfig()
	cfg.MinLeadDays = 0
	now := testNow(t, cfg)

	day, err := svc.SlotsForDate(context.Background(), cfg, "2026-07-01", now)

	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"13:00"}, day.Slots)
}

func TestSlotsForDate_CounterAtCapacityHidesSlot(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()
	cfg := testConfig()
	now := testNow(t, cfg)

	_, err := store.SlotCounters().Increment(ctx, domain.SlotKey{YMD: "2026-07-03", Time: "09:00"}, 1)
	require.NoError(t, err)

	day, err := svc.SlotsForDate(ctx, cfg, "2026-07-03", now)

	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"10:00", "13:00"}, day.Slots)
	assert.Equal(t, 1, day.Taken["09:00"])
	assert.Equal(t, 0, day.Taken["13:00"])
	assert.True(t, day.IsFull("09:00"))
}

func TestSlotsForDate_LiveBookingsAreTheFloor(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()
	cfg := testConfig()
	now := testNow(t, cfg)

	slotAt, err := cfg.SlotAt("2026-07-03", "13:00")
	require.NoError(t, err)
	_, err = store.Bookings().Create(ctx, &domain.Booking{
		BookingNumber: "00000001",
		SlotAt:        slotAt,
		Status:        domain.StatusConfirmed,
	})
	require.NoError(t, err)
	_, err = store.Bookings().Create(ctx, &domain.Booking{
		BookingNumber: "00000002",
		SlotAt:        slotAt.Add(-3 * time.Hour),
		Status:        domain.StatusCanceled,
	})
	require.NoError(t, err)

	day, err := svc.SlotsForDate(ctx, cfg, "2026-07-03", now)

	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"09:00", "10:00"}, day.Slots)
	assert.Equal(t, 1, day.Taken["13:00"])
}

func TestSlotsForDate_HolidayAndInvalidDate(t *testing.T) {
	svc, _ := newService()
	cfg := testConfig()
	cfg.Holidays = []string{"2026-07-03"}
	now := testNow(t, cfg)

	day, err := svc.SlotsForDate(context.Background(), cfg, "2026-07-03", now)
	require.NoError(t, err)
	assert.Empty(t, day.Slots)

	_, err = svc.SlotsForDate(context.Background(), cfg, "2026-7-3", now)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestCheckBookable(t *testing.T) {
	cfg := testConfig()
	now := testNow(t, cfg)

	assert.NoError(t, CheckBookable(cfg, "2026-07-03", "09:00", now))
	assert.ErrorIs(t, CheckBookable(cfg, "2026-07-03", "11:00", now), ErrTimeNotBookable)
	assert.ErrorIs(t, CheckBookable(cfg, "2026-07-02", "09:00", now), ErrTimeNotBookable)
	assert.ErrorIs(t, CheckBookable(cfg, "2026-06-01", "09:00", now), ErrTimeNotBookable)
}
