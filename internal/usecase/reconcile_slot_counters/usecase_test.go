package reconcile_slot_counters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SlotBooking/internal/service/calendar"
	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type countingMetrics struct{ corrections int }

func (m *countingMetrics) AddCounterCorrections(n int) { m.corrections += n }

func newUseCase(t *testing.T) (*UseCase, *memory.Store, *countingMetrics) {
	t.Helper()
	store := memory.NewStore()
	metrics := &countingMetrics{}
	uc := NewUseCase(
		store.SlotCounters(),
		store.Bookings(),
		calendar.NewService(store.Config(), nil, nopLogger{}),
		store.TxManager(),
		metrics,
		nopLogger{},
	)
	uc.timeProvider = fixedTime{t: time.Date(2026, 7, 1, 14, 0, 0, 0, time.UTC)}
	return uc, store, metrics
}

func addBooking(t *testing.T, store *memory.Store, number, ymd string, hh types.TimeString, status domain.BookingStatus) {
	t.Helper()
	cfg := domain.NewDefaultCalendarConfig()
	slotAt, err := cfg.SlotAt(ymd, hh)
	require.NoError(t, err)
	_, err = store.Bookings().Create(context.Background(), &domain.Booking{
		BookingNumber: number,
		AccountID:     1,
		AddressID:     1,
		SlotAt:        slotAt,
		SlotKey:       domain.SlotKey{YMD: ymd, Time: hh},
		Status:        status,
	})
	require.NoError(t, err)
}

func setCount(t *testing.T, store *memory.Store, ymd string, hh types.TimeString, n int) {
	t.Helper()
	require.NoError(t, store.SlotCounters().SetCount(context.Background(), domain.SlotKey{YMD: ymd, Time: hh}, n))
}

func count(t *testing.T, store *memory.Store, ymd string, hh types.TimeString) int {
	t.Helper()
	counts, err := store.SlotCounters().GetCounts(context.Background(), ymd, []types.TimeString{hh})
	require.NoError(t, err)
	return counts[hh]
}

func TestExecute_CorrectsDriftedCounters(t *testing.T) {
	uc, store, metrics := newUseCase(t)

	// 09:00: счетчик завышен, одно живое и одно отмененное бронирование
	setCount(t, store, "2026-07-03", "09:00", 3)
	addBooking(t, store, "10000001", "2026-07-03", "09:00", domain.StatusConfirmed)
	addBooking(t, store, "10000002", "2026-07-03", "09:00", domain.StatusCanceled)
	// 10:00: бронирование есть, счетчика нет
	addBooking(t, store, "10000003", "2026-07-03", "10:00", domain.StatusPending)
	// 13:00: счетчик верен
	setCount(t, store, "2026-07-05", "13:00", 1)
	addBooking(t, store, "10000004", "2026-07-05", "13:00", domain.StatusPending)
	// за горизонтом не трогаем
	setCount(t, store, "2026-09-01", "09:00", 5)

	resp, err := uc.Execute(context.Background(), &Request{HorizonDays: 14})

	require.NoError(t, err)
	assert.Equal(t, "2026-07-01", resp.From)
	assert.Equal(t, "2026-07-15", resp.To)
	assert.Equal(t, 3, resp.Checked)
	assert.Equal(t, []Correction{
		{Date: "2026-07-03", Time: "09:00", Was: 3, Now: 1},
		{Date: "2026-07-03", Time: "10:00", Was: 0, Now: 1},
	}, resp.Corrections)
	assert.Equal(t, 2, metrics.corrections)

	assert.Equal(t, 1, count(t, store, "2026-07-03", "09:00"))
	assert.Equal(t, 1, count(t, store, "2026-07-03", "10:00"))
	assert.Equal(t, 5, count(t, store, "2026-09-01", "09:00"))
}

func TestExecute_IsIdempotent(t *testing.T) {
	uc, store, _ := newUseCase(t)
	setCount(t, store, "2026-07-03", "09:00", 2)

	_, err := uc.Execute(context.Background(), &Request{HorizonDays: 7})
	require.NoError(t, err)

	resp, err := uc.Execute(context.Background(), &Request{HorizonDays: 7})
	require.NoError(t, err)
	assert.Empty(t, resp.Corrections)
	assert.Equal(t, 0, count(t, store, "2026-07-03", "09:00"))
}

func TestExecute_NegativeHorizon(t *testing.T) {
	uc, _, _ := newUseCase(t)

	_, err := uc.Execute(context.Background(), &Request{HorizonDays: -1})

	assert.ErrorIs(t, err, ErrInvalidInput)
}
