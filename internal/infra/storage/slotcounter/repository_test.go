package slotcounter

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

var key = domain.SlotKey{YMD: "2026-07-01", Time: "09:00"}

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(dbmetrics.Wrap(db, nil)), mock
}

func TestIncrement_Success(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`INSERT INTO slot_counters .* ON CONFLICT \(slot_date, slot_time\) DO UPDATE`).
		WithArgs("2026-07-01", "09:00", 1, 3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.Increment(context.Background(), key, 3)

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrement_FullWhenNoRowReturned(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`INSERT INTO slot_counters`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}))

	_, err := repo.Increment(context.Background(), key, 1)

	assert.ErrorIs(t, err, ErrSlotFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrement_InvalidCapacity(t *testing.T) {
	repo, _ := newRepo(t)

	_, err := repo.Increment(context.Background(), key, 0)

	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestIncrement_ExecError(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`INSERT INTO slot_counters`).WillReturnError(errors.New("connection reset"))

	_, err := repo.Increment(context.Background(), key, 1)

	assert.ErrorIs(t, err, ErrExecQuery)
}

func TestDecrement_ClampedAtZero(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`UPDATE slot_counters SET count = count - 1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}))

	_, err := repo.Decrement(context.Background(), key)

	assert.ErrorIs(t, err, ErrCounterUnderflow)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrement_Success(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`UPDATE slot_counters SET count = count - 1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err := repo.Decrement(context.Background(), key)

	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestGetCounts(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT slot_time, count FROM slot_counters`).
		WillReturnRows(sqlmock.NewRows([]string{"slot_time", "count"}).
			AddRow("09:00", 1).
			AddRow("10:00", 3))

	counts, err := repo.GetCounts(context.Background(), "2026-07-01", []types.TimeString{"09:00", "10:00", "11:00"})

	require.NoError(t, err)
	assert.Equal(t, map[types.TimeString]int{"09:00": 1, "10:00": 3}, counts)
}

func TestGetCounts_EmptyInputSkipsQuery(t *testing.T) {
	repo, mock := newRepo(t)

	counts, err := repo.GetCounts(context.Background(), "2026-07-01", nil)

	require.NoError(t, err)
	assert.Empty(t, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
