package slotcounter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SlotBooking/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

// Repository журнал занятости слотов (таблица slot_counters, уникальный ключ (slot_date, slot_time)).
// Счетчики меняются только атомарными операциями, read-then-write здесь нет
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Increment атомарно увеличивает счетчик слота, создавая строку при отсутствии,
// но только если после увеличения он не превысит capacity. Одна SQL-операция:
// при конфликте строка блокируется, WHERE проверяется уже под блокировкой.
// Возвращает новое значение или ErrSlotFull
func (r *Repository) Increment(ctx context.Context, key domain.SlotKey, capacity int) (int, error) {
	if capacity < 1 {
		return 0, ErrInvalidCapacity
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("slot_counters").
		Columns("slot_date", "slot_time", "count").
		Values(key.YMD, key.Time, 1).
		Suffix(`ON CONFLICT (slot_date, slot_time) DO UPDATE
			SET count = slot_counters.count + 1, updated_at = NOW()
			WHERE slot_counters.count < ?
			RETURNING count`, capacity).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: Increment - build upsert query: %v", ErrBuildQuery, err)
	}

	var count int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrSlotFull
	}
	if err != nil {
		return 0, fmt.Errorf("%w: Increment - execute upsert: %v", ErrExecQuery, err)
	}

	return count, nil
}

// Decrement уменьшает счетчик слота на 1 с ограничением снизу нулём.
// Если строки нет или счетчик уже 0, ничего не меняет и возвращает ErrCounterUnderflow
func (r *Repository) Decrement(ctx context.Context, key domain.SlotKey) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slot_counters").
		Set("count", squirrel.Expr("count - 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"slot_date": key.YMD, "slot_time": key.Time}).
		Where(squirrel.Gt{"count": 0}).
		Suffix("RETURNING count").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: Decrement - build update query: %v", ErrBuildQuery, err)
	}

	var count int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrCounterUnderflow
	}
	if err != nil {
		return 0, fmt.Errorf("%w: Decrement - execute update: %v", ErrExecQuery, err)
	}

	return count, nil
}

// GetCounts возвращает значения счетчиков для часов даты ymd. Отсутствующие строки в результат не попадают
func (r *Repository) GetCounts(ctx context.Context, ymd string, times []types.TimeString) (map[types.TimeString]int, error) {
	result := make(map[types.TimeString]int, len(times))
	if len(times) == 0 {
		return result, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	timeValues := make([]string, 0, len(times))
	for _, t := range times {
		timeValues = append(timeValues, t.String())
	}

	query, args, err := psqlbuilder.Select("slot_time", "count").
		From("slot_counters").
		Where(squirrel.Eq{"slot_date": ymd, "slot_time": timeValues}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetCounts - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetCounts - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t     types.TimeString
			count int
		)
		if err := rows.Scan(&t, &count); err != nil {
			return nil, fmt.Errorf("%w: GetCounts - scan row: %v", ErrScanRow, err)
		}
		result[t] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetCounts - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// GetByDateRange возвращает счетчики с датами в [fromYMD, toYMD]
func (r *Repository) GetByDateRange(ctx context.Context, fromYMD, toYMD string) ([]*domain.SlotCounter, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("slot_date", "slot_time", "count", "updated_at").
		From("slot_counters").
		Where(squirrel.GtOrEq{"slot_date": fromYMD}).
		Where(squirrel.LtOrEq{"slot_date": toYMD}).
		OrderBy("slot_date ASC", "slot_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDateRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDateRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	counters := make([]*domain.SlotCounter, 0)
	for rows.Next() {
		var c domain.SlotCounter
		var updatedAt sql.NullTime
		if err := rows.Scan(&c.Key.YMD, &c.Key.Time, &c.Count, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: GetByDateRange - scan row: %v", ErrScanRow, err)
		}
		c.UpdatedAt = updatedAt.Time
		counters = append(counters, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByDateRange - rows error: %v", ErrScanRow, err)
	}

	return counters, nil
}

// LockForUpdate создаёт строку счетчика при отсутствии и блокирует её до конца транзакции.
// Возвращает текущее значение. Имеет смысл только внутри транзакции
func (r *Repository) LockForUpdate(ctx context.Context, key domain.SlotKey) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertQuery, insertArgs, err := psqlbuilder.Insert("slot_counters").
		Columns("slot_date", "slot_time", "count").
		Values(key.YMD, key.Time, 0).
		Suffix("ON CONFLICT (slot_date, slot_time) DO NOTHING").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: LockForUpdate - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return 0, fmt.Errorf("%w: LockForUpdate - execute insert: %v", ErrExecQuery, err)
	}

	selectBuilder := psqlbuilder.Select("count").
		From("slot_counters").
		Where(squirrel.Eq{"slot_date": key.YMD, "slot_time": key.Time})
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: LockForUpdate - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: LockForUpdate - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// SetCount устанавливает значение счетчика (используется сверкой с бронированиями)
func (r *Repository) SetCount(ctx context.Context, key domain.SlotKey, count int) error {
	if count < 0 {
		count = 0
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slot_counters").
		Set("count", count).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"slot_date": key.YMD, "slot_time": key.Time}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetCount - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SetCount - execute update: %v", ErrExecQuery, err)
	}

	return nil
}
