package config

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SlotBooking/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

// singletonID календарь один на весь сервис
const singletonID = 1

// Repository репозиторий конфигурации календаря (одна строка в calendar_config)
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get загружает конфигурацию и нормализует её
func (r *Repository) Get(ctx context.Context) (*domain.CalendarConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"timezone",
		"slot_minutes",
		"min_lead_days",
		"closed_weekdays",
		"default_hours",
		"overrides",
		"holidays",
		"max_concurrent",
		"created_at",
		"updated_at",
	).
		From("calendar_config").
		Where(squirrel.Eq{"id": singletonID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var (
		cfg            domain.CalendarConfig
		closedWeekdays pq.Int64Array
		defaultHours   pq.StringArray
		holidays       pq.StringArray
		overridesRaw   []byte
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&cfg.ID,
		&cfg.Timezone,
		&cfg.SlotMinutes,
		&cfg.MinLeadDays,
		&closedWeekdays,
		&defaultHours,
		&overridesRaw,
		&holidays,
		&cfg.MaxConcurrent,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan config: %v", ErrScanRow, err)
	}

	cfg.ClosedWeekdays = make([]int, 0, len(closedWeekdays))
	for _, d := range closedWeekdays {
		cfg.ClosedWeekdays = append(cfg.ClosedWeekdays, int(d))
	}
	cfg.DefaultHours = toTimeStrings(defaultHours)
	cfg.Holidays = []string(holidays)

	cfg.Overrides, err = decodeOverrides(overridesRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: Get - decode overrides: %v", ErrScanRow, err)
	}

	cfg.Normalize()
	return &cfg, nil
}

// Save нормализует и сохраняет конфигурацию (upsert единственной строки)
func (r *Repository) Save(ctx context.Context, cfg *domain.CalendarConfig) (*domain.CalendarConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	cfg.Normalize()

	overrides, err := encodeOverrides(cfg.Overrides)
	if err != nil {
		return nil, fmt.Errorf("%w: Save: %v", ErrEncodeOverrides, err)
	}

	closedWeekdays := make(pq.Int64Array, 0, len(cfg.ClosedWeekdays))
	for _, d := range cfg.ClosedWeekdays {
		closedWeekdays = append(closedWeekdays, int64(d))
	}

	query, args, err := psqlbuilder.Insert("calendar_config").
		Columns(
			"id",
			"timezone",
			"slot_minutes",
			"min_lead_days",
			"closed_weekdays",
			"default_hours",
			"overrides",
			"holidays",
			"max_concurrent",
		).
		Values(
			singletonID,
			cfg.Timezone,
			cfg.SlotMinutes,
			cfg.MinLeadDays,
			closedWeekdays,
			pq.StringArray(fromTimeStrings(cfg.DefaultHours)),
			string(overrides),
			pq.StringArray(cfg.Holidays),
			cfg.MaxConcurrent,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			timezone = EXCLUDED.timezone,
			slot_minutes = EXCLUDED.slot_minutes,
			min_lead_days = EXCLUDED.min_lead_days,
			closed_weekdays = EXCLUDED.closed_weekdays,
			default_hours = EXCLUDED.default_hours,
			overrides = EXCLUDED.overrides,
			holidays = EXCLUDED.holidays,
			max_concurrent = EXCLUDED.max_concurrent,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Save - build upsert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Save - execute upsert: %v", ErrExecQuery, err)
	}

	return cfg, nil
}

func encodeOverrides(o domain.HourOverrides) ([]byte, error) {
	plain := make(map[string][]string, len(o))
	for _, date := range o.Dates() {
		plain[date] = fromTimeStrings(o[date])
	}
	return json.Marshal(plain)
}

func decodeOverrides(raw []byte) (domain.HourOverrides, error) {
	out := domain.HourOverrides{}
	if len(raw) == 0 {
		return out, nil
	}
	var plain map[string][]string
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, err
	}
	for date, hh := range plain {
		out[date] = toTimeStrings(hh)
	}
	return out, nil
}

func toTimeStrings(in []string) []types.TimeString {
	out := make([]types.TimeString, 0, len(in))
	for _, s := range in {
		out = append(out, types.TimeString(s))
	}
	return out
}

func fromTimeStrings(in []types.TimeString) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		out = append(out, t.String())
	}
	return out
}
