package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SlotBooking/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"booking_number",
	"account_id",
	"address_id",
	"slot_at",
	"slot_date",
	"slot_time",
	"service",
	"note",
	"images",
	"customer_name",
	"email",
	"phone",
	"address_line1",
	"city",
	"state",
	"zip",
	"county",
	"plan",
	"status",
	"status_history",
	"cancellation_reason",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// liveCondition отбирает бронирования, занимающие слот (статус вне терминального набора, без учёта регистра)
func liveCondition() squirrel.Sqlizer {
	return squirrel.Expr("LOWER(status) <> ALL(?)", pq.Array(domain.TerminalStatusValues()))
}

// Create сохраняет бронирование. Номер бронирования уникален: при совпадении
// вставка не выполняется и возвращается ErrDuplicateBookingNumber (транзакция при этом не прерывается)
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	history, err := json.Marshal(nonNilHistory(booking.StatusHistory))
	if err != nil {
		return nil, fmt.Errorf("%w: Create: %v", ErrEncodeHistory, err)
	}

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"booking_number",
			"account_id",
			"address_id",
			"slot_at",
			"slot_date",
			"slot_time",
			"service",
			"note",
			"images",
			"customer_name",
			"email",
			"phone",
			"address_line1",
			"city",
			"state",
			"zip",
			"county",
			"plan",
			"status",
			"status_history",
		).
		Values(
			booking.BookingNumber,
			booking.AccountID,
			booking.AddressID,
			booking.SlotAt,
			booking.SlotKey.YMD,
			booking.SlotKey.Time,
			booking.Service,
			booking.Note,
			pq.StringArray(nonNilStrings(booking.Images)),
			booking.CustomerName,
			booking.Email,
			booking.Phone,
			booking.Address.Line1,
			booking.Address.City,
			booking.Address.State,
			booking.Address.Zip,
			booking.Address.County,
			booking.Plan,
			booking.Status,
			string(history),
		).
		Suffix("ON CONFLICT (booking_number) DO NOTHING RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDuplicateBookingNumber
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// GetByIDAndAccount получает бронирование по ID только если оно принадлежит аккаунту
func (r *Repository) GetByIDAndAccount(ctx context.Context, id, accountID int64) (*domain.Booking, error) {
	return r.getOne(ctx, "GetByIDAndAccount", squirrel.Eq{"id": id, "account_id": accountID})
}

func (r *Repository) getOne(ctx context.Context, method string, where squirrel.Sqlizer) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(where)

	// Внутри транзакции блокируем строку, чтобы статус не поменялся параллельно
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan booking: %v", ErrScanRow, method, err)
	}

	return booking, nil
}

// GetByAccountID возвращает бронирования аккаунта по возрастанию времени слота
func (r *Repository) GetByAccountID(ctx context.Context, accountID int64) ([]*domain.Booking, error) {
	return r.getMany(ctx, "GetByAccountID",
		psqlbuilder.Select(bookingColumns...).
			From("bookings").
			Where(squirrel.Eq{"account_id": accountID}).
			OrderBy("slot_at ASC"),
	)
}

// FindUpcomingForAddress ищет ближайшее живое бронирование аккаунта по адресу начиная с from.
// excludeID исключает бронирование из поиска (перенос записи)
func (r *Repository) FindUpcomingForAddress(
	ctx context.Context,
	accountID, addressID int64,
	from time.Time,
	excludeID *int64,
) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"account_id": accountID, "address_id": addressID}).
		Where(squirrel.GtOrEq{"slot_at": from}).
		Where(liveCondition()).
		OrderBy("slot_at ASC").
		Limit(1)

	if excludeID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *excludeID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindUpcomingForAddress - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindUpcomingForAddress - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetWithFilter получает бронирования по фильтру администратора
func (r *Repository) GetWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	selectBuilder := psqlbuilder.Select(bookingColumns...).From("bookings")

	if filter.AccountID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"account_id": *filter.AccountID})
	}
	if filter.AddressID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"address_id": *filter.AddressID})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"slot_at": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"slot_at": *filter.To})
	}

	// Конкретный статус важнее флага IncludeInactive
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Expr("LOWER(status) = LOWER(?)", string(*filter.Status)))
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(liveCondition())
	}

	return r.getMany(ctx, "GetWithFilter", selectBuilder.OrderBy("slot_at ASC"))
}

// GetLiveBetween возвращает живые бронирования со временем слота в [from, to)
func (r *Repository) GetLiveBetween(ctx context.Context, from, to time.Time) ([]*domain.Booking, error) {
	return r.getMany(ctx, "GetLiveBetween",
		psqlbuilder.Select(bookingColumns...).
			From("bookings").
			Where(squirrel.GtOrEq{"slot_at": from}).
			Where(squirrel.Lt{"slot_at": to}).
			Where(liveCondition()).
			OrderBy("slot_at ASC"),
	)
}

// CountLiveAt считает живые бронирования, начинающиеся ровно в instant
func (r *Repository) CountLiveAt(ctx context.Context, instant time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"slot_at": instant}).
		Where(liveCondition()).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountLiveAt - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountLiveAt - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// UpdateStatus меняет статус и дописывает запись в историю статусов.
// Обновление условное: change.Status должен совпадать с текущим статусом, иначе ErrStatusChanged
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, change domain.StatusChange) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	entry, err := json.Marshal([]domain.StatusChange{change})
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus: %v", ErrEncodeHistory, err)
	}

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("status_history", squirrel.Expr("status_history || ?::jsonb", string(entry))).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": change.Status}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return r.missingOrChanged(ctx, "UpdateStatus", id)
	}

	return nil
}

// SetCancellationReason сохраняет причину отмены
func (r *Repository) SetCancellationReason(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("cancellation_reason", reason).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetCancellationReason - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SetCancellationReason - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// Delete удаляет бронирование физически, только если его статус всё ещё status
func (r *Repository) Delete(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("bookings").
		Where(squirrel.Eq{"id": id, "status": status}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return r.missingOrChanged(ctx, "Delete", id)
	}

	return nil
}

// missingOrChanged различает отсутствующую строку и параллельно изменённый статус
func (r *Repository) missingOrChanged(ctx context.Context, method string, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build exists query: %v", ErrBuildQuery, method, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %s - check exists: %v", ErrExecQuery, method, err)
	}

	return ErrStatusChanged
}

// LockAccountAddress берёт advisory-блокировку пары (аккаунт, адрес) до конца транзакции.
// Сериализует создание бронирований одного адреса, чтобы проверка "одно активное бронирование" не гонялась
func (r *Repository) LockAccountAddress(ctx context.Context, accountID, addressID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select().
		Column(squirrel.Expr("pg_advisory_xact_lock(hashtextextended(?, 0))",
			fmt.Sprintf("booking:%d:%d", accountID, addressID))).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockAccountAddress - build query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: LockAccountAddress - execute: %v", ErrExecQuery, err)
	}

	return nil
}

func (r *Repository) getMany(ctx context.Context, method string, selectBuilder squirrel.SelectBuilder) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, method, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, method, err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, method, err)
	}

	return bookings, nil
}

// scanBooking сканирует строку в порядке bookingColumns
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b          domain.Booking
		images     pq.StringArray
		historyRaw []byte
		reason     sql.NullString
		createdAt  sql.NullTime
		updatedAt  sql.NullTime
	)

	err := row.Scan(
		&b.ID,
		&b.BookingNumber,
		&b.AccountID,
		&b.AddressID,
		&b.SlotAt,
		&b.SlotKey.YMD,
		&b.SlotKey.Time,
		&b.Service,
		&b.Note,
		&images,
		&b.CustomerName,
		&b.Email,
		&b.Phone,
		&b.Address.Line1,
		&b.Address.City,
		&b.Address.State,
		&b.Address.Zip,
		&b.Address.County,
		&b.Plan,
		&b.Status,
		&historyRaw,
		&reason,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Images = nonNilStrings(images)
	b.StatusHistory = []domain.StatusChange{}
	if len(historyRaw) > 0 {
		if err := json.Unmarshal(historyRaw, &b.StatusHistory); err != nil {
			return nil, fmt.Errorf("decode status history: %w", err)
		}
	}
	if reason.Valid {
		b.CancellationReason = &reason.String
	}
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilHistory(in []domain.StatusChange) []domain.StatusChange {
	if in == nil {
		return []domain.StatusChange{}
	}
	return in
}
