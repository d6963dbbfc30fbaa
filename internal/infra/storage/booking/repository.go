package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WorkshopService/pkg/pgerrors"
	"github.com/m04kA/SMC-WorkshopService/pkg/psqlbuilder"
)

const (
	constraintResourceSlot  = "bookings_resource_slot_excl"
	constraintVehicleActive = "bookings_vehicle_active_uniq"
)

var bookingColumns = []string{
	"id",
	"vehicle_id",
	"vehicle_plate",
	"resource_id",
	"driver_id",
	"scheduled_at",
	"duration_minutes",
	"arrived_at",
	"started_at",
	"finished_at",
	"status",
	"reason",
	"notes",
	"required_part",
	"odometer_km",
	"scheduled_by",
	"supervisor_id",
	"gate_entry_id",
	"created_at",
	"updated_at",
}

// Repository репозиторий ингресо
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория ингресо
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает ингресо
// Пересечение окна на подъёмнике и второе активное ингресо автомобиля
// отсекаются ограничениями БД в момент записи
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"vehicle_id",
			"vehicle_plate",
			"resource_id",
			"driver_id",
			"scheduled_at",
			"scheduled_end",
			"duration_minutes",
			"status",
			"reason",
			"notes",
			"required_part",
			"odometer_km",
			"scheduled_by",
			"supervisor_id",
			"gate_entry_id",
		).
		Values(
			booking.VehicleID,
			booking.VehiclePlate,
			booking.ResourceID,
			booking.DriverID,
			booking.ScheduledAt,
			booking.ScheduledEnd(),
			booking.DurationMinutes,
			booking.Status,
			booking.Reason,
			booking.Notes,
			booking.RequiredPart,
			booking.OdometerKm,
			booking.ScheduledBy,
			booking.SupervisorID,
			booking.GateEntryID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, mapWriteError("Create", err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает ингресо по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// GetActiveByVehicle возвращает активное ингресо автомобиля
// (PROGRAMADO, EN_PROCESO, EN_PAUSA, TERMINADO) или ErrBookingNotFound
func (r *Repository) GetActiveByVehicle(ctx context.Context, vehicleID int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"vehicle_id": vehicleID}).
		Where(squirrel.Eq{"status": statusStrings(domain.ActiveBookingStatuses)}).
		OrderBy("scheduled_at DESC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByVehicle - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByVehicle - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// ListOccupying возвращает ингресо, занимающие подъёмники resourceIDs
// в окне [from, to): статус PROGRAMADO или EN_PROCESO и строгое пересечение интервалов
// Внутри транзакции строки блокируются, чтобы повторная проверка при записи видела актуальные данные
func (r *Repository) ListOccupying(ctx context.Context, resourceIDs []int64, from, to time.Time) ([]*domain.Booking, error) {
	if len(resourceIDs) == 0 {
		return []*domain.Booking{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"resource_id": resourceIDs}).
		Where(squirrel.Eq{"status": statusStrings(domain.OccupyingBookingStatuses)}).
		Where(squirrel.Lt{"scheduled_at": to}).
		Where(squirrel.Gt{"scheduled_end": from}).
		OrderBy("scheduled_at ASC", "resource_id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOccupying - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOccupying - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// FindScheduledForGateLink ищет ближайшее PROGRAMADO ингресо автомобиля
// начиная с from, у которого ещё нет записи КПП
func (r *Repository) FindScheduledForGateLink(ctx context.Context, vehicleID int64, from time.Time) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"vehicle_id": vehicleID}).
		Where(squirrel.Eq{"status": string(domain.BookingScheduled)}).
		Where(squirrel.Eq{"gate_entry_id": nil}).
		Where(squirrel.GtOrEq{"scheduled_at": from}).
		OrderBy("scheduled_at ASC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindScheduledForGateLink - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindScheduledForGateLink - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// Update сохраняет изменяемые поля ингресо (статус, отметки времени, заметки, связи)
func (r *Repository) Update(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", booking.Status).
		Set("arrived_at", booking.ArrivedAt).
		Set("started_at", booking.StartedAt).
		Set("finished_at", booking.FinishedAt).
		Set("notes", booking.Notes).
		Set("odometer_km", booking.OdometerKm).
		Set("supervisor_id", booking.SupervisorID).
		Set("gate_entry_id", booking.GateEntryID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("Update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// LinkGateEntry привязывает запись КПП к ингресо, если привязки ещё нет
func (r *Repository) LinkGateEntry(ctx context.Context, bookingID, gateEntryID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("gate_entry_id", gateEntryID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": bookingID}).
		Where(squirrel.Eq{"gate_entry_id": nil}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: LinkGateEntry - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("LinkGateEntry", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: LinkGateEntry - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// mapWriteError переводит нарушения ограничений в ошибки репозитория,
// сохраняя исходную ошибку драйвера в цепочке
func mapWriteError(op string, err error) error {
	switch {
	case pgerrors.IsConstraintViolation(err, constraintResourceSlot):
		return fmt.Errorf("%w: %s: %w", ErrSlotTaken, op, err)
	case pgerrors.IsConstraintViolation(err, constraintVehicleActive):
		return fmt.Errorf("%w: %s: %w", ErrVehicleBusy, op, err)
	case pgerrors.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %s: %w", ErrResourceNotFound, op, err)
	}
	return fmt.Errorf("%w: %s - execute: %w", ErrExecQuery, op, err)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.VehicleID,
		&booking.VehiclePlate,
		&booking.ResourceID,
		&booking.DriverID,
		&booking.ScheduledAt,
		&booking.DurationMinutes,
		&booking.ArrivedAt,
		&booking.StartedAt,
		&booking.FinishedAt,
		&booking.Status,
		&booking.Reason,
		&booking.Notes,
		&booking.RequiredPart,
		&booking.OdometerKm,
		&booking.ScheduledBy,
		&booking.SupervisorID,
		&booking.GateEntryID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс ингресо
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
