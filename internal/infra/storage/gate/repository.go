package gate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WorkshopService/pkg/psqlbuilder"
)

// Repository репозиторий записей КПП
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей КПП
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create фиксирует въезд
func (r *Repository) Create(ctx context.Context, e *domain.GateEntry) (*domain.GateEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("gate_entries").
		Columns("vehicle_id", "plate", "driver_name", "reason", "recorded_by", "entered_at").
		Values(e.VehicleID, e.Plate, e.DriverName, e.Reason, e.RecordedBy, e.EnteredAt).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&e.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}
	e.CreatedAt = createdAt.Time

	return e, nil
}

// GetByID запись КПП вместе с привязанным ингресо (если есть)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.GateEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"g.id",
		"g.vehicle_id",
		"g.plate",
		"g.driver_name",
		"g.reason",
		"g.recorded_by",
		"g.entered_at",
		"g.exited_at",
		"b.id",
		"g.created_at",
	).
		From("gate_entries g").
		LeftJoin("bookings b ON b.gate_entry_id = g.id").
		Where(squirrel.Eq{"g.id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var e domain.GateEntry
	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&e.ID,
		&e.VehicleID,
		&e.Plate,
		&e.DriverName,
		&e.Reason,
		&e.RecordedBy,
		&e.EnteredAt,
		&e.ExitedAt,
		&e.BookingID,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan gate entry: %w", ErrScanRow, err)
	}
	e.CreatedAt = createdAt.Time

	return &e, nil
}

// SetExit отмечает выезд; повторная отметка возвращает ErrAlreadyExited
func (r *Repository) SetExit(ctx context.Context, id int64, exitedAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("gate_entries").
		Set("exited_at", exitedAt).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"exited_at": nil}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetExit - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetExit - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetExit - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAlreadyExited
	}

	return nil
}
