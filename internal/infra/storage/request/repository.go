package request

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

const constraintVehicleActive = "entry_requests_vehicle_active_uniq"

var requestColumns = []string{
	"id",
	"vehicle_id",
	"vehicle_plate",
	"driver_id",
	"reason",
	"phone",
	"route",
	"status",
	"estimated_at",
	"booking_id",
	"responder_id",
	"responded_at",
	"responder_notes",
	"created_at",
	"updated_at",
}

// Repository репозиторий заявок водителей на въезд
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория заявок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает заявку
// Вторая заявка в работе на тот же автомобиль отсекается уникальным индексом
func (r *Repository) Create(ctx context.Context, req *domain.EntryRequest) (*domain.EntryRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("entry_requests").
		Columns("vehicle_id", "vehicle_plate", "driver_id", "reason", "phone", "route", "status").
		Values(req.VehicleID, req.VehiclePlate, req.DriverID, req.Reason, req.Phone, req.Route, req.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&req.ID, &createdAt, &updatedAt)
	if pgerrors.IsConstraintViolation(err, constraintVehicleActive) {
		return nil, fmt.Errorf("%w: Create: %w", ErrActiveRequestExists, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	req.CreatedAt = createdAt.Time
	req.UpdatedAt = updatedAt.Time

	return req, nil
}

// GetByID получает заявку по ID (FOR UPDATE внутри транзакции)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.EntryRequest, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id}, dbmetrics.IsInTransaction(ctx))
}

// GetByBookingID заявка, породившая ингресо
func (r *Repository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.EntryRequest, error) {
	return r.getOne(ctx, "GetByBookingID", squirrel.Eq{"booking_id": bookingID}, dbmetrics.IsInTransaction(ctx))
}

// GetActiveByVehicle заявка автомобиля в статусе PENDIENTE или APROBADA
func (r *Repository) GetActiveByVehicle(ctx context.Context, vehicleID int64) (*domain.EntryRequest, error) {
	active := make([]string, len(domain.ActiveRequestStatuses))
	for i, s := range domain.ActiveRequestStatuses {
		active[i] = string(s)
	}

	return r.getOne(ctx, "GetActiveByVehicle", squirrel.And{
		squirrel.Eq{"vehicle_id": vehicleID},
		squirrel.Eq{"status": active},
	}, false)
}

// ListPending заявки PENDIENTE, сначала самые старые
func (r *Repository) ListPending(ctx context.Context) ([]*domain.EntryRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(requestColumns...).
		From("entry_requests").
		Where(squirrel.Eq{"status": string(domain.RequestPending)}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListPending - build select query: %v", ErrBuildQuery, err)
	}

	return r.list(ctx, executor, "ListPending", query, args)
}

// ListApprovedUnbooked одобренные заявки без ингресо с estimated_at в [from, to)
// Такие заявки резервируют час на всех подъёмниках
func (r *Repository) ListApprovedUnbooked(ctx context.Context, from, to time.Time) ([]*domain.EntryRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(requestColumns...).
		From("entry_requests").
		Where(squirrel.Eq{"status": string(domain.RequestApproved)}).
		Where(squirrel.Eq{"booking_id": nil}).
		Where(squirrel.GtOrEq{"estimated_at": from}).
		Where(squirrel.Lt{"estimated_at": to}).
		OrderBy("estimated_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListApprovedUnbooked - build select query: %v", ErrBuildQuery, err)
	}

	return r.list(ctx, executor, "ListApprovedUnbooked", query, args)
}

// Update сохраняет изменяемые поля заявки
func (r *Repository) Update(ctx context.Context, req *domain.EntryRequest) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("entry_requests").
		Set("status", req.Status).
		Set("estimated_at", req.EstimatedAt).
		Set("booking_id", req.BookingID).
		Set("responder_id", req.ResponderID).
		Set("responded_at", req.RespondedAt).
		Set("responder_notes", req.ResponderNotes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": req.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrRequestNotFound
	}

	return nil
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Sqlizer, lock bool) (*domain.EntryRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(requestColumns...).
		From("entry_requests").
		Where(where).
		OrderBy("id DESC").
		Limit(1)

	if lock {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	req, err := scanRequest(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan request: %w", ErrScanRow, op, err)
	}

	return req, nil
}

func (r *Repository) list(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) ([]*domain.EntryRequest, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	requests := make([]*domain.EntryRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, op, err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return requests, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*domain.EntryRequest, error) {
	var req domain.EntryRequest
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&req.ID,
		&req.VehicleID,
		&req.VehiclePlate,
		&req.DriverID,
		&req.Reason,
		&req.Phone,
		&req.Route,
		&req.Status,
		&req.EstimatedAt,
		&req.BookingID,
		&req.ResponderID,
		&req.RespondedAt,
		&req.ResponderNotes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.CreatedAt = createdAt.Time
	req.UpdatedAt = updatedAt.Time

	return &req, nil
}
