package pause

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

const constraintOpenPause = "pauses_open_uniq"

var pauseColumns = []string{
	"id",
	"booking_id",
	"reason",
	"description",
	"started_at",
	"ended_at",
	"recorded_by",
}

// Repository репозиторий пауз ингресо
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория пауз
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create открывает паузу
func (r *Repository) Create(ctx context.Context, p *domain.Pause) (*domain.Pause, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("pauses").
		Columns("booking_id", "reason", "description", "started_at", "recorded_by").
		Values(p.BookingID, p.Reason, p.Description, p.StartedAt, p.RecordedBy).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.ID)
	if pgerrors.IsConstraintViolation(err, constraintOpenPause) {
		return nil, fmt.Errorf("%w: Create: %w", ErrPauseAlreadyOpen, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return p, nil
}

// GetOpen возвращает открытую паузу ингресо
func (r *Repository) GetOpen(ctx context.Context, bookingID int64) (*domain.Pause, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(pauseColumns...).
		From("pauses").
		Where(squirrel.Eq{"booking_id": bookingID}).
		Where(squirrel.Eq{"ended_at": nil})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOpen - build select query: %v", ErrBuildQuery, err)
	}

	p, err := scanPause(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPauseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetOpen - scan pause: %w", ErrScanRow, err)
	}

	return p, nil
}

// Close закрывает паузу с отметкой endedAt
func (r *Repository) Close(ctx context.Context, id int64, endedAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("pauses").
		Set("ended_at", endedAt).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"ended_at": nil}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Close - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Close - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Close - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrPauseNotFound
	}

	return nil
}

// ListByBooking возвращает все паузы ингресо в хронологическом порядке
func (r *Repository) ListByBooking(ctx context.Context, bookingID int64) ([]*domain.Pause, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(pauseColumns...).
		From("pauses").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("started_at ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	pauses := make([]*domain.Pause, 0)
	for rows.Next() {
		p, err := scanPause(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByBooking - scan row: %w", ErrScanRow, err)
		}
		pauses = append(pauses, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - rows error: %w", ErrScanRow, err)
	}

	return pauses, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPause(row rowScanner) (*domain.Pause, error) {
	var p domain.Pause
	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.Reason,
		&p.Description,
		&p.StartedAt,
		&p.EndedAt,
		&p.RecordedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
