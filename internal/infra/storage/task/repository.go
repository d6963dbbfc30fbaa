package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WorkshopService/pkg/pgerrors"
	"github.com/m04kA/SMC-WorkshopService/pkg/psqlbuilder"
)

var taskColumns = []string{
	"id",
	"booking_id",
	"title",
	"description",
	"mechanic_id",
	"status",
	"priority",
	"estimated_minutes",
	"spent_minutes",
	"parts_used",
	"notes",
	"started_at",
	"completed_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий задач ремонта и их журнала изменений
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория задач
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает задачу
func (r *Repository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("tasks").
		Columns(
			"booking_id",
			"title",
			"description",
			"mechanic_id",
			"status",
			"priority",
			"estimated_minutes",
			"parts_used",
			"notes",
		).
		Values(
			t.BookingID,
			t.Title,
			t.Description,
			t.MechanicID,
			t.Status,
			t.Priority,
			t.EstimatedMinutes,
			t.PartsUsed,
			t.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&t.ID, &createdAt, &updatedAt)
	if pgerrors.IsForeignKeyViolation(err) {
		return nil, fmt.Errorf("%w: Create: %w", ErrBookingNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time

	return t, nil
}

// GetByID получает задачу по ID
// Внутри транзакции строка блокируется: снимок для сравнения читается под блокировкой
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	t, err := scanTask(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan task: %w", ErrScanRow, err)
	}

	return t, nil
}

// Update сохраняет все изменяемые поля задачи
func (r *Repository) Update(ctx context.Context, t *domain.Task) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("tasks").
		Set("title", t.Title).
		Set("description", t.Description).
		Set("mechanic_id", t.MechanicID).
		Set("status", t.Status).
		Set("priority", t.Priority).
		Set("estimated_minutes", t.EstimatedMinutes).
		Set("spent_minutes", t.SpentMinutes).
		Set("parts_used", t.PartsUsed).
		Set("notes", t.Notes).
		Set("started_at", t.StartedAt).
		Set("completed_at", t.CompletedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": t.ID}).
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
		return ErrTaskNotFound
	}

	return nil
}

// ListByBooking возвращает задачи ингресо в порядке создания
func (r *Repository) ListByBooking(ctx context.Context, bookingID int64) ([]*domain.Task, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByBooking - scan row: %w", ErrScanRow, err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - rows error: %w", ErrScanRow, err)
	}

	return tasks, nil
}

// CountUnfinished количество задач ингресо не в статусах COMPLETADA/CANCELADA
func (r *Repository) CountUnfinished(ctx context.Context, bookingID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	finished := make([]string, len(domain.FinishedTaskStatuses))
	for i, s := range domain.FinishedTaskStatuses {
		finished[i] = string(s)
	}

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("tasks").
		Where(squirrel.Eq{"booking_id": bookingID}).
		Where(squirrel.NotEq{"status": finished}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountUnfinished - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountUnfinished - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&t.ID,
		&t.BookingID,
		&t.Title,
		&t.Description,
		&t.MechanicID,
		&t.Status,
		&t.Priority,
		&t.EstimatedMinutes,
		&t.SpentMinutes,
		&t.PartsUsed,
		&t.Notes,
		&t.StartedAt,
		&t.CompletedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time

	return &t, nil
}
