package task

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WorkshopService/pkg/psqlbuilder"
)

var historyColumns = []string{
	"id",
	"task_id",
	"kind",
	"old_value",
	"new_value",
	"description",
	"actor_id",
	"created_at",
}

// AppendHistory дописывает записи журнала одним INSERT
// Журнал только пополняется: методов изменения и удаления нет
func (r *Repository) AppendHistory(ctx context.Context, entries []*domain.TaskHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("task_history").
		Columns("task_id", "kind", "old_value", "new_value", "description", "actor_id", "created_at")

	for _, e := range entries {
		insertBuilder = insertBuilder.Values(e.TaskID, e.Kind, e.OldValue, e.NewValue, e.Description, e.ActorID, e.CreatedAt)
	}

	query, args, err := insertBuilder.Suffix("RETURNING id").ToSql()
	if err != nil {
		return fmt.Errorf("%w: AppendHistory - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: AppendHistory - execute insert: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if i < len(entries) {
			if err := rows.Scan(&entries[i].ID); err != nil {
				return fmt.Errorf("%w: AppendHistory - scan id: %w", ErrScanRow, err)
			}
		}
		i++
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: AppendHistory - rows error: %w", ErrScanRow, err)
	}

	return nil
}

// ListHistory журнал изменений задачи в хронологическом порядке
func (r *Repository) ListHistory(ctx context.Context, taskID int64) ([]*domain.TaskHistoryEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(historyColumns...).
		From("task_history").
		Where(squirrel.Eq{"task_id": taskID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListHistory - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListHistory - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.TaskHistoryEntry, 0)
	for rows.Next() {
		var e domain.TaskHistoryEntry
		if err := rows.Scan(
			&e.ID,
			&e.TaskID,
			&e.Kind,
			&e.OldValue,
			&e.NewValue,
			&e.Description,
			&e.ActorID,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: ListHistory - scan row: %w", ErrScanRow, err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListHistory - rows error: %w", ErrScanRow, err)
	}

	return entries, nil
}
