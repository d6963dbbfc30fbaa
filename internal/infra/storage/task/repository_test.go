package task

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/pkg/ptr"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db), mock
}

func TestCountUnfinished(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tasks WHERE booking_id = \$1 AND status NOT IN \(\$2,\$3\)`).
		WithArgs(int64(7), "COMPLETADA", "CANCELADA").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountUnfinished(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_ScansNullableFields(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM tasks WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(taskColumns).AddRow(
			int64(3), int64(7), "Cambiar filtro", nil, int64(11),
			"EN_PROCESO", "ALTA", 30, nil, nil,
			nil, now, nil, now, now,
		))

	task, err := repo.GetByID(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, domain.TaskInProgress, task.Status)
	assert.Equal(t, domain.PriorityHigh, task.Priority)
	assert.Equal(t, ptr.Ptr(int64(11)), task.MechanicID)
	assert.Equal(t, ptr.Ptr(30), task.EstimatedMinutes)
	assert.Nil(t, task.CompletedAt)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT .* FROM tasks`).
		WillReturnRows(sqlmock.NewRows(taskColumns))

	_, err := repo.GetByID(context.Background(), 3)

	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestAppendHistory_BatchInsert(t *testing.T) {
	repo, mock := newRepo(t)
	at := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	entries := []*domain.TaskHistoryEntry{
		{TaskID: 3, Kind: domain.ChangeStatus, Description: "Estado cambiado de PENDIENTE a EN_PROCESO", ActorID: 1, CreatedAt: at},
		{TaskID: 3, Kind: domain.ChangePriority, Description: "Prioridad cambiada de MEDIA a ALTA", ActorID: 1, CreatedAt: at},
	}

	mock.ExpectQuery(`INSERT INTO task_history \(task_id,kind,old_value,new_value,description,actor_id,created_at\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6,\$7\),\(\$8,\$9,\$10,\$11,\$12,\$13,\$14\) RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)).AddRow(int64(101)))

	require.NoError(t, repo.AppendHistory(context.Background(), entries))
	assert.Equal(t, int64(100), entries[0].ID)
	assert.Equal(t, int64(101), entries[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendHistory_NothingToWrite(t *testing.T) {
	repo, mock := newRepo(t)

	require.NoError(t, repo.AppendHistory(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
