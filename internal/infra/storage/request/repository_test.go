package request

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/pkg/dbmetrics"
)

func newRepo(t *testing.T) (*Repository, *sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db), db, mock
}

func requestRow(id int64, status domain.RequestStatus, created time.Time) []driver.Value {
	return []driver.Value{
		id, int64(42), "ABCD12", int64(5), "Ruido en frenos", nil, nil,
		string(status), nil, nil, nil, nil, nil, created, created,
	}
}

func TestCreate_DuplicateActiveRequest(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery(`INSERT INTO entry_requests`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: constraintVehicleActive})

	_, err := repo.Create(context.Background(), &domain.EntryRequest{
		VehicleID: 42,
		DriverID:  5,
		Reason:    "Ruido en frenos",
		Status:    domain.RequestPending,
	})

	assert.ErrorIs(t, err, ErrActiveRequestExists)
}

func TestGetActiveByVehicle(t *testing.T) {
	repo, _, mock := newRepo(t)
	created := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM entry_requests WHERE \(vehicle_id = \$1 AND status IN \(\$2,\$3\)\) ORDER BY id DESC LIMIT 1`).
		WithArgs(int64(42), "PENDIENTE", "APROBADA").
		WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(requestRow(1, domain.RequestPending, created)...))

	req, err := repo.GetActiveByVehicle(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, req.Status)
	assert.Nil(t, req.BookingID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_LocksInsideTransaction(t *testing.T) {
	repo, db, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM entry_requests WHERE id = \$1 ORDER BY id DESC LIMIT 1 FOR UPDATE`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(requestColumns))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)

	_, err = repo.GetByID(dbmetrics.WithTx(context.Background(), tx), 9)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListApprovedUnbooked(t *testing.T) {
	repo, _, mock := newRepo(t)
	from := time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	mock.ExpectQuery(`SELECT .* FROM entry_requests WHERE status = \$1 AND booking_id IS NULL AND estimated_at >= \$2 AND estimated_at < \$3 ORDER BY estimated_at ASC`).
		WithArgs("APROBADA", from, to).
		WillReturnRows(sqlmock.NewRows(requestColumns))

	requests, err := repo.ListApprovedUnbooked(context.Background(), from, to)

	require.NoError(t, err)
	assert.Empty(t, requests)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectExec(`UPDATE entry_requests SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.EntryRequest{ID: 1, Status: domain.RequestApproved})

	assert.ErrorIs(t, err, ErrRequestNotFound)
}
