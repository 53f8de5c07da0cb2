package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/repository"
)

func TestReservationCreateActive_ExpiresStaleThenInserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReservationRepository(db)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	res := &domain.Reservation{
		ID:        "res-1",
		UserID:    "user-1",
		VehicleID: "veh-1",
		Status:    domain.ReservationStatusActive,
		CreatedAt: now,
		ExpiresAt: now.Add(5 * time.Minute),
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs(domain.ReservationStatusExpired, domain.ReservationStatusActive, now, "user-1", "veh-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs("res-1", "user-1", "veh-1", domain.ReservationStatusActive, now, res.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateActive(context.Background(), res, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationCreateActive_UserConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReservationRepository(db)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	res := &domain.Reservation{
		ID: "res-1", UserID: "user-1", VehicleID: "veh-1",
		Status: domain.ReservationStatusActive, CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute),
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE reservations SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO reservations").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_reservations_active_user"})
	mock.ExpectRollback()

	err = repo.CreateActive(context.Background(), res, now)
	assert.ErrorIs(t, err, repository.ErrUserHasActiveReservation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationCreateActive_VehicleConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReservationRepository(db)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	res := &domain.Reservation{
		ID: "res-1", UserID: "user-1", VehicleID: "veh-1",
		Status: domain.ReservationStatusActive, CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute),
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE reservations SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO reservations").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_reservations_active_vehicle"})
	mock.ExpectRollback()

	err = repo.CreateActive(context.Background(), res, now)
	assert.ErrorIs(t, err, repository.ErrVehicleReserved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReservationRepository(db)

	mock.ExpectQuery("SELECT id, user_id, vehicle_id, status, created_at, expires_at FROM reservations WHERE id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "vehicle_id", "status", "created_at", "expires_at"}))

	_, err = repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationUpdateStatus_StateMismatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReservationRepository(db)

	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs(domain.ReservationStatusCancelled, "res-1", domain.ReservationStatusActive).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("res-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err = repo.UpdateStatus(context.Background(), "res-1", domain.ReservationStatusActive, domain.ReservationStatusCancelled)
	assert.ErrorIs(t, err, repository.ErrReservationNotActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationExpireStale_ReportsCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReservationRepository(db)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs(domain.ReservationStatusExpired, domain.ReservationStatusActive, now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := repo.ExpireStale(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
