package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/repository"
)

// ReservationRepository is a PostgreSQL implementation of
// repository.ReservationRepository.
type ReservationRepository struct {
	db *sql.DB
}

// NewReservationRepository creates a new PostgreSQL reservation repository.
func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, user_id, vehicle_id, status, created_at, expires_at`

// CreateActive persists a new ACTIVE reservation as a single atomic unit:
// stale ACTIVE rows for the same user or vehicle are expired first, then the
// insert runs against the partial unique indexes, which serialize racing
// creates for the same user or vehicle.
func (r *ReservationRepository) CreateActive(ctx context.Context, res *domain.Reservation, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Persist the lazy EXPIRED transition so stale holds release their
	// exclusivity slot before the unique-index check.
	_, err = tx.ExecContext(ctx, `
		UPDATE reservations SET status = $1
		WHERE status = $2 AND expires_at <= $3 AND (user_id = $4 OR vehicle_id = $5)
	`, domain.ReservationStatusExpired, domain.ReservationStatusActive, now, res.UserID, res.VehicleID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reservations (id, user_id, vehicle_id, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, res.ID, res.UserID, res.VehicleID, res.Status, res.CreatedAt, res.ExpiresAt)
	if err != nil {
		err = mapReservationConflict(err)
		return err
	}

	err = tx.Commit()
	return err
}

// GetByID retrieves a reservation by ID.
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+reservationColumns+` FROM reservations WHERE id = $1
	`, id)
	return scanReservation(row)
}

// GetActiveByUserID retrieves the user's ACTIVE, unexpired reservation.
func (r *ReservationRepository) GetActiveByUserID(ctx context.Context, userID string, now time.Time) (*domain.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE user_id = $1 AND status = $2 AND expires_at > $3
	`, userID, domain.ReservationStatusActive, now)
	return scanReservation(row)
}

// GetByUserID retrieves the user's reservations, newest first.
func (r *ReservationRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT 100
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []*domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.UserID, &res.VehicleID, &res.Status, &res.CreatedAt, &res.ExpiresAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, &res)
	}
	return reservations, rows.Err()
}

// UpdateStatus transitions a reservation between statuses with a guarded
// compare-and-swap on the current status.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ReservationStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE reservations SET status = $1 WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM reservations WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrReservationNotActive
	}
	return nil
}

// ExpireStale transitions every stale ACTIVE reservation to EXPIRED.
func (r *ReservationRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE reservations SET status = $1 WHERE status = $2 AND expires_at <= $3
	`, domain.ReservationStatusExpired, domain.ReservationStatusActive, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanReservation(row *sql.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(&res.ID, &res.UserID, &res.VehicleID, &res.Status, &res.CreatedAt, &res.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// mapReservationConflict translates partial-unique-index violations into
// the typed exclusivity errors.
func mapReservationConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "uq_reservations_active_user":
			return repository.ErrUserHasActiveReservation
		case "uq_reservations_active_vehicle":
			return repository.ErrVehicleReserved
		}
	}
	return err
}
