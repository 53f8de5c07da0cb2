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

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

const tripColumns = `id, reservation_id, user_id, vehicle_id, vehicle_code, status,
	started_at, start_lat, start_lng, ended_at, end_lat, end_lng, distance_km,
	rating_stars, rating_comment`

// ConvertReservation flips the reservation to CONVERTED and inserts the new
// ACTIVE trip in one transaction. The reservation row is locked for the
// duration so racing conversions serialize.
func (r *TripRepository) ConvertReservation(ctx context.Context, reservationID string, now time.Time, trip *domain.Trip) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	var status domain.ReservationStatus
	var expiresAt time.Time
	err = tx.QueryRowContext(ctx, `
		SELECT status, expires_at FROM reservations WHERE id = $1 FOR UPDATE
	`, reservationID).Scan(&status, &expiresAt)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}

	if status != domain.ReservationStatusActive {
		_ = tx.Rollback()
		return repository.ErrReservationNotActive
	}

	if !now.Before(expiresAt) {
		// Persist the read-time EXPIRED transition even though the
		// conversion itself fails.
		if _, uerr := tx.ExecContext(ctx, `
			UPDATE reservations SET status = $1 WHERE id = $2
		`, domain.ReservationStatusExpired, reservationID); uerr != nil {
			_ = tx.Rollback()
			return uerr
		}
		if cerr := tx.Commit(); cerr != nil {
			return cerr
		}
		return repository.ErrReservationExpired
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE reservations SET status = $1 WHERE id = $2
	`, domain.ReservationStatusConverted, reservationID); err != nil {
		_ = tx.Rollback()
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trips (id, reservation_id, user_id, vehicle_id, vehicle_code, status,
			started_at, start_lat, start_lng)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, trip.ID, trip.ReservationID, trip.UserID, trip.VehicleID, trip.VehicleCode,
		trip.Status, trip.StartedAt, trip.StartLat, trip.StartLng)
	if err != nil {
		_ = tx.Rollback()
		return mapTripConflict(err)
	}

	return tx.Commit()
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, id)
	return scanTrip(row)
}

// GetActiveByUserID retrieves the user's ACTIVE trip.
func (r *TripRepository) GetActiveByUserID(ctx context.Context, userID string) (*domain.Trip, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+tripColumns+` FROM trips WHERE user_id = $1 AND status = $2
	`, userID, domain.TripStatusActive)
	return scanTrip(row)
}

// GetByUserID retrieves the user's trips, newest first.
func (r *TripRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Trip, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+tripColumns+` FROM trips WHERE user_id = $1 ORDER BY started_at DESC LIMIT 100
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTripRows(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// Complete marks the ACTIVE trip COMPLETED and writes the receipt in one
// transaction, so the trip never closes without its durable settlement
// record.
func (r *TripRepository) Complete(ctx context.Context, trip *domain.Trip, receipt *domain.Receipt) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var result sql.Result
	result, err = tx.ExecContext(ctx, `
		UPDATE trips SET status = $1, ended_at = $2, end_lat = $3, end_lng = $4, distance_km = $5
		WHERE id = $6 AND status = $7
	`, domain.TripStatusCompleted, trip.EndedAt, trip.EndLat, trip.EndLng,
		trip.DistanceKm, trip.ID, domain.TripStatusActive)
	if err != nil {
		return err
	}

	var rowsAffected int64
	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		err = repository.ErrTripNotActive
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO receipts (id, number, trip_id, user_id, vehicle_code, started_at, ended_at,
			duration_min, distance_km, start_lat, start_lng, end_lat, end_lng,
			base_cost, time_cost, total_cost, payment_method, payment_details,
			balance_before, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`, receipt.ID, receipt.Number, receipt.TripID, receipt.UserID, receipt.VehicleCode,
		receipt.StartedAt, receipt.EndedAt, receipt.DurationMinutes, receipt.DistanceKm,
		receipt.StartLat, receipt.StartLng, receipt.EndLat, receipt.EndLng,
		receipt.BaseCost, receipt.TimeCost, receipt.TotalCost,
		receipt.PaymentMethod, receipt.PaymentDetails,
		receipt.BalanceBefore, receipt.BalanceAfter, receipt.CreatedAt)
	if err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// SetRating attaches a one-time rating to a COMPLETED trip with a guarded
// update.
func (r *TripRepository) SetRating(ctx context.Context, tripID string, stars int, comment string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE trips SET rating_stars = $1, rating_comment = $2
		WHERE id = $3 AND status = $4 AND rating_stars IS NULL
	`, stars, comment, tripID, domain.TripStatusCompleted)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		var status domain.TripStatus
		var existing sql.NullInt64
		err := r.db.QueryRowContext(ctx, `
			SELECT status, rating_stars FROM trips WHERE id = $1
		`, tripID).Scan(&status, &existing)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repository.ErrNotFound
			}
			return err
		}
		if existing.Valid {
			return repository.ErrAlreadyRated
		}
		return repository.ErrTripNotActive
	}
	return nil
}

func scanTrip(row *sql.Row) (*domain.Trip, error) {
	var trip domain.Trip
	var endedAt sql.NullTime
	var endLat, endLng, distance sql.NullFloat64
	var stars sql.NullInt64
	var comment sql.NullString

	err := row.Scan(&trip.ID, &trip.ReservationID, &trip.UserID, &trip.VehicleID,
		&trip.VehicleCode, &trip.Status, &trip.StartedAt, &trip.StartLat, &trip.StartLng,
		&endedAt, &endLat, &endLng, &distance, &stars, &comment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	fillTripNullables(&trip, endedAt, endLat, endLng, distance, stars, comment)
	return &trip, nil
}

func scanTripRows(rows *sql.Rows) (*domain.Trip, error) {
	var trip domain.Trip
	var endedAt sql.NullTime
	var endLat, endLng, distance sql.NullFloat64
	var stars sql.NullInt64
	var comment sql.NullString

	if err := rows.Scan(&trip.ID, &trip.ReservationID, &trip.UserID, &trip.VehicleID,
		&trip.VehicleCode, &trip.Status, &trip.StartedAt, &trip.StartLat, &trip.StartLng,
		&endedAt, &endLat, &endLng, &distance, &stars, &comment); err != nil {
		return nil, err
	}

	fillTripNullables(&trip, endedAt, endLat, endLng, distance, stars, comment)
	return &trip, nil
}

func fillTripNullables(trip *domain.Trip, endedAt sql.NullTime, endLat, endLng, distance sql.NullFloat64, stars sql.NullInt64, comment sql.NullString) {
	if endedAt.Valid {
		trip.EndedAt = endedAt.Time
	}
	if endLat.Valid {
		trip.EndLat = endLat.Float64
	}
	if endLng.Valid {
		trip.EndLng = endLng.Float64
	}
	if distance.Valid {
		trip.DistanceKm = distance.Float64
	}
	if stars.Valid {
		trip.RatingStars = int(stars.Int64)
	}
	if comment.Valid {
		trip.RatingComment = comment.String
	}
}

func mapTripConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "uq_trips_active_user":
			return repository.ErrUserHasActiveTrip
		case "uq_trips_active_vehicle":
			return repository.ErrVehicleInUse
		}
	}
	return err
}
