package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/repository"
)

// Querier is the subset of database/sql query methods shared by *sql.DB
// and *sql.Tx, letting read-side repositories run either against the pool
// or inside a caller-owned transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// ReceiptRepository is a PostgreSQL implementation of
// repository.ReceiptRepository. Receipts are inserted by
// TripRepository.Complete; this repository only reads them, so it can run
// against either the pool or an open transaction.
type ReceiptRepository struct {
	q Querier
}

// NewReceiptRepository creates a new PostgreSQL receipt repository.
func NewReceiptRepository(db *sql.DB) *ReceiptRepository {
	return &ReceiptRepository{q: db}
}

// NewReceiptRepositoryWithTx creates a receipt repository that reads within
// an open transaction.
func NewReceiptRepositoryWithTx(tx *sql.Tx) *ReceiptRepository {
	return &ReceiptRepository{q: tx}
}

const receiptColumns = `id, number, trip_id, user_id, vehicle_code, started_at, ended_at,
	duration_min, distance_km, start_lat, start_lng, end_lat, end_lng,
	base_cost, time_cost, total_cost, payment_method, payment_details,
	balance_before, balance_after, created_at`

// GetByID retrieves a receipt by ID.
func (r *ReceiptRepository) GetByID(ctx context.Context, id string) (*domain.Receipt, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE id = $1`, id)
	return scanReceipt(row)
}

// GetByTripID retrieves the receipt for a trip.
func (r *ReceiptRepository) GetByTripID(ctx context.Context, tripID string) (*domain.Receipt, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE trip_id = $1`, tripID)
	return scanReceipt(row)
}

// GetByUserID retrieves the user's receipts, newest first.
func (r *ReceiptRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Receipt, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+receiptColumns+` FROM receipts
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT 100
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []*domain.Receipt
	for rows.Next() {
		var rec domain.Receipt
		if err := rows.Scan(&rec.ID, &rec.Number, &rec.TripID, &rec.UserID, &rec.VehicleCode,
			&rec.StartedAt, &rec.EndedAt, &rec.DurationMinutes, &rec.DistanceKm,
			&rec.StartLat, &rec.StartLng, &rec.EndLat, &rec.EndLng,
			&rec.BaseCost, &rec.TimeCost, &rec.TotalCost,
			&rec.PaymentMethod, &rec.PaymentDetails,
			&rec.BalanceBefore, &rec.BalanceAfter, &rec.CreatedAt); err != nil {
			return nil, err
		}
		receipts = append(receipts, &rec)
	}
	return receipts, rows.Err()
}

func scanReceipt(row *sql.Row) (*domain.Receipt, error) {
	var rec domain.Receipt
	err := row.Scan(&rec.ID, &rec.Number, &rec.TripID, &rec.UserID, &rec.VehicleCode,
		&rec.StartedAt, &rec.EndedAt, &rec.DurationMinutes, &rec.DistanceKm,
		&rec.StartLat, &rec.StartLng, &rec.EndLat, &rec.EndLng,
		&rec.BaseCost, &rec.TimeCost, &rec.TotalCost,
		&rec.PaymentMethod, &rec.PaymentDetails,
		&rec.BalanceBefore, &rec.BalanceAfter, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
