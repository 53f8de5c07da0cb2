package postgres

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/repository"
)

// WalletRepository is a PostgreSQL implementation of
// repository.WalletRepository. Balance mutations and their ledger entries
// always commit together.
type WalletRepository struct {
	db *sql.DB
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

const walletTxColumns = `id, user_id, trip_id, amount, card_amount, type, method, method_details,
	balance_before, balance_after, created_at`

// GetBalance returns the user's current wallet balance.
func (r *WalletRepository) GetBalance(ctx context.Context, userID string) (float64, error) {
	var balance float64
	err := r.db.QueryRowContext(ctx, `SELECT balance FROM wallets WHERE user_id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}
	return balance, nil
}

// ApplyTripCharge debits the wallet and appends the TRIP_CHARGE entry. The
// wallet row is locked so the before/after snapshot is exact; the entry's
// BalanceBefore/BalanceAfter are overwritten with the authoritative values.
func (r *WalletRepository) ApplyTripCharge(ctx context.Context, entry *domain.WalletTransaction) error {
	if entry.Amount > 0 {
		return errors.New("trip charge amount must be zero or negative")
	}
	return r.applyEntry(ctx, entry)
}

// ApplyTopUp credits the wallet and appends the TOP_UP entry.
func (r *WalletRepository) ApplyTopUp(ctx context.Context, entry *domain.WalletTransaction) error {
	if entry.Amount <= 0 {
		return errors.New("top-up amount must be positive")
	}
	return r.applyEntry(ctx, entry)
}

func (r *WalletRepository) applyEntry(ctx context.Context, entry *domain.WalletTransaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var before float64
	err = tx.QueryRowContext(ctx, `
		SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE
	`, entry.UserID).Scan(&before)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = repository.ErrNotFound
		}
		return err
	}

	after := round2(before + entry.Amount)
	if after < 0 {
		err = repository.ErrInsufficientBalance
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE wallets SET balance = $1 WHERE user_id = $2
	`, after, entry.UserID); err != nil {
		return err
	}

	entry.BalanceBefore = before
	entry.BalanceAfter = after

	var tripID sql.NullString
	if entry.TripID != "" {
		tripID = sql.NullString{String: entry.TripID, Valid: true}
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_transactions (id, user_id, trip_id, amount, card_amount, type,
			method, method_details, balance_before, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, entry.ID, entry.UserID, tripID, entry.Amount, entry.CardAmount, entry.Type,
		entry.Method, entry.MethodDetails, entry.BalanceBefore, entry.BalanceAfter, entry.CreatedAt); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// GetTripCharge returns the TRIP_CHARGE entry recorded for the trip.
func (r *WalletRepository) GetTripCharge(ctx context.Context, tripID string) (*domain.WalletTransaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+walletTxColumns+` FROM wallet_transactions
		WHERE trip_id = $1 AND type = $2
	`, tripID, domain.TransactionTypeTripCharge)
	return scanWalletTx(row)
}

// GetByUserID retrieves the user's ledger entries, newest first.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.WalletTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+walletTxColumns+` FROM wallet_transactions
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT 100
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.WalletTransaction
	for rows.Next() {
		var entry domain.WalletTransaction
		var tripID sql.NullString
		if err := rows.Scan(&entry.ID, &entry.UserID, &tripID, &entry.Amount, &entry.CardAmount,
			&entry.Type, &entry.Method, &entry.MethodDetails, &entry.BalanceBefore,
			&entry.BalanceAfter, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if tripID.Valid {
			entry.TripID = tripID.String
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func scanWalletTx(row *sql.Row) (*domain.WalletTransaction, error) {
	var entry domain.WalletTransaction
	var tripID sql.NullString
	err := row.Scan(&entry.ID, &entry.UserID, &tripID, &entry.Amount, &entry.CardAmount,
		&entry.Type, &entry.Method, &entry.MethodDetails, &entry.BalanceBefore,
		&entry.BalanceAfter, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if tripID.Valid {
		entry.TripID = tripID.String
	}
	return &entry, nil
}

// round2 keeps stored balances exact at cent granularity.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
