package repository

import (
	"context"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
)

// WalletRepository defines the persistence operations for wallet balances
// and their append-only ledger. Every balance mutation is applied in the
// same transaction as its ledger entry.
type WalletRepository interface {
	// GetBalance returns the user's current wallet balance.
	GetBalance(ctx context.Context, userID string) (float64, error)

	// ApplyTripCharge debits entry.Amount's magnitude from the wallet and
	// appends the TRIP_CHARGE ledger entry atomically. entry.Amount is
	// signed (zero or negative). Returns ErrInsufficientBalance if the
	// debit would take the balance below zero.
	ApplyTripCharge(ctx context.Context, entry *domain.WalletTransaction) error

	// ApplyTopUp credits the wallet and appends the TOP_UP ledger entry
	// atomically. entry.Amount must be positive.
	ApplyTopUp(ctx context.Context, entry *domain.WalletTransaction) error

	// GetTripCharge returns the TRIP_CHARGE entry recorded for the trip,
	// or ErrNotFound. Used to make settlement idempotent per trip.
	GetTripCharge(ctx context.Context, tripID string) (*domain.WalletTransaction, error)

	// GetByUserID retrieves the user's ledger entries, newest first.
	GetByUserID(ctx context.Context, userID string) ([]*domain.WalletTransaction, error)
}
