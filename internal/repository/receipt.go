package repository

import (
	"context"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
)

// ReceiptRepository defines read operations for receipts. Receipts are
// written once by TripRepository.Complete and never updated.
type ReceiptRepository interface {
	// GetByID retrieves a receipt by ID.
	GetByID(ctx context.Context, id string) (*domain.Receipt, error)

	// GetByTripID retrieves the receipt for a trip, or ErrNotFound.
	GetByTripID(ctx context.Context, tripID string) (*domain.Receipt, error)

	// GetByUserID retrieves the user's receipts, newest first.
	GetByUserID(ctx context.Context, userID string) ([]*domain.Receipt, error)
}
