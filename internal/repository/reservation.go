package repository

import (
	"context"
	"time"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
)

// ReservationRepository defines the persistence operations for reservations.
//
// CreateActive is the exclusivity-critical operation: the check-then-insert
// runs as a single atomic unit against the store, so a race between
// concurrent creates for the same user or vehicle can never produce two
// ACTIVE rows.
type ReservationRepository interface {
	// CreateActive persists a new ACTIVE reservation. Stale ACTIVE rows
	// (expiry at or before now) for the same user or vehicle are
	// transitioned to EXPIRED within the same transaction before the
	// exclusivity check. Returns ErrUserHasActiveReservation or
	// ErrVehicleReserved on conflict.
	CreateActive(ctx context.Context, res *domain.Reservation, now time.Time) error

	// GetByID retrieves a reservation by ID.
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)

	// GetActiveByUserID retrieves the user's ACTIVE, unexpired reservation,
	// or ErrNotFound.
	GetActiveByUserID(ctx context.Context, userID string, now time.Time) (*domain.Reservation, error)

	// GetByUserID retrieves the user's reservations, newest first.
	GetByUserID(ctx context.Context, userID string) ([]*domain.Reservation, error)

	// UpdateStatus transitions a reservation from one status to another.
	// Returns ErrReservationNotActive if the row is no longer in the
	// expected `from` status, ErrNotFound if the row does not exist.
	UpdateStatus(ctx context.Context, id string, from, to domain.ReservationStatus) error

	// ExpireStale transitions every ACTIVE reservation whose expiry is at
	// or before now to EXPIRED, returning how many rows changed.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}
