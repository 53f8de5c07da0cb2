package repository

import (
	"context"
	"time"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// ConvertReservation atomically flips the reservation to CONVERTED and
	// inserts the new ACTIVE trip. The reservation must be ACTIVE and
	// unexpired at now; otherwise ErrReservationNotActive or
	// ErrReservationExpired is returned (expired rows are persisted as
	// EXPIRED in the same transaction). Returns ErrUserHasActiveTrip or
	// ErrVehicleInUse if an active trip already exists.
	ConvertReservation(ctx context.Context, reservationID string, now time.Time, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetActiveByUserID retrieves the user's ACTIVE trip, or ErrNotFound.
	GetActiveByUserID(ctx context.Context, userID string) (*domain.Trip, error)

	// GetByUserID retrieves the user's trips, newest first.
	GetByUserID(ctx context.Context, userID string) ([]*domain.Trip, error)

	// Complete atomically marks the ACTIVE trip COMPLETED with its final
	// timestamps/coordinates/distance and inserts the receipt. Returns
	// ErrTripNotActive if the trip is no longer active.
	Complete(ctx context.Context, trip *domain.Trip, receipt *domain.Receipt) error

	// SetRating attaches a one-time rating to a COMPLETED trip. Returns
	// ErrAlreadyRated if a rating exists, ErrTripNotActive if the trip has
	// not completed, ErrNotFound if the trip does not exist.
	SetRating(ctx context.Context, tripID string, stars int, comment string) error
}
