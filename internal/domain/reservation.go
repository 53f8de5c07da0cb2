package domain

import "time"

// ReservationStatus represents the current status of a reservation.
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "ACTIVE"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusExpired   ReservationStatus = "EXPIRED"
	ReservationStatusConverted ReservationStatus = "CONVERTED"
)

// Reservation is a time-boxed exclusive hold on a vehicle prior to trip start.
// At most one ACTIVE reservation exists per user and per vehicle at any time.
type Reservation struct {
	ID        string
	UserID    string
	VehicleID string
	Status    ReservationStatus
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsActiveAt reports whether the reservation is usable at the given instant.
// A row still marked ACTIVE past its expiry is treated as inactive; the
// EXPIRED transition is persisted lazily by writers and by the sweeper.
func (r *Reservation) IsActiveAt(now time.Time) bool {
	return r.Status == ReservationStatusActive && now.Before(r.ExpiresAt)
}

// RemainingSeconds returns the whole seconds left before expiry, floored at zero.
func (r *Reservation) RemainingSeconds(now time.Time) int64 {
	if r.Status != ReservationStatusActive {
		return 0
	}
	left := r.ExpiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int64(left / time.Second)
}
