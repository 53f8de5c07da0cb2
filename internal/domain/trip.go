package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusActive    TripStatus = "ACTIVE"
	TripStatusCompleted TripStatus = "COMPLETED"
	TripStatusCancelled TripStatus = "CANCELLED"
)

// Trip represents an in-progress or finished billed rental. A trip is
// created only by converting an active reservation. Fare and duration are
// derived from the recorded timestamps, never stored as running totals.
type Trip struct {
	ID            string
	ReservationID string
	UserID        string
	VehicleID     string
	VehicleCode   string
	Status        TripStatus
	StartedAt     time.Time
	StartLat      float64
	StartLng      float64
	EndedAt       time.Time
	EndLat        float64
	EndLng        float64
	DistanceKm    float64
	RatingStars   int // 0 = not rated
	RatingComment string
}

// IsRated reports whether the owning user has already rated the trip.
func (t *Trip) IsRated() bool {
	return t.RatingStars > 0
}
