package domain

import "time"

// Receipt is the frozen, auditable summary of a completed trip's cost and
// payment outcome. Created exactly once per completed trip, immutable
// thereafter.
type Receipt struct {
	ID              string
	Number          string
	TripID          string
	UserID          string
	VehicleCode     string
	StartedAt       time.Time
	EndedAt         time.Time
	DurationMinutes int
	DistanceKm      float64
	StartLat        float64
	StartLng        float64
	EndLat          float64
	EndLng          float64
	BaseCost        float64
	TimeCost        float64
	TotalCost       float64
	PaymentMethod   PaymentMethod
	PaymentDetails  string
	BalanceBefore   float64
	BalanceAfter    float64
	CreatedAt       time.Time
}
