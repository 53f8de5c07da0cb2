package redis

import (
	"context"
	"time"
)

// HoldStoreInterface defines the interface for reservation hold locking.
type HoldStoreInterface interface {
	AcquireVehicleHold(ctx context.Context, vehicleID string, ttl time.Duration) (bool, error)
	ReleaseVehicleHold(ctx context.Context, vehicleID string) error
}

// VehicleStoreInterface defines the interface for vehicle telemetry storage.
type VehicleStoreInterface interface {
	UpdateTelemetry(ctx context.Context, vehicleID string, t VehicleTelemetry) error
	GetTelemetry(ctx context.Context, vehicleID string) (*VehicleTelemetry, error)
	FindNearbyVehicles(ctx context.Context, lat, lng, radiusKm float64) ([]VehicleLocation, error)
	RemoveVehicle(ctx context.Context, vehicleID string) error
}

// CacheStoreInterface defines the interface for entity snapshot caching.
type CacheStoreInterface interface {
	GetReservation(ctx context.Context, id string) (*CachedReservation, error)
	SetReservation(ctx context.Context, res *CachedReservation) error
	InvalidateReservation(ctx context.Context, id string) error
	GetTrip(ctx context.Context, id string) (*CachedTrip, error)
	SetTrip(ctx context.Context, trip *CachedTrip) error
	InvalidateTrip(ctx context.Context, id string) error
}

// Ensure concrete types implement interfaces.
var (
	_ HoldStoreInterface    = (*HoldStore)(nil)
	_ VehicleStoreInterface = (*VehicleStore)(nil)
	_ CacheStoreInterface   = (*CacheStore)(nil)
)
