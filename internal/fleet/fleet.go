// Package fleet provides the vehicle inventory collaborator boundary. The
// engine only ever reads point-in-time vehicle snapshots; inventory
// management itself lives outside this service.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	internalRedis "github.com/Omar1Ach/EcoRide-Backend-sub001/internal/redis"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
)

// ErrVehicleNotFound is returned when the fleet has no such vehicle.
var ErrVehicleNotFound = errors.New("vehicle not found")

// Fleet returns live vehicle data for a vehicle id.
type Fleet interface {
	GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error)
}

// SimulatedFleet serves vehicle snapshots from the Redis telemetry store,
// falling back to a deterministic simulation for vehicles that have never
// reported. The simulation is stable per vehicle id so receipts can be
// audited against it.
type SimulatedFleet struct {
	vehicles internalRedis.VehicleStoreInterface
	now      func() time.Time
}

// NewSimulatedFleet creates a fleet backed by the given telemetry store.
func NewSimulatedFleet(vehicles internalRedis.VehicleStoreInterface) *SimulatedFleet {
	return &SimulatedFleet{vehicles: vehicles, now: time.Now}
}

// GetVehicle returns the vehicle's current snapshot.
func (f *SimulatedFleet) GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	if vehicleID == "" {
		return nil, ErrVehicleNotFound
	}

	vehicle := &domain.Vehicle{
		ID:     vehicleID,
		Code:   VehicleCode(vehicleID),
		Status: domain.VehicleStatusAvailable,
	}

	var telemetry *internalRedis.VehicleTelemetry
	if f.vehicles != nil {
		var err error
		telemetry, err = f.vehicles.GetTelemetry(ctx, vehicleID)
		if err != nil {
			return nil, err
		}
	}

	if telemetry != nil {
		vehicle.BatteryPct = telemetry.BatteryPct
		vehicle.Lat = telemetry.Lat
		vehicle.Lng = telemetry.Lng
		vehicle.UpdatedAt = telemetry.UpdatedAt
		return vehicle, nil
	}

	// Never-reported vehicle: simulate a stable snapshot from the id.
	h := hashID(vehicleID)
	vehicle.BatteryPct = 20 + int(h%81)                      // 20..100
	vehicle.Lat = 45.40 + float64(h%1000)/10000.0            // small city grid
	vehicle.Lng = -75.70 + float64((h/1000)%1000)/10000.0
	vehicle.UpdatedAt = f.now()
	return vehicle, nil
}

// VehicleCode derives the short user-facing code printed on the vehicle.
func VehicleCode(vehicleID string) string {
	return fmt.Sprintf("EV-%04d", hashID(vehicleID)%10000)
}

func hashID(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}
