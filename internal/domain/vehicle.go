package domain

import "time"

// VehicleStatus represents the fleet-reported status of a vehicle.
type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "AVAILABLE"
	VehicleStatusInUse       VehicleStatus = "IN_USE"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"
)

// Vehicle is a point-in-time snapshot of fleet data for a vehicle.
// The fleet is an external collaborator; the engine only reads this.
type Vehicle struct {
	ID         string
	Code       string
	Status     VehicleStatus
	BatteryPct int
	Lat        float64
	Lng        float64
	UpdatedAt  time.Time
}
