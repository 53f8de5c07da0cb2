package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const vehicleLocationKey = "vehicles:locations"
const vehicleTelemetryPrefix = "vehicle:telemetry:"

// VehicleLocation represents a vehicle's position.
type VehicleLocation struct {
	VehicleID  string
	Lat        float64
	Lng        float64
	DistanceKm float64
}

// VehicleTelemetry is the live fleet feed for one vehicle.
type VehicleTelemetry struct {
	BatteryPct int       `json:"battery_pct"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// VehicleStore holds live vehicle telemetry in Redis: positions in a geo
// index for nearby queries, battery/coordinate snapshots as keyed entries.
type VehicleStore struct {
	client *redis.Client
}

// NewVehicleStore creates a new VehicleStore.
func NewVehicleStore(client *redis.Client) *VehicleStore {
	return &VehicleStore{client: client}
}

// UpdateTelemetry stores a vehicle's live telemetry and refreshes the geo
// index using GEOADD.
func (s *VehicleStore) UpdateTelemetry(ctx context.Context, vehicleID string, t VehicleTelemetry) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, vehicleTelemetryPrefix+vehicleID, data, 0).Err(); err != nil {
		return err
	}

	return s.client.GeoAdd(ctx, vehicleLocationKey, &redis.GeoLocation{
		Name:      vehicleID,
		Longitude: t.Lng,
		Latitude:  t.Lat,
	}).Err()
}

// GetTelemetry returns the vehicle's last reported telemetry, or nil when
// the vehicle has never reported.
func (s *VehicleStore) GetTelemetry(ctx context.Context, vehicleID string) (*VehicleTelemetry, error) {
	data, err := s.client.Get(ctx, vehicleTelemetryPrefix+vehicleID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var t VehicleTelemetry
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// FindNearbyVehicles returns vehicle positions within the given radius (in
// kilometers), closest first.
func (s *VehicleStore) FindNearbyVehicles(ctx context.Context, lat, lng, radiusKm float64) ([]VehicleLocation, error) {
	results, err := s.client.GeoRadius(ctx, vehicleLocationKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]VehicleLocation, 0, len(results))
	for _, r := range results {
		locations = append(locations, VehicleLocation{
			VehicleID:  r.Name,
			Lat:        r.Latitude,
			Lng:        r.Longitude,
			DistanceKm: r.Dist,
		})
	}

	return locations, nil
}

// RemoveVehicle removes a vehicle from the geo index and drops its telemetry.
func (s *VehicleStore) RemoveVehicle(ctx context.Context, vehicleID string) error {
	if err := s.client.ZRem(ctx, vehicleLocationKey, vehicleID).Err(); err != nil {
		return err
	}
	return s.client.Del(ctx, vehicleTelemetryPrefix+vehicleID).Err()
}
