package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// HoldStore serializes racing reservation attempts with short-lived SETNX
// holds. It is a best-effort fast path: the database's partial unique
// indexes remain the exclusivity guarantee, so a Redis outage degrades
// throughput, not correctness.
type HoldStore struct {
	client *redis.Client
}

// NewHoldStore creates a new HoldStore.
func NewHoldStore(client *redis.Client) *HoldStore {
	return &HoldStore{client: client}
}

// AcquireVehicleHold attempts to acquire a hold for the given vehicle.
// Returns true if the hold was acquired, false if already held.
func (s *HoldStore) AcquireVehicleHold(ctx context.Context, vehicleID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("hold:vehicle:%s", vehicleID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseVehicleHold releases the hold for the given vehicle.
func (s *HoldStore) ReleaseVehicleHold(ctx context.Context, vehicleID string) error {
	key := fmt.Sprintf("hold:vehicle:%s", vehicleID)

	return s.client.Del(ctx, key).Err()
}
