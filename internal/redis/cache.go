package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	// ReservationCacheTTL is short: countdown reads recompute remaining
	// seconds from the cached immutable expiry timestamp, so staleness
	// only matters across status transitions.
	ReservationCacheTTL = 10 * time.Second
	TripCacheTTL        = 30 * time.Second
)

// Key prefixes
const (
	reservationCachePrefix = "cache:reservation:"
	tripCachePrefix        = "cache:trip:"
)

// CachedReservation represents a cached reservation snapshot.
type CachedReservation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	VehicleID string    `json:"vehicle_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CachedTrip represents a cached snapshot of an in-progress trip. Only
// ACTIVE trips are cached; every field below is immutable until completion,
// which drops the key.
type CachedTrip struct {
	ID            string    `json:"id"`
	ReservationID string    `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	VehicleID     string    `json:"vehicle_id"`
	VehicleCode   string    `json:"vehicle_code"`
	Status        string    `json:"status"`
	StartedAt     time.Time `json:"started_at"`
	StartLat      float64   `json:"start_lat"`
	StartLng      float64   `json:"start_lng"`
}

// GetReservation retrieves a reservation snapshot from cache.
func (s *CacheStore) GetReservation(ctx context.Context, id string) (*CachedReservation, error) {
	data, err := s.client.Get(ctx, reservationCachePrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var res CachedReservation
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SetReservation stores a reservation snapshot in cache.
func (s *CacheStore) SetReservation(ctx context.Context, res *CachedReservation) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, reservationCachePrefix+res.ID, data, ReservationCacheTTL).Err()
}

// InvalidateReservation removes a reservation snapshot from cache.
func (s *CacheStore) InvalidateReservation(ctx context.Context, id string) error {
	return s.client.Del(ctx, reservationCachePrefix+id).Err()
}

// GetTrip retrieves a trip snapshot from cache.
func (s *CacheStore) GetTrip(ctx context.Context, id string) (*CachedTrip, error) {
	data, err := s.client.Get(ctx, tripCachePrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var trip CachedTrip
	if err := json.Unmarshal(data, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// SetTrip stores a trip snapshot in cache.
func (s *CacheStore) SetTrip(ctx context.Context, trip *CachedTrip) error {
	data, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, tripCachePrefix+trip.ID, data, TripCacheTTL).Err()
}

// InvalidateTrip removes a trip snapshot from cache.
func (s *CacheStore) InvalidateTrip(ctx context.Context, id string) error {
	return s.client.Del(ctx, tripCachePrefix+id).Err()
}
