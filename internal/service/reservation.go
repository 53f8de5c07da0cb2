package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/config"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/fleet"
	internalRedis "github.com/Omar1Ach/EcoRide-Backend-sub001/internal/redis"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/repository"
)

// ReservationService owns the reservation lifecycle: Active → {Cancelled,
// Expired, Converted}. Conversion itself lives on TripService since it
// creates the trip.
type ReservationService struct {
	reservationRepo repository.ReservationRepository
	holds           internalRedis.HoldStoreInterface
	cache           internalRedis.CacheStoreInterface
	fleet           fleet.Fleet
	identity        Identity
	notifications   *NotificationService
	ttl             time.Duration
	holdTTL         time.Duration
	now             func() time.Time
}

// NewReservationService creates a new ReservationService.
func NewReservationService(
	reservationRepo repository.ReservationRepository,
	holds internalRedis.HoldStoreInterface,
	cache internalRedis.CacheStoreInterface,
	fleetData fleet.Fleet,
	identity Identity,
	notifications *NotificationService,
	cfg config.ReservationConfig,
) *ReservationService {
	return &ReservationService{
		reservationRepo: reservationRepo,
		holds:           holds,
		cache:           cache,
		fleet:           fleetData,
		identity:        identity,
		notifications:   notifications,
		ttl:             cfg.TTL,
		holdTTL:         cfg.HoldLockTTL,
		now:             time.Now,
	}
}

// SetClock overrides the time source. Used by tests.
func (s *ReservationService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateReservationRequest contains the parameters for creating a reservation.
type CreateReservationRequest struct {
	UserID    string
	VehicleID string
}

// Create places an exclusive hold on the vehicle. The database enforces the
// one-active-per-user and one-active-per-vehicle invariants; the Redis hold
// only short-circuits obviously racing requests before they hit Postgres.
func (s *ReservationService) Create(ctx context.Context, req CreateReservationRequest) (*domain.Reservation, error) {
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if req.VehicleID == "" {
		return nil, ErrInvalidVehicleID
	}

	if err := s.identity.Verify(ctx, req.UserID); err != nil {
		return nil, err
	}

	vehicle, err := s.fleet.GetVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status != domain.VehicleStatusAvailable {
		return nil, ErrVehicleUnavailable
	}

	if s.holds != nil {
		acquired, err := s.holds.AcquireVehicleHold(ctx, req.VehicleID, s.holdTTL)
		if err == nil {
			if !acquired {
				return nil, ErrVehicleUnavailable
			}
			defer func() { _ = s.holds.ReleaseVehicleHold(ctx, req.VehicleID) }()
		}
		// A Redis error is ignored: the database still serializes creates.
	}

	now := s.now()
	res := &domain.Reservation{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		VehicleID: req.VehicleID,
		Status:    domain.ReservationStatusActive,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.reservationRepo.CreateActive(ctx, res, now); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserHasActiveReservation):
			return nil, ErrAlreadyReserved
		case errors.Is(err, repository.ErrVehicleReserved):
			return nil, ErrVehicleUnavailable
		default:
			return nil, err
		}
	}

	if s.notifications != nil {
		_ = s.notifications.NotifyReservationCreated(ctx, res)
	}

	return res, nil
}

// Get retrieves a reservation, serving repeated countdown reads from cache.
// Remaining time is always recomputed from the immutable expiry timestamp,
// and a stored ACTIVE row past its expiry reads as EXPIRED.
func (s *ReservationService) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	if id == "" {
		return nil, ErrInvalidReservationID
	}

	if s.cache != nil {
		cached, err := s.cache.GetReservation(ctx, id)
		if err == nil && cached != nil {
			return s.expireIfStale(ctx, &domain.Reservation{
				ID:        cached.ID,
				UserID:    cached.UserID,
				VehicleID: cached.VehicleID,
				Status:    domain.ReservationStatus(cached.Status),
				CreatedAt: cached.CreatedAt,
				ExpiresAt: cached.ExpiresAt,
			}), nil
		}
	}

	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res = s.expireIfStale(ctx, res)

	if s.cache != nil {
		_ = s.cache.SetReservation(ctx, &internalRedis.CachedReservation{
			ID:        res.ID,
			UserID:    res.UserID,
			VehicleID: res.VehicleID,
			Status:    string(res.Status),
			CreatedAt: res.CreatedAt,
			ExpiresAt: res.ExpiresAt,
		})
	}

	return res, nil
}

// expireIfStale presents the derived status for an ACTIVE row whose hold
// window has elapsed, persisting the transition opportunistically so reads
// never report ACTIVE with a zero countdown.
func (s *ReservationService) expireIfStale(ctx context.Context, res *domain.Reservation) *domain.Reservation {
	if res.Status == domain.ReservationStatusActive && !res.IsActiveAt(s.now()) {
		_ = s.reservationRepo.UpdateStatus(ctx, res.ID, domain.ReservationStatusActive, domain.ReservationStatusExpired)
		s.invalidate(ctx, res.ID)
		res.Status = domain.ReservationStatusExpired
	}
	return res
}

// GetActiveByUser retrieves the user's current ACTIVE, unexpired
// reservation.
func (s *ReservationService) GetActiveByUser(ctx context.Context, userID string) (*domain.Reservation, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.reservationRepo.GetActiveByUserID(ctx, userID, s.now())
}

// GetByUser retrieves the user's reservations, newest first.
func (s *ReservationService) GetByUser(ctx context.Context, userID string) ([]*domain.Reservation, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.reservationRepo.GetByUserID(ctx, userID)
}

// RemainingSeconds returns the countdown for a reservation.
func (s *ReservationService) RemainingSeconds(res *domain.Reservation) int64 {
	return res.RemainingSeconds(s.now())
}

// Cancel releases an active reservation. Cancelling never charges the user,
// regardless of how much of the hold window has elapsed.
func (s *ReservationService) Cancel(ctx context.Context, id, userID string) (*domain.Reservation, error) {
	if id == "" {
		return nil, ErrInvalidReservationID
	}

	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if res.UserID != userID {
		return nil, ErrUnauthorized
	}

	now := s.now()
	if res.Status != domain.ReservationStatusActive {
		return nil, ErrInvalidState
	}
	if !res.IsActiveAt(now) {
		// Past expiry the hold is already gone; persist the transition and
		// report the cancel as a wrong-state attempt.
		_ = s.reservationRepo.UpdateStatus(ctx, id, domain.ReservationStatusActive, domain.ReservationStatusExpired)
		s.invalidate(ctx, id)
		return nil, ErrInvalidState
	}

	if err := s.reservationRepo.UpdateStatus(ctx, id, domain.ReservationStatusActive, domain.ReservationStatusCancelled); err != nil {
		if errors.Is(err, repository.ErrReservationNotActive) {
			return nil, ErrInvalidState
		}
		return nil, err
	}

	res.Status = domain.ReservationStatusCancelled
	s.invalidate(ctx, id)

	if s.notifications != nil {
		_ = s.notifications.NotifyReservationCancelled(ctx, res)
	}

	return res, nil
}

func (s *ReservationService) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		_ = s.cache.InvalidateReservation(ctx, id)
	}
}
