package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/fare"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/fleet"
	internalRedis "github.com/Omar1Ach/EcoRide-Backend-sub001/internal/redis"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/repository"
)

const maxRatingCommentLength = 500

// TripService owns the trip lifecycle: conversion from a reservation,
// live fare accrual, settlement-gated completion and post-trip rating.
type TripService struct {
	tripRepo        repository.TripRepository
	reservationRepo repository.ReservationRepository
	settlement      *SettlementService
	receiptBuilder  *ReceiptBuilder
	fleet           fleet.Fleet
	distance        fleet.DistanceSource
	cache           internalRedis.CacheStoreInterface
	notifications   *NotificationService
	calc            fare.Calculator
	lowBattery      int
	now             func() time.Time
}

// NewTripService creates a new TripService.
func NewTripService(
	tripRepo repository.TripRepository,
	reservationRepo repository.ReservationRepository,
	settlement *SettlementService,
	receiptBuilder *ReceiptBuilder,
	fleetData fleet.Fleet,
	distance fleet.DistanceSource,
	cache internalRedis.CacheStoreInterface,
	notifications *NotificationService,
	calc fare.Calculator,
	lowBattery int,
) *TripService {
	return &TripService{
		tripRepo:        tripRepo,
		reservationRepo: reservationRepo,
		settlement:      settlement,
		receiptBuilder:  receiptBuilder,
		fleet:           fleetData,
		distance:        distance,
		cache:           cache,
		notifications:   notifications,
		calc:            calc,
		lowBattery:      lowBattery,
		now:             time.Now,
	}
}

// SetClock overrides the time source. Used by tests.
func (s *TripService) SetClock(now func() time.Time) {
	s.now = now
}

// StartFromReservation converts an active, unexpired reservation into a trip.
// The conversion and the reservation's CONVERTED transition commit together,
// so a reservation can never produce two trips.
func (s *TripService) StartFromReservation(ctx context.Context, reservationID, userID string) (*domain.Trip, error) {
	if reservationID == "" {
		return nil, ErrInvalidReservationID
	}
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	res, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.UserID != userID {
		return nil, ErrUnauthorized
	}

	vehicle, err := s.fleet.GetVehicle(ctx, res.VehicleID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	trip := &domain.Trip{
		ID:            uuid.New().String(),
		ReservationID: reservationID,
		UserID:        userID,
		VehicleID:     res.VehicleID,
		VehicleCode:   vehicle.Code,
		Status:        domain.TripStatusActive,
		StartedAt:     now,
		StartLat:      vehicle.Lat,
		StartLng:      vehicle.Lng,
	}

	if err := s.tripRepo.ConvertReservation(ctx, reservationID, now, trip); err != nil {
		switch {
		case errors.Is(err, repository.ErrReservationExpired):
			return nil, ErrReservationExpired
		case errors.Is(err, repository.ErrReservationNotActive):
			return nil, ErrInvalidState
		case errors.Is(err, repository.ErrVehicleInUse):
			return nil, ErrVehicleUnavailable
		case errors.Is(err, repository.ErrUserHasActiveTrip):
			return nil, ErrInvalidState
		default:
			return nil, err
		}
	}

	if s.cache != nil {
		_ = s.cache.InvalidateReservation(ctx, reservationID)
	}
	if s.notifications != nil {
		_ = s.notifications.NotifyTripStarted(ctx, trip)
	}

	return trip, nil
}

// Get retrieves a trip by ID, serving repeated live-status reads from
// cache. Only ACTIVE trips are cached: their snapshot fields stay immutable
// until completion, which invalidates the key.
func (s *TripService) Get(ctx context.Context, id string) (*domain.Trip, error) {
	if id == "" {
		return nil, ErrInvalidTripID
	}

	if s.cache != nil {
		cached, err := s.cache.GetTrip(ctx, id)
		if err == nil && cached != nil {
			return &domain.Trip{
				ID:            cached.ID,
				ReservationID: cached.ReservationID,
				UserID:        cached.UserID,
				VehicleID:     cached.VehicleID,
				VehicleCode:   cached.VehicleCode,
				Status:        domain.TripStatus(cached.Status),
				StartedAt:     cached.StartedAt,
				StartLat:      cached.StartLat,
				StartLng:      cached.StartLng,
			}, nil
		}
	}

	trip, err := s.tripRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && trip.Status == domain.TripStatusActive {
		_ = s.cache.SetTrip(ctx, &internalRedis.CachedTrip{
			ID:            trip.ID,
			ReservationID: trip.ReservationID,
			UserID:        trip.UserID,
			VehicleID:     trip.VehicleID,
			VehicleCode:   trip.VehicleCode,
			Status:        string(trip.Status),
			StartedAt:     trip.StartedAt,
			StartLat:      trip.StartLat,
			StartLng:      trip.StartLng,
		})
	}

	return trip, nil
}

// GetActiveByUser retrieves the user's current ACTIVE trip.
func (s *TripService) GetActiveByUser(ctx context.Context, userID string) (*domain.Trip, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.tripRepo.GetActiveByUserID(ctx, userID)
}

// GetByUser retrieves the user's trips, newest first.
func (s *TripService) GetByUser(ctx context.Context, userID string) ([]*domain.Trip, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.tripRepo.GetByUserID(ctx, userID)
}

// TripStatus is the live view of a trip: elapsed billable time, the fare
// accrued so far and a battery advisory.
type TripStatus struct {
	Trip           *domain.Trip
	ElapsedMinutes int
	AccruedCost    float64
	BatteryPct     int
	LowBattery     bool
}

// Status computes the trip's current fare. For an active trip the cost
// accrues against the current clock; a completed trip reports its final
// figures.
func (s *TripService) Status(ctx context.Context, id string) (*TripStatus, error) {
	trip, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	end := s.now()
	if trip.Status != domain.TripStatusActive && !trip.EndedAt.IsZero() {
		end = trip.EndedAt
	}

	minutes := fare.BillableMinutes(trip.StartedAt, end)
	status := &TripStatus{
		Trip:           trip,
		ElapsedMinutes: minutes,
		AccruedCost:    s.calc.Cost(minutes),
	}

	if vehicle, err := s.fleet.GetVehicle(ctx, trip.VehicleID); err == nil {
		status.BatteryPct = vehicle.BatteryPct
		status.LowBattery = vehicle.BatteryPct <= s.lowBattery
	}

	return status, nil
}

// EndTripResult couples the completed trip with its receipt.
type EndTripResult struct {
	Trip    *domain.Trip
	Receipt *domain.Receipt
}

// EndTrip settles the fare and completes the trip. Settlement happens first:
// if payment fails the trip stays ACTIVE and the fare keeps accruing, so the
// user can retry once the failure clears. Settlement is idempotent per trip,
// which makes the retry safe even when a previous attempt settled but
// crashed before completing.
func (s *TripService) EndTrip(ctx context.Context, id, userID string) (*EndTripResult, error) {
	if id == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.UserID != userID {
		return nil, ErrUnauthorized
	}
	if trip.Status != domain.TripStatusActive {
		return nil, ErrInvalidState
	}

	end := s.now()
	minutes := fare.BillableMinutes(trip.StartedAt, end)
	baseCost := s.calc.BaseFee
	timeCost := round2(s.calc.PerMinuteRate * float64(minutes))
	totalCost := s.calc.Cost(minutes)

	trip.EndedAt = end
	if vehicle, err := s.fleet.GetVehicle(ctx, trip.VehicleID); err == nil {
		trip.EndLat = vehicle.Lat
		trip.EndLng = vehicle.Lng
	}
	if s.distance != nil {
		trip.DistanceKm = s.distance.TripDistanceKm(trip.VehicleID, trip.StartedAt, end)
	}

	settled, err := s.settlement.SettleTripCharge(ctx, userID, trip.ID, totalCost)
	if err != nil {
		if errors.Is(err, ErrPaymentFailed) && s.notifications != nil {
			_ = s.notifications.NotifyPaymentFailed(ctx, userID, trip.ID, totalCost)
		}
		return nil, err
	}

	if settled.Replayed {
		// A prior attempt already collected the fare but crashed before
		// completing the trip. The recorded settlement is what the user
		// paid, so the receipt is rebuilt from it rather than from the
		// fare recomputed at retry time.
		totalCost = round2(settled.WalletShare + settled.CardShare)
		timeCost = round2(totalCost - baseCost)
		minutes = fare.BillableMinutes(trip.StartedAt, settled.Entry.CreatedAt)
		if s.calc.PerMinuteRate > 0 {
			minutes = int(math.Round(timeCost / s.calc.PerMinuteRate))
		}
		end = settled.Entry.CreatedAt
		trip.EndedAt = end
		if s.distance != nil {
			trip.DistanceKm = s.distance.TripDistanceKm(trip.VehicleID, trip.StartedAt, end)
		}
	}

	receipt := s.receiptBuilder.Build(trip, minutes, baseCost, timeCost, totalCost, settled)

	trip.Status = domain.TripStatusCompleted
	if err := s.tripRepo.Complete(ctx, trip, receipt); err != nil {
		if errors.Is(err, repository.ErrTripNotActive) {
			return nil, ErrInvalidState
		}
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateTrip(ctx, trip.ID)
	}
	if s.notifications != nil {
		_ = s.notifications.NotifyTripEnded(ctx, trip, totalCost)
		_ = s.notifications.NotifyReceiptReady(ctx, receipt)
	}

	return &EndTripResult{Trip: trip, Receipt: receipt}, nil
}

// AddRating records a one-time star rating on a completed trip.
func (s *TripService) AddRating(ctx context.Context, id, userID string, stars int, comment string) (*domain.Trip, error) {
	if id == "" {
		return nil, ErrInvalidTripID
	}
	if stars < 1 || stars > 5 {
		return nil, ErrInvalidRating
	}
	if len(comment) > maxRatingCommentLength {
		return nil, ErrCommentTooLong
	}

	trip, err := s.tripRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.UserID != userID {
		return nil, ErrUnauthorized
	}
	if trip.Status != domain.TripStatusCompleted {
		return nil, ErrInvalidState
	}
	if trip.IsRated() {
		return nil, ErrInvalidState
	}

	if err := s.tripRepo.SetRating(ctx, id, stars, comment); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyRated):
			return nil, ErrInvalidState
		case errors.Is(err, repository.ErrTripNotActive):
			return nil, ErrInvalidState
		default:
			return nil, err
		}
	}

	trip.RatingStars = stars
	trip.RatingComment = comment
	return trip, nil
}
