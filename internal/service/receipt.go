package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/repository"
)

// ReceiptBuilder assembles the immutable receipt that is persisted together
// with the trip's completion.
type ReceiptBuilder struct {
	now func() time.Time
}

// NewReceiptBuilder creates a new ReceiptBuilder.
func NewReceiptBuilder() *ReceiptBuilder {
	return &ReceiptBuilder{now: time.Now}
}

// SetClock overrides the time source. Used by tests.
func (b *ReceiptBuilder) SetClock(now func() time.Time) {
	b.now = now
}

// Build assembles a receipt from the finished trip and its settlement.
func (b *ReceiptBuilder) Build(trip *domain.Trip, minutes int, baseCost, timeCost, totalCost float64, settlement *SettlementResult) *domain.Receipt {
	now := b.now()
	return &domain.Receipt{
		ID:              uuid.New().String(),
		Number:          receiptNumber(now),
		TripID:          trip.ID,
		UserID:          trip.UserID,
		VehicleCode:     trip.VehicleCode,
		StartedAt:       trip.StartedAt,
		EndedAt:         trip.EndedAt,
		DurationMinutes: minutes,
		DistanceKm:      trip.DistanceKm,
		StartLat:        trip.StartLat,
		StartLng:        trip.StartLng,
		EndLat:          trip.EndLat,
		EndLng:          trip.EndLng,
		BaseCost:        baseCost,
		TimeCost:        timeCost,
		TotalCost:       totalCost,
		PaymentMethod:   settlement.Method,
		PaymentDetails:  settlement.Details,
		BalanceBefore:   settlement.Entry.BalanceBefore,
		BalanceAfter:    settlement.Entry.BalanceAfter,
		CreatedAt:       now,
	}
}

func receiptNumber(now time.Time) string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("RCP-%s-%s", now.Format("20060102"), fragment)
}

// ReceiptService exposes read access to persisted receipts.
type ReceiptService struct {
	receipts repository.ReceiptRepository
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(receipts repository.ReceiptRepository) *ReceiptService {
	return &ReceiptService{receipts: receipts}
}

// Get retrieves a receipt by ID.
func (s *ReceiptService) Get(ctx context.Context, id string) (*domain.Receipt, error) {
	return s.receipts.GetByID(ctx, id)
}

// GetByTrip retrieves the receipt for a completed trip.
func (s *ReceiptService) GetByTrip(ctx context.Context, tripID string) (*domain.Receipt, error) {
	return s.receipts.GetByTripID(ctx, tripID)
}

// GetByUser retrieves the user's receipts, newest first.
func (s *ReceiptService) GetByUser(ctx context.Context, userID string) ([]*domain.Receipt, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.receipts.GetByUserID(ctx, userID)
}
