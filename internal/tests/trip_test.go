package tests

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/config"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/fare"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/service"
)

// ──────────────────────────────────────────────
// 2. TRIP LIFECYCLE
// ──────────────────────────────────────────────

type tripFixture struct {
	trips        *MockTripRepository
	reservations *MockReservationRepository
	wallets      *MockWalletRepository
	gateway      *service.MockGateway
	fleet        *MockFleet
	cache        *MockCacheStore
	settlement   *service.SettlementService
	builder      *service.ReceiptBuilder
	svc          *service.TripService
	base         time.Time
}

func newTripFixture(t *testing.T) *tripFixture {
	t.Helper()

	f := &tripFixture{
		reservations: NewMockReservationRepository(),
		wallets:      NewMockWalletRepository(),
		gateway:      service.NewMockGateway(),
		fleet:        NewMockFleet(),
		cache:        NewMockCacheStore(),
		base:         time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	f.trips = NewMockTripRepository(f.reservations)

	log := logrus.New()
	log.SetOutput(&strings.Builder{})

	cfg := config.SettlementConfig{
		MaxAttempts:    3,
		BaseDelay:      time.Millisecond,
		MaxDelay:       4 * time.Millisecond,
		AttemptTimeout: time.Second,
	}
	f.settlement = service.NewSettlementService(f.wallets, f.gateway, cfg, log)
	f.settlement.SetSleep(func(time.Duration) {})
	f.settlement.SetClock(func() time.Time { return f.base })

	f.builder = service.NewReceiptBuilder()

	f.svc = service.NewTripService(
		f.trips,
		f.reservations,
		f.settlement,
		f.builder,
		f.fleet,
		FixedDistance{Km: 4.2},
		f.cache,
		nil,
		fare.NewCalculator(5.0, 1.5),
		10,
	)
	f.svc.SetClock(func() time.Time { return f.base })

	f.fleet.AddVehicle(&domain.Vehicle{
		ID: "veh-1", Code: "EV-0001",
		Status: domain.VehicleStatusAvailable, BatteryPct: 75,
		Lat: 45.41, Lng: -75.69,
	})
	f.wallets.SetBalance("user-1", 100)

	f.reservations.AddReservation(&domain.Reservation{
		ID: "res-1", UserID: "user-1", VehicleID: "veh-1",
		Status:    domain.ReservationStatusActive,
		CreatedAt: f.base,
		ExpiresAt: f.base.Add(5 * time.Minute),
	})

	return f
}

func (f *tripFixture) advance(d time.Duration) {
	at := f.base.Add(d)
	f.svc.SetClock(func() time.Time { return at })
	f.settlement.SetClock(func() time.Time { return at })
}

func TestTripStart_JustBeforeExpiry_Succeeds(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)
	f.advance(4*time.Minute + 59*time.Second)

	trip, err := f.svc.StartFromReservation(context.Background(), "res-1", "user-1")
	if err != nil {
		t.Fatalf("expected conversion to succeed, got: %v", err)
	}

	if trip.Status != domain.TripStatusActive {
		t.Errorf("expected ACTIVE trip, got %s", trip.Status)
	}
	if trip.VehicleCode != "EV-0001" {
		t.Errorf("expected vehicle code EV-0001, got %s", trip.VehicleCode)
	}
	if f.reservations.GetReservation("res-1").Status != domain.ReservationStatusConverted {
		t.Error("expected reservation to be CONVERTED")
	}
}

func TestTripStart_JustAfterExpiry_Fails(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)
	f.advance(5*time.Minute + time.Second)

	_, err := f.svc.StartFromReservation(context.Background(), "res-1", "user-1")
	if !errors.Is(err, service.ErrReservationExpired) {
		t.Errorf("expected ErrReservationExpired, got: %v", err)
	}
	if f.reservations.GetReservation("res-1").Status != domain.ReservationStatusExpired {
		t.Error("expected the expired reservation to be persisted as EXPIRED")
	}
}

func TestTripStart_ByNonOwner_Fails(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)

	if _, err := f.svc.StartFromReservation(context.Background(), "res-1", "user-2"); !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got: %v", err)
	}
}

func TestTripStart_CancelledReservation_Fails(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)
	f.reservations.GetReservation("res-1").Status = domain.ReservationStatusCancelled

	if _, err := f.svc.StartFromReservation(context.Background(), "res-1", "user-1"); !errors.Is(err, service.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got: %v", err)
	}
}

func TestTripStart_SameReservationTwice_Fails(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)

	if _, err := f.svc.StartFromReservation(context.Background(), "res-1", "user-1"); err != nil {
		t.Fatalf("first conversion failed: %v", err)
	}
	if _, err := f.svc.StartFromReservation(context.Background(), "res-1", "user-1"); !errors.Is(err, service.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState on a second conversion, got: %v", err)
	}
}

func TestTripStatus_AccruesPerStartedMinute(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)
	trip, err := f.svc.StartFromReservation(context.Background(), "res-1", "user-1")
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	// 19m30s elapsed bills 20 minutes: 5.00 + 20*1.50 = 35.00.
	f.advance(19*time.Minute + 30*time.Second)

	status, err := f.svc.Status(context.Background(), trip.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.ElapsedMinutes != 20 {
		t.Errorf("expected 20 billable minutes, got %d", status.ElapsedMinutes)
	}
	if status.AccruedCost != 35.0 {
		t.Errorf("expected accrued cost 35.00, got %.2f", status.AccruedCost)
	}
	if status.LowBattery {
		t.Error("expected no low-battery advisory at 75%")
	}
}

func TestTripStatus_LowBatteryAdvisory(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)
	f.fleet.AddVehicle(&domain.Vehicle{
		ID: "veh-1", Code: "EV-0001",
		Status: domain.VehicleStatusAvailable, BatteryPct: 8,
	})

	trip, err := f.svc.StartFromReservation(context.Background(), "res-1", "user-1")
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	status, err := f.svc.Status(context.Background(), trip.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !status.LowBattery {
		t.Error("expected low-battery advisory at 8%")
	}
}

func TestTripGet_ServesRepeatedReadsFromCache(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)

	trip, err := f.svc.StartFromReservation(context.Background(), "res-1", "user-1")
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	first, err := f.svc.Get(context.Background(), trip.ID)
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	if f.cache.TripSnapshot(trip.ID) == nil {
		t.Fatal("expected the first read to populate the cache")
	}

	second, err := f.svc.Get(context.Background(), trip.ID)
	if err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if second.VehicleCode != first.VehicleCode || !second.StartedAt.Equal(first.StartedAt) {
		t.Error("expected the cached snapshot to match the stored trip")
	}
	if reads := atomic.LoadInt32(&f.trips.GetByIDCallCount); reads != 1 {
		t.Errorf("expected a single repository read, got %d", reads)
	}

	// Completion drops the snapshot so later reads see the final state.
	f.advance(10 * time.Minute)
	if _, err := f.svc.EndTrip(context.Background(), trip.ID, "user-1"); err != nil {
		t.Fatalf("end failed: %v", err)
	}
	if f.cache.TripSnapshot(trip.ID) != nil {
		t.Error("expected completion to invalidate the cached snapshot")
	}
}

func TestTripEnd_HappyPath_CompletesWithReceipt(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)
	trip, err := f.svc.StartFromReservation(context.Background(), "res-1", "user-1")
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	f.advance(20 * time.Minute)

	result, err := f.svc.EndTrip(context.Background(), trip.ID, "user-1")
	if err != nil {
		t.Fatalf("end trip failed: %v", err)
	}

	if result.Trip.Status != domain.TripStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", result.Trip.Status)
	}
	if result.Receipt.TotalCost != 35.0 {
		t.Errorf("expected total 35.00, got %.2f", result.Receipt.TotalCost)
	}
	if result.Receipt.BaseCost != 5.0 || result.Receipt.TimeCost != 30.0 {
		t.Errorf("expected base 5.00 + time 30.00, got %.2f + %.2f", result.Receipt.BaseCost, result.Receipt.TimeCost)
	}
	if result.Receipt.DurationMinutes != 20 {
		t.Errorf("expected 20 minutes on the receipt, got %d", result.Receipt.DurationMinutes)
	}
	if result.Receipt.DistanceKm != 4.2 {
		t.Errorf("expected 4.2 km, got %.2f", result.Receipt.DistanceKm)
	}
	if result.Receipt.PaymentMethod != domain.PaymentMethodWallet {
		t.Errorf("expected WALLET payment, got %s", result.Receipt.PaymentMethod)
	}
	if !strings.HasPrefix(result.Receipt.Number, "RCP-") {
		t.Errorf("expected receipt number, got %q", result.Receipt.Number)
	}

	// Wallet drained by the full fare, single ledger entry.
	balance, _ := f.wallets.GetBalance(context.Background(), "user-1")
	if balance != 65.0 {
		t.Errorf("expected balance 65.00 after charge, got %.2f", balance)
	}
	entries := f.wallets.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 ledger entry, got %d", len(entries))
	}
	if entries[0].Amount != -35.0 {
		t.Errorf("expected ledger amount -35.00, got %.2f", entries[0].Amount)
	}
	if entries[0].BalanceBefore != 100.0 || entries[0].BalanceAfter != 65.0 {
		t.Errorf("expected balance 100 -> 65, got %.2f -> %.2f", entries[0].BalanceBefore, entries[0].BalanceAfter)
	}

	// Receipt persisted with the completion.
	if f.trips.GetReceiptForTrip(trip.ID) == nil {
		t.Error("expected receipt to be stored with trip completion")
	}
}

func TestTripEnd_ByNonOwner_Fails(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)
	trip, err := f.svc.StartFromReservation(context.Background(), "res-1", "user-1")
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	if _, err := f.svc.EndTrip(context.Background(), trip.ID, "user-2"); !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got: %v", err)
	}
}

func TestTripEnd_AlreadyCompleted_Fails(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)
	trip, err := f.svc.StartFromReservation(context.Background(), "res-1", "user-1")
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	f.advance(10 * time.Minute)
	if _, err := f.svc.EndTrip(context.Background(), trip.ID, "user-1"); err != nil {
		t.Fatalf("end trip failed: %v", err)
	}

	if _, err := f.svc.EndTrip(context.Background(), trip.ID, "user-1"); !errors.Is(err, service.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState on double end, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 3. RATING
// ──────────────────────────────────────────────

func endTrip(t *testing.T, f *tripFixture) *domain.Trip {
	t.Helper()
	trip, err := f.svc.StartFromReservation(context.Background(), "res-1", "user-1")
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	f.advance(10 * time.Minute)
	result, err := f.svc.EndTrip(context.Background(), trip.ID, "user-1")
	if err != nil {
		t.Fatalf("end trip failed: %v", err)
	}
	return result.Trip
}

func TestRating_OnCompletedTrip_Succeeds(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)
	trip := endTrip(t, f)

	rated, err := f.svc.AddRating(context.Background(), trip.ID, "user-1", 4, "smooth ride")
	if err != nil {
		t.Fatalf("rating failed: %v", err)
	}
	if rated.RatingStars != 4 || rated.RatingComment != "smooth ride" {
		t.Errorf("expected 4 stars with comment, got %d %q", rated.RatingStars, rated.RatingComment)
	}
}

func TestRating_SecondRating_Fails(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)
	trip := endTrip(t, f)

	if _, err := f.svc.AddRating(context.Background(), trip.ID, "user-1", 5, ""); err != nil {
		t.Fatalf("first rating failed: %v", err)
	}
	if _, err := f.svc.AddRating(context.Background(), trip.ID, "user-1", 1, ""); !errors.Is(err, service.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState on second rating, got: %v", err)
	}

	// The first rating is untouched.
	stored := f.trips.GetTrip(trip.ID)
	if stored.RatingStars != 5 {
		t.Errorf("expected original rating preserved, got %d", stored.RatingStars)
	}
}

func TestRating_ActiveTrip_Fails(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)
	trip, err := f.svc.StartFromReservation(context.Background(), "res-1", "user-1")
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	if _, err := f.svc.AddRating(context.Background(), trip.ID, "user-1", 3, ""); !errors.Is(err, service.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got: %v", err)
	}
}

func TestRating_Validation(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)
	trip := endTrip(t, f)

	testCases := []struct {
		name    string
		stars   int
		comment string
		wantErr error
	}{
		{name: "zero stars", stars: 0, wantErr: service.ErrInvalidRating},
		{name: "six stars", stars: 6, wantErr: service.ErrInvalidRating},
		{name: "comment too long", stars: 3, comment: strings.Repeat("x", 501), wantErr: service.ErrCommentTooLong},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.AddRating(context.Background(), trip.ID, "user-1", tc.stars, tc.comment); !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got: %v", tc.wantErr, err)
			}
		})
	}
}
