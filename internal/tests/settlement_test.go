package tests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/config"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/service"
)

// ──────────────────────────────────────────────
// 4. SETTLEMENT
// ──────────────────────────────────────────────

func newSettlementFixture(t *testing.T) (*service.SettlementService, *MockWalletRepository, *service.MockGateway) {
	t.Helper()

	wallets := NewMockWalletRepository()
	gateway := service.NewMockGateway()

	log := logrus.New()
	log.SetOutput(&strings.Builder{})

	cfg := config.SettlementConfig{
		MaxAttempts:    3,
		BaseDelay:      time.Millisecond,
		MaxDelay:       4 * time.Millisecond,
		AttemptTimeout: time.Second,
	}

	svc := service.NewSettlementService(wallets, gateway, cfg, log)
	svc.SetSleep(func(time.Duration) {})
	return svc, wallets, gateway
}

func TestSettlement_WalletCoversFull_NoGatewayCall(t *testing.T) {
	t.Parallel()

	svc, wallets, gateway := newSettlementFixture(t)
	wallets.SetBalance("user-1", 50)

	result, err := svc.SettleTripCharge(context.Background(), "user-1", "trip-1", 35)
	if err != nil {
		t.Fatalf("settlement failed: %v", err)
	}

	if result.Method != domain.PaymentMethodWallet {
		t.Errorf("expected WALLET, got %s", result.Method)
	}
	if result.WalletShare != 35 || result.CardShare != 0 {
		t.Errorf("expected 35/0 split, got %.2f/%.2f", result.WalletShare, result.CardShare)
	}
	if gateway.Calls() != 0 {
		t.Errorf("expected no card charge, got %d calls", gateway.Calls())
	}
}

// Wallet balance 20, fare 35: the wallet is drained to zero and the card is
// charged exactly the 15 shortfall.
func TestSettlement_WalletShortfall_CardChargedForRemainder(t *testing.T) {
	t.Parallel()

	svc, wallets, gateway := newSettlementFixture(t)
	wallets.SetBalance("user-1", 20)

	result, err := svc.SettleTripCharge(context.Background(), "user-1", "trip-1", 35)
	if err != nil {
		t.Fatalf("settlement failed: %v", err)
	}

	if result.Method != domain.PaymentMethodWalletCard {
		t.Errorf("expected WALLET_CARD, got %s", result.Method)
	}
	if result.WalletShare != 20 || result.CardShare != 15 {
		t.Errorf("expected 20/15 split, got %.2f/%.2f", result.WalletShare, result.CardShare)
	}
	if gateway.Calls() != 1 {
		t.Errorf("expected 1 card charge, got %d", gateway.Calls())
	}

	balance, _ := wallets.GetBalance(context.Background(), "user-1")
	if balance != 0 {
		t.Errorf("expected wallet drained to 0, got %.2f", balance)
	}

	entries := wallets.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 ledger entry, got %d", len(entries))
	}
	if entries[0].Amount != -20 {
		t.Errorf("expected wallet debit of 20, got %.2f", entries[0].Amount)
	}
	if entries[0].BalanceBefore != 20 || entries[0].BalanceAfter != 0 {
		t.Errorf("expected balance 20 -> 0, got %.2f -> %.2f", entries[0].BalanceBefore, entries[0].BalanceAfter)
	}
}

func TestSettlement_EmptyWallet_CardOnly(t *testing.T) {
	t.Parallel()

	svc, wallets, gateway := newSettlementFixture(t)
	wallets.SetBalance("user-1", 0)

	result, err := svc.SettleTripCharge(context.Background(), "user-1", "trip-1", 35)
	if err != nil {
		t.Fatalf("settlement failed: %v", err)
	}

	if result.Method != domain.PaymentMethodCard {
		t.Errorf("expected CARD, got %s", result.Method)
	}
	if result.WalletShare != 0 || result.CardShare != 35 {
		t.Errorf("expected 0/35 split, got %.2f/%.2f", result.WalletShare, result.CardShare)
	}
	if gateway.Calls() != 1 {
		t.Errorf("expected 1 card charge, got %d", gateway.Calls())
	}

	// Even a zero-amount wallet movement is recorded: one entry per trip.
	entries := wallets.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 ledger entry, got %d", len(entries))
	}
	if entries[0].Amount != 0 {
		t.Errorf("expected zero wallet movement, got %.2f", entries[0].Amount)
	}
}

// Two transient gateway failures then a success: three calls, one charge.
func TestSettlement_TransientFailures_RetriedToSuccess(t *testing.T) {
	t.Parallel()

	svc, wallets, gateway := newSettlementFixture(t)
	wallets.SetBalance("user-1", 0)
	gateway.Script(service.ChargeOutcomeTransient, service.ChargeOutcomeTransient, service.ChargeOutcomeSuccess)

	result, err := svc.SettleTripCharge(context.Background(), "user-1", "trip-1", 35)
	if err != nil {
		t.Fatalf("settlement failed: %v", err)
	}

	if gateway.Calls() != 3 {
		t.Errorf("expected 3 gateway calls, got %d", gateway.Calls())
	}
	if result.GatewayCalls != 3 {
		t.Errorf("expected result to report 3 calls, got %d", result.GatewayCalls)
	}
	if len(wallets.Entries()) != 1 {
		t.Errorf("expected a single ledger entry, got %d", len(wallets.Entries()))
	}
}

func TestSettlement_AllAttemptsTransient_Fails(t *testing.T) {
	t.Parallel()

	svc, wallets, gateway := newSettlementFixture(t)
	wallets.SetBalance("user-1", 0)
	gateway.Script(service.ChargeOutcomeTransient, service.ChargeOutcomeTransient, service.ChargeOutcomeTransient)

	_, err := svc.SettleTripCharge(context.Background(), "user-1", "trip-1", 35)
	if !errors.Is(err, service.ErrPaymentFailed) {
		t.Fatalf("expected ErrPaymentFailed, got: %v", err)
	}

	if gateway.Calls() != 3 {
		t.Errorf("expected 3 attempts, got %d", gateway.Calls())
	}
	// No money moved, no ledger entry.
	if len(wallets.Entries()) != 0 {
		t.Errorf("expected no ledger entries, got %d", len(wallets.Entries()))
	}
}

// A decline is final: no retries, nothing recorded.
func TestSettlement_Declined_NoRetry(t *testing.T) {
	t.Parallel()

	svc, wallets, gateway := newSettlementFixture(t)
	wallets.SetBalance("user-1", 20)
	gateway.Script(service.ChargeOutcomeDeclined)

	_, err := svc.SettleTripCharge(context.Background(), "user-1", "trip-1", 35)
	if !errors.Is(err, service.ErrPaymentFailed) {
		t.Fatalf("expected ErrPaymentFailed, got: %v", err)
	}

	if gateway.Calls() != 1 {
		t.Errorf("expected no retries after a decline, got %d calls", gateway.Calls())
	}
	// The wallet share must not have been taken either.
	balance, _ := wallets.GetBalance(context.Background(), "user-1")
	if balance != 20 {
		t.Errorf("expected untouched balance 20, got %.2f", balance)
	}
	if len(wallets.Entries()) != 0 {
		t.Errorf("expected no ledger entries, got %d", len(wallets.Entries()))
	}
}

// A repeated settle call for the same trip replays the recorded entry
// instead of charging twice.
func TestSettlement_Replay_IsIdempotent(t *testing.T) {
	t.Parallel()

	svc, wallets, gateway := newSettlementFixture(t)
	wallets.SetBalance("user-1", 20)

	first, err := svc.SettleTripCharge(context.Background(), "user-1", "trip-1", 35)
	if err != nil {
		t.Fatalf("first settlement failed: %v", err)
	}

	second, err := svc.SettleTripCharge(context.Background(), "user-1", "trip-1", 35)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if gateway.Calls() != 1 {
		t.Errorf("expected replay to skip the gateway, got %d calls", gateway.Calls())
	}
	if len(wallets.Entries()) != 1 {
		t.Errorf("expected a single ledger entry after replay, got %d", len(wallets.Entries()))
	}
	if second.Entry.ID != first.Entry.ID {
		t.Error("expected the replay to return the recorded entry")
	}
	if second.WalletShare != 20 || second.CardShare != 15 {
		t.Errorf("expected replayed 20/15 split, got %.2f/%.2f", second.WalletShare, second.CardShare)
	}
	if !second.Replayed {
		t.Error("expected the second settlement to be flagged as a replay")
	}

	// Even when the caller asks for a different amount, the replay reports
	// the recorded split.
	third, err := svc.SettleTripCharge(context.Background(), "user-1", "trip-1", 50)
	if err != nil {
		t.Fatalf("replay with changed amount failed: %v", err)
	}
	if third.WalletShare != 20 || third.CardShare != 15 {
		t.Errorf("expected recorded 20/15 split regardless of amount, got %.2f/%.2f", third.WalletShare, third.CardShare)
	}
}

// Payment failure leaves the trip ACTIVE; once the gateway recovers the
// retried end sees a fare that kept accruing and completes.
func TestTripEnd_PaymentFailure_TripStaysActive(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)
	f.wallets.SetBalance("user-1", 0)
	f.gateway.Script(
		service.ChargeOutcomeTransient, service.ChargeOutcomeTransient, service.ChargeOutcomeTransient,
	)

	trip, err := f.svc.StartFromReservation(context.Background(), "res-1", "user-1")
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	f.advance(20 * time.Minute)

	if _, err := f.svc.EndTrip(context.Background(), trip.ID, "user-1"); !errors.Is(err, service.ErrPaymentFailed) {
		t.Fatalf("expected ErrPaymentFailed, got: %v", err)
	}

	stored := f.trips.GetTrip(trip.ID)
	if stored.Status != domain.TripStatusActive {
		t.Errorf("expected trip to stay ACTIVE after payment failure, got %s", stored.Status)
	}
	if f.trips.GetReceiptForTrip(trip.ID) != nil {
		t.Error("expected no receipt after payment failure")
	}

	// Ten minutes later the gateway recovers; the retried end bills the
	// larger elapsed fare.
	f.advance(30 * time.Minute)
	result, err := f.svc.EndTrip(context.Background(), trip.ID, "user-1")
	if err != nil {
		t.Fatalf("retried end failed: %v", err)
	}
	if result.Receipt.TotalCost != 50.0 { // 5 + 30*1.5
		t.Errorf("expected 50.00 after 30 minutes, got %.2f", result.Receipt.TotalCost)
	}
	if result.Trip.Status != domain.TripStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", result.Trip.Status)
	}
}

// A settled charge is authoritative even when the completion write fails:
// the retried end must not re-bill the fare that kept accruing, and the
// receipt reports exactly what was collected.
func TestTripEnd_SettledButCompleteFails_RetryKeepsSettledFare(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)

	trip, err := f.svc.StartFromReservation(context.Background(), "res-1", "user-1")
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	f.advance(20 * time.Minute)

	f.trips.CompleteError = errors.New("connection reset")
	if _, err := f.svc.EndTrip(context.Background(), trip.ID, "user-1"); err == nil {
		t.Fatal("expected the first end to fail")
	}

	stored := f.trips.GetTrip(trip.ID)
	if stored.Status != domain.TripStatusActive {
		t.Fatalf("expected trip to stay ACTIVE, got %s", stored.Status)
	}
	if len(f.wallets.Entries()) != 1 {
		t.Fatalf("expected the settlement to be recorded, got %d entries", len(f.wallets.Entries()))
	}

	// Half an hour later the write path recovers. The 20-minute fare was
	// already collected, so the retry charges nothing more.
	f.trips.CompleteError = nil
	f.advance(50 * time.Minute)
	result, err := f.svc.EndTrip(context.Background(), trip.ID, "user-1")
	if err != nil {
		t.Fatalf("retried end failed: %v", err)
	}

	if result.Receipt.TotalCost != 35.0 { // 5 + 20*1.5, the settled fare
		t.Errorf("expected receipt to report the settled 35.00, got %.2f", result.Receipt.TotalCost)
	}
	if result.Receipt.DurationMinutes != 20 {
		t.Errorf("expected 20 settled minutes on the receipt, got %d", result.Receipt.DurationMinutes)
	}
	if len(f.wallets.Entries()) != 1 {
		t.Errorf("expected no second charge, got %d entries", len(f.wallets.Entries()))
	}
	balance, err := f.wallets.GetBalance(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("balance read failed: %v", err)
	}
	if balance != 65.0 {
		t.Errorf("expected balance 65.00 after the single 35.00 debit, got %.2f", balance)
	}
	if result.Trip.Status != domain.TripStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", result.Trip.Status)
	}
}
