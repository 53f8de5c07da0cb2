package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/config"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/repository"
)

// ChargeOutcome classifies a card charge attempt.
type ChargeOutcome string

const (
	ChargeOutcomeSuccess   ChargeOutcome = "SUCCESS"
	ChargeOutcomeTransient ChargeOutcome = "TRANSIENT_FAILURE"
	ChargeOutcomeDeclined  ChargeOutcome = "DECLINED"
)

// ChargeResult is the gateway's verdict on a single charge attempt.
type ChargeResult struct {
	Outcome    ChargeOutcome
	CardSuffix string
}

// PaymentGateway charges the user's card on file. Implementations must be
// safe for concurrent use.
type PaymentGateway interface {
	ChargeCard(ctx context.Context, userID string, amount float64) (*ChargeResult, error)
}

// MockGateway simulates the card processor. Outcomes are consumed in order;
// once the script runs out every further charge succeeds.
type MockGateway struct {
	mu      sync.Mutex
	script  []ChargeOutcome
	calls   int
	suffix  string
	failErr error
}

// NewMockGateway creates a gateway that approves every charge.
func NewMockGateway() *MockGateway {
	return &MockGateway{suffix: "4242"}
}

// Script queues outcomes for the next charge attempts.
func (g *MockGateway) Script(outcomes ...ChargeOutcome) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.script = append(g.script, outcomes...)
}

// FailWith makes every charge return err instead of a result.
func (g *MockGateway) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failErr = err
}

// Calls reports how many charge attempts were made.
func (g *MockGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *MockGateway) ChargeCard(ctx context.Context, userID string, amount float64) (*ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++

	if g.failErr != nil {
		return nil, g.failErr
	}

	outcome := ChargeOutcomeSuccess
	if len(g.script) > 0 {
		outcome = g.script[0]
		g.script = g.script[1:]
	}

	return &ChargeResult{Outcome: outcome, CardSuffix: g.suffix}, nil
}

// SettlementResult describes how a trip charge was collected. Replayed is
// set when the result reports a previously recorded settlement; the shares
// then describe what was actually collected, which may differ from the
// amount the caller asked for.
type SettlementResult struct {
	Entry        *domain.WalletTransaction
	Method       domain.PaymentMethod
	Details      string
	WalletShare  float64
	CardShare    float64
	GatewayCalls int
	Replayed     bool
}

// SettlementService collects trip fares, draining the wallet first and
// charging the card only for the remainder.
type SettlementService struct {
	wallets repository.WalletRepository
	gateway PaymentGateway
	cfg     config.SettlementConfig
	log     *logrus.Logger
	sleep   func(time.Duration)
	now     func() time.Time
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(
	wallets repository.WalletRepository,
	gateway PaymentGateway,
	cfg config.SettlementConfig,
	log *logrus.Logger,
) *SettlementService {
	return &SettlementService{
		wallets: wallets,
		gateway: gateway,
		cfg:     cfg,
		log:     log,
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// SetClock overrides the time source. Used by tests.
func (s *SettlementService) SetClock(now func() time.Time) {
	s.now = now
}

// SetSleep overrides the backoff sleeper. Used by tests.
func (s *SettlementService) SetSleep(sleep func(time.Duration)) {
	s.sleep = sleep
}

// SettleTripCharge collects amount for the trip. Exactly one TRIP_CHARGE
// ledger entry is written per trip; retried calls replay the recorded
// settlement instead of charging twice, reporting the original split even
// when the requested amount has since changed.
func (s *SettlementService) SettleTripCharge(ctx context.Context, userID, tripID string, amount float64) (*SettlementResult, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	amount = round2(amount)

	// Idempotency: a previous call may have settled and then failed before
	// its caller finished. The recorded entry is authoritative; the caller's
	// amount is ignored on replay.
	if existing, err := s.wallets.GetTripCharge(ctx, tripID); err == nil && existing != nil {
		return &SettlementResult{
			Entry:       existing,
			Method:      existing.Method,
			Details:     existing.MethodDetails,
			WalletShare: round2(-existing.Amount),
			CardShare:   existing.CardAmount,
			Replayed:    true,
		}, nil
	}

	balance, err := s.wallets.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	walletShare := math.Min(balance, amount)
	cardShare := round2(amount - walletShare)
	walletShare = round2(walletShare)

	method := domain.PaymentMethodWallet
	details := "wallet"
	gatewayCalls := 0

	if cardShare > 0 {
		result, calls, err := s.chargeCard(ctx, userID, cardShare)
		gatewayCalls = calls
		if err != nil {
			return nil, err
		}
		details = fmt.Sprintf("card ending %s", result.CardSuffix)
		if walletShare > 0 {
			method = domain.PaymentMethodWalletCard
			details = fmt.Sprintf("wallet + card ending %s", result.CardSuffix)
		} else {
			method = domain.PaymentMethodCard
		}
	}

	entry := &domain.WalletTransaction{
		ID:            uuid.New().String(),
		UserID:        userID,
		TripID:        tripID,
		Amount:        -walletShare,
		CardAmount:    cardShare,
		Type:          domain.TransactionTypeTripCharge,
		Method:        method,
		MethodDetails: details,
		CreatedAt:     s.now(),
	}

	if err := s.wallets.ApplyTripCharge(ctx, entry); err != nil {
		return nil, err
	}

	return &SettlementResult{
		Entry:        entry,
		Method:       method,
		Details:      details,
		WalletShare:  walletShare,
		CardShare:    cardShare,
		GatewayCalls: gatewayCalls,
	}, nil
}

// chargeCard retries transient gateway failures with exponential backoff.
// A decline is final and never retried.
func (s *SettlementService) chargeCard(ctx context.Context, userID string, amount float64) (*ChargeResult, int, error) {
	delay := s.cfg.BaseDelay
	calls := 0

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.AttemptTimeout)
		result, err := s.gateway.ChargeCard(attemptCtx, userID, amount)
		cancel()
		calls++

		switch {
		case err != nil:
			s.log.WithFields(logrus.Fields{
				"user_id": userID,
				"attempt": attempt,
				"error":   err.Error(),
			}).Warn("card charge attempt failed")
		case result.Outcome == ChargeOutcomeSuccess:
			return result, calls, nil
		case result.Outcome == ChargeOutcomeDeclined:
			return nil, calls, fmt.Errorf("card declined: %w", ErrPaymentFailed)
		default:
			s.log.WithFields(logrus.Fields{
				"user_id": userID,
				"attempt": attempt,
			}).Warn("transient card charge failure")
		}

		if attempt < s.cfg.MaxAttempts {
			s.sleep(delay)
			delay *= 2
			if delay > s.cfg.MaxDelay {
				delay = s.cfg.MaxDelay
			}
		}
	}

	return nil, calls, fmt.Errorf("card charge failed after %d attempts: %w", s.cfg.MaxAttempts, ErrPaymentFailed)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
