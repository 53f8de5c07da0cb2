package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/repository"
)

// WalletService exposes the prepaid wallet: balance reads, top-ups and the
// transaction ledger. Trip charges are written by the settlement flow only.
type WalletService struct {
	wallets  repository.WalletRepository
	identity Identity
	now      func() time.Time
}

// NewWalletService creates a new WalletService.
func NewWalletService(wallets repository.WalletRepository, identity Identity) *WalletService {
	return &WalletService{
		wallets:  wallets,
		identity: identity,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Used by tests.
func (s *WalletService) SetClock(now func() time.Time) {
	s.now = now
}

// GetBalance returns the user's current wallet balance.
func (s *WalletService) GetBalance(ctx context.Context, userID string) (float64, error) {
	if userID == "" {
		return 0, ErrInvalidUserID
	}
	return s.wallets.GetBalance(ctx, userID)
}

// TopUp credits the wallet and records a TOP_UP ledger entry.
func (s *WalletService) TopUp(ctx context.Context, userID string, amount float64) (*domain.WalletTransaction, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if err := s.identity.Verify(ctx, userID); err != nil {
		return nil, err
	}

	entry := &domain.WalletTransaction{
		ID:            uuid.New().String(),
		UserID:        userID,
		Amount:        amount,
		Type:          domain.TransactionTypeTopUp,
		Method:        domain.PaymentMethodCard,
		MethodDetails: "top-up",
		CreatedAt:     s.now(),
	}

	if err := s.wallets.ApplyTopUp(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// GetTransactions returns the user's ledger entries, newest first.
func (s *WalletService) GetTransactions(ctx context.Context, userID string) ([]*domain.WalletTransaction, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.wallets.GetByUserID(ctx, userID)
}
