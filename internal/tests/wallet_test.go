package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/service"
)

// ──────────────────────────────────────────────
// 5. WALLET
// ──────────────────────────────────────────────

func newWalletFixture(t *testing.T) (*service.WalletService, *MockWalletRepository) {
	t.Helper()

	wallets := NewMockWalletRepository()
	users := NewMockUserRepository()
	users.AddUser(&domain.User{ID: "user-1", Name: "Ada", Phone: "+15550001"})
	wallets.SetBalance("user-1", 10)

	return service.NewWalletService(wallets, service.NewRepoIdentity(users)), wallets
}

func TestWalletTopUp_CreditsAndRecordsLedger(t *testing.T) {
	t.Parallel()

	svc, wallets := newWalletFixture(t)

	entry, err := svc.TopUp(context.Background(), "user-1", 25)
	if err != nil {
		t.Fatalf("top-up failed: %v", err)
	}

	if entry.Type != domain.TransactionTypeTopUp {
		t.Errorf("expected TOP_UP entry, got %s", entry.Type)
	}
	if entry.BalanceBefore != 10 || entry.BalanceAfter != 35 {
		t.Errorf("expected balance 10 -> 35, got %.2f -> %.2f", entry.BalanceBefore, entry.BalanceAfter)
	}

	balance, err := svc.GetBalance(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("balance read failed: %v", err)
	}
	if balance != 35 {
		t.Errorf("expected balance 35, got %.2f", balance)
	}
	if len(wallets.Entries()) != 1 {
		t.Errorf("expected a single ledger entry, got %d", len(wallets.Entries()))
	}
}

func TestWalletTopUp_NonPositiveAmount_Fails(t *testing.T) {
	t.Parallel()

	svc, _ := newWalletFixture(t)

	for _, amount := range []float64{0, -5} {
		if _, err := svc.TopUp(context.Background(), "user-1", amount); !errors.Is(err, service.ErrInvalidAmount) {
			t.Errorf("amount %.2f: expected ErrInvalidAmount, got: %v", amount, err)
		}
	}
}

func TestWalletTopUp_UnknownUser_Fails(t *testing.T) {
	t.Parallel()

	svc, _ := newWalletFixture(t)

	if _, err := svc.TopUp(context.Background(), "ghost", 25); err == nil {
		t.Error("expected error for unknown user")
	}
}

func TestWalletTransactions_ListsEntries(t *testing.T) {
	t.Parallel()

	svc, _ := newWalletFixture(t)

	if _, err := svc.TopUp(context.Background(), "user-1", 25); err != nil {
		t.Fatalf("top-up failed: %v", err)
	}
	if _, err := svc.TopUp(context.Background(), "user-1", 15); err != nil {
		t.Fatalf("top-up failed: %v", err)
	}

	entries, err := svc.GetTransactions(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}
