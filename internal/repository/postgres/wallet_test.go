package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/repository"
)

func TestWalletApplyTripCharge_DebitsAndRecordsLedger(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWalletRepository(db)
	now := time.Date(2026, 3, 1, 10, 20, 0, 0, time.UTC)
	entry := &domain.WalletTransaction{
		ID:            "tx-1",
		UserID:        "user-1",
		TripID:        "trip-1",
		Amount:        -20,
		Type:          domain.TransactionTypeTripCharge,
		Method:        domain.PaymentMethodWalletCard,
		MethodDetails: "wallet + card ending 4242",
		CreatedAt:     now,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT balance FROM wallets WHERE user_id .* FOR UPDATE").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(20.0))
	mock.ExpectExec("UPDATE wallets SET balance").
		WithArgs(0.0, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ApplyTripCharge(context.Background(), entry))

	// The authoritative snapshot comes from the locked row.
	assert.Equal(t, 20.0, entry.BalanceBefore)
	assert.Equal(t, 0.0, entry.BalanceAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletApplyTripCharge_InsufficientBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWalletRepository(db)
	entry := &domain.WalletTransaction{
		ID: "tx-1", UserID: "user-1", TripID: "trip-1",
		Amount: -35, Type: domain.TransactionTypeTripCharge,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT balance FROM wallets WHERE user_id .* FOR UPDATE").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(20.0))
	mock.ExpectRollback()

	err = repo.ApplyTripCharge(context.Background(), entry)
	assert.ErrorIs(t, err, repository.ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletApplyTripCharge_RejectsPositiveAmount(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWalletRepository(db)
	err = repo.ApplyTripCharge(context.Background(), &domain.WalletTransaction{Amount: 5})
	assert.Error(t, err)
}

func TestWalletGetTripCharge_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWalletRepository(db)

	mock.ExpectQuery("SELECT .* FROM wallet_transactions").
		WithArgs("trip-1", domain.TransactionTypeTripCharge).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "trip_id", "amount", "card_amount", "type", "method",
			"method_details", "balance_before", "balance_after", "created_at",
		}))

	_, err = repo.GetTripCharge(context.Background(), "trip-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
