package domain

import "time"

// User is a registered account holder. Every user owns exactly one
// wallet, provisioned at zero balance when the account is created.
type User struct {
	ID        string
	Name      string
	Phone     string
	CreatedAt time.Time
}

// TransactionType represents the kind of wallet ledger entry.
type TransactionType string

const (
	TransactionTypeTopUp      TransactionType = "TOP_UP"
	TransactionTypeTripCharge TransactionType = "TRIP_CHARGE"
)

// PaymentMethod labels how a charge was funded.
type PaymentMethod string

const (
	PaymentMethodWallet     PaymentMethod = "WALLET"
	PaymentMethodCard       PaymentMethod = "CARD"
	PaymentMethodWalletCard PaymentMethod = "WALLET_CARD"
)

// WalletTransaction is an append-only ledger entry for a single wallet
// balance change. BalanceAfter must equal BalanceBefore + Amount exactly;
// entries are never mutated after creation. For a TRIP_CHARGE, CardAmount
// records the card-funded share so the entry captures the full amount
// collected, not just the wallet debit.
type WalletTransaction struct {
	ID            string
	UserID        string
	TripID        string // set for TRIP_CHARGE entries
	Amount        float64
	CardAmount    float64
	Type          TransactionType
	Method        PaymentMethod
	MethodDetails string
	BalanceBefore float64
	BalanceAfter  float64
	CreatedAt     time.Time
}
