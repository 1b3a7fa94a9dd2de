package domain

import "time"

// Wallet holds a user's current balance. Balances only move through
// conditional ADDs paired with a WalletEntry, never through blind writes.
type Wallet struct {
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	BalanceCents int64     `json:"balance_cents" dynamodbav:"balance_cents"`
	Currency     string    `json:"currency" dynamodbav:"currency"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Wallet entry kinds.
const (
	EntryCredit     = "credit"
	EntryWithdrawal = "withdrawal"
)

// WalletEntry is one immutable movement on a wallet.
type WalletEntry struct {
	EntryID     string    `json:"id" dynamodbav:"entry_id"`
	UserID      string    `json:"user_id" dynamodbav:"user_id"`
	PaymentID   string    `json:"payment_id,omitempty" dynamodbav:"payment_id"`
	Kind        string    `json:"kind" dynamodbav:"kind"`
	AmountCents int64     `json:"amount_cents" dynamodbav:"amount_cents"` // negative for withdrawals
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
}

type WithdrawRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"required,gt=0"`
}
