package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind enumerates the money-movement flows.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindTransfer   TransactionKind = "transfer"
	KindBuyCrypto  TransactionKind = "buy_crypto"
	KindSellCrypto TransactionKind = "sell_crypto"
	KindAirtime    TransactionKind = "airtime_purchase"
)

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Terminal reports whether the status is final.
func (s TransactionStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether current may move to next. Terminal states
// are final; pending may only move forward.
func CanTransition(current, next TransactionStatus) bool {
	if current != StatusPending {
		return false
	}
	return next.Terminal()
}

// Metadata keys used across flows.
const (
	MetaRecipientID   = "recipient_id"
	MetaSellCurrency  = "sell_currency"
	MetaSellAmount    = "sell_amount"
	MetaDestination   = "destination"
	MetaPhoneNumber   = "phone_number"
	MetaFailureReason = "failure_reason"
)

// Transaction is the durable intent record of a money movement. It is
// append-only: status may advance, rows are never deleted.
type Transaction struct {
	ReferenceID string
	OwnerID     string
	Kind        TransactionKind
	Currency    string
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	Status      TransactionStatus
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks structural invariants of a new transaction.
func (t *Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if t.Fee.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// TotalDebit is the full amount removed from the payer: amount plus fee.
// The fee is additive, it is charged on top of the requested amount.
func (t *Transaction) TotalDebit() decimal.Decimal {
	return t.Amount.Add(t.Fee)
}

// MetaString reads a string metadata value, empty if absent.
func (t *Transaction) MetaString(key string) string {
	if t.Metadata == nil {
		return ""
	}
	if v, ok := t.Metadata[key].(string); ok {
		return v
	}
	return ""
}
