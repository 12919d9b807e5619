package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceKind selects which balance of a wallet an adjustment targets.
type BalanceKind string

const (
	BalanceAvailable BalanceKind = "available"
	BalanceLocked    BalanceKind = "locked"
)

// Wallet holds one balance per (owner, currency) pair. Both balances are
// always non-negative. Wallets are created lazily on first reference and
// never deleted.
type Wallet struct {
	OwnerID       string
	Currency      string
	Balance       decimal.Decimal
	LockedBalance decimal.Decimal
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewWallet returns a zero-balance wallet for the given key.
func NewWallet(ownerID, currency string) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		OwnerID:       ownerID,
		Currency:      currency,
		Balance:       decimal.Zero,
		LockedBalance: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ValidateDebit checks whether the available balance covers amount.
func (w *Wallet) ValidateDebit(amount decimal.Decimal) error {
	if w.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}

// ValidateUnlock checks whether the locked balance covers amount.
func (w *Wallet) ValidateUnlock(amount decimal.Decimal) error {
	if w.LockedBalance.Sub(amount).IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns the available balance after a debit.
func (w *Wallet) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Sub(amount)
}

// ApplyCredit returns the available balance after a credit.
func (w *Wallet) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Add(amount)
}

// Adjust applies a signed delta to the named balance, enforcing the
// non-negative invariant. It mutates the wallet in place and bumps the
// version; callers persist the result atomically.
func (w *Wallet) Adjust(delta decimal.Decimal, kind BalanceKind) error {
	switch kind {
	case BalanceLocked:
		next := w.LockedBalance.Add(delta)
		if next.IsNegative() {
			return ErrInsufficientFunds
		}
		w.LockedBalance = next
	default:
		next := w.Balance.Add(delta)
		if next.IsNegative() {
			return ErrInsufficientFunds
		}
		w.Balance = next
	}

	w.Version++
	w.UpdatedAt = time.Now().UTC()

	return nil
}

// Clone returns a deep copy so callers cannot alias stored state.
func (w *Wallet) Clone() *Wallet {
	cp := *w
	return &cp
}
