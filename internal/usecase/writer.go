package usecase

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mobiwallet/ledger/internal/domain"
)

// LedgerWriter applies signed balance deltas to wallets under a
// per-(owner, currency) exclusive lock, so two concurrent flows against the
// same wallet can never both pass a balance check and then both subtract.
// Different keys proceed fully concurrently. Deltas that would drive a
// balance negative fail with domain.ErrInsufficientFunds; no retries happen
// for business errors.
type LedgerWriter struct {
	wallets WalletRepository
	retrier Retrier

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedgerWriter creates a new LedgerWriter.
func NewLedgerWriter(wallets WalletRepository, retrier Retrier) *LedgerWriter {
	return &LedgerWriter{
		wallets: wallets,
		retrier: retrier,
		locks:   make(map[string]*sync.Mutex),
	}
}

// keyLock returns the mutex serializing mutations for one wallet key.
// Entries are never removed; the map is bounded by the number of wallets
// ever touched.
func (w *LedgerWriter) keyLock(ownerID, currency string) *sync.Mutex {
	key := ownerID + "/" + currency

	w.mu.Lock()
	defer w.mu.Unlock()

	lock, ok := w.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		w.locks[key] = lock
	}

	return lock
}

// Debit removes amount from the available balance.
func (w *LedgerWriter) Debit(ctx context.Context, ownerID, currency string, amount decimal.Decimal) (*domain.Wallet, error) {
	return w.Adjust(ctx, ownerID, currency, amount.Neg(), domain.BalanceAvailable)
}

// Credit adds amount to the available balance. It cannot fail on balance
// grounds; only storage errors propagate.
func (w *LedgerWriter) Credit(ctx context.Context, ownerID, currency string, amount decimal.Decimal) (*domain.Wallet, error) {
	return w.Adjust(ctx, ownerID, currency, amount, domain.BalanceAvailable)
}

// LockFunds moves amount from the available balance into the locked balance.
func (w *LedgerWriter) LockFunds(ctx context.Context, ownerID, currency string, amount decimal.Decimal) (*domain.Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	lock := w.keyLock(ownerID, currency)
	lock.Lock()
	defer lock.Unlock()

	wallet, err := w.wallets.Get(ctx, ownerID, currency)
	if err != nil {
		return nil, err
	}

	previous := wallet.Version
	if err := wallet.Adjust(amount.Neg(), domain.BalanceAvailable); err != nil {
		return nil, err
	}
	wallet.LockedBalance = wallet.LockedBalance.Add(amount)

	if err := w.save(ctx, wallet, previous); err != nil {
		return nil, err
	}

	return wallet.Clone(), nil
}

// UnlockFunds releases amount from the locked balance back to available.
func (w *LedgerWriter) UnlockFunds(ctx context.Context, ownerID, currency string, amount decimal.Decimal) (*domain.Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	lock := w.keyLock(ownerID, currency)
	lock.Lock()
	defer lock.Unlock()

	wallet, err := w.wallets.Get(ctx, ownerID, currency)
	if err != nil {
		return nil, err
	}

	previous := wallet.Version
	if err := wallet.Adjust(amount.Neg(), domain.BalanceLocked); err != nil {
		return nil, err
	}
	wallet.Balance = wallet.Balance.Add(amount)

	if err := w.save(ctx, wallet, previous); err != nil {
		return nil, err
	}

	return wallet.Clone(), nil
}

// Adjust applies a signed delta to the named balance of one wallet key.
// The read-modify-write is not observable as separate steps by any other
// caller of the same key.
func (w *LedgerWriter) Adjust(ctx context.Context, ownerID, currency string, delta decimal.Decimal, kind domain.BalanceKind) (*domain.Wallet, error) {
	lock := w.keyLock(ownerID, currency)
	lock.Lock()
	defer lock.Unlock()

	wallet, err := w.wallets.Get(ctx, ownerID, currency)
	if err != nil {
		return nil, err
	}

	previous := wallet.Version
	if err := wallet.Adjust(delta, kind); err != nil {
		return nil, err
	}

	if err := w.save(ctx, wallet, previous); err != nil {
		return nil, err
	}

	return wallet.Clone(), nil
}

// Balance reads the current wallet without taking the key lock; reads have
// no side effects and see the latest committed state.
func (w *LedgerWriter) Balance(ctx context.Context, ownerID, currency string) (*domain.Wallet, error) {
	return w.wallets.Get(ctx, ownerID, currency)
}

func (w *LedgerWriter) save(ctx context.Context, wallet *domain.Wallet, previousVersion int64) error {
	if w.retrier == nil {
		return w.wallets.Save(ctx, wallet, previousVersion)
	}

	return w.retrier.Retry(ctx, func() error {
		return w.wallets.Save(ctx, wallet, previousVersion)
	})
}
