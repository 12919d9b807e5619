// Package memory provides in-process repository implementations backed by
// maps. They honor the same optimistic-version contract as the postgres
// repositories and back the dev-mode server and integration tests.
package memory

import (
	"context"
	"sync"

	"github.com/mobiwallet/ledger/internal/domain"
)

// WalletRepository implements usecase.WalletRepository in memory.
type WalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet
}

// NewWalletRepository creates a new in-memory WalletRepository.
func NewWalletRepository() *WalletRepository {
	return &WalletRepository{
		wallets: make(map[string]*domain.Wallet),
	}
}

func key(ownerID, currency string) string {
	return ownerID + "/" + currency
}

// Get retrieves the wallet for (ownerID, currency), or a fresh zero-balance
// wallet if none is stored. The returned wallet is a copy; mutating it does
// not touch the stored record.
func (r *WalletRepository) Get(ctx context.Context, ownerID, currency string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if wallet, ok := r.wallets[key(ownerID, currency)]; ok {
		return wallet.Clone(), nil
	}

	return domain.NewWallet(ownerID, currency), nil
}

// Save persists the wallet if the stored version still equals
// previousVersion, inserting when previousVersion is zero and no record
// exists.
func (r *WalletRepository) Save(ctx context.Context, wallet *domain.Wallet, previousVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(wallet.OwnerID, wallet.Currency)
	stored, ok := r.wallets[k]
	if !ok {
		if previousVersion != 0 {
			return domain.ErrVersionConflict
		}
		r.wallets[k] = wallet.Clone()
		return nil
	}

	if stored.Version != previousVersion {
		return domain.ErrVersionConflict
	}

	r.wallets[k] = wallet.Clone()
	return nil
}
