package usecase

import (
	"context"
	"time"

	"github.com/mobiwallet/ledger/internal/domain"
)

// WalletRepository defines data access for wallets. Each call is atomic for
// a single record; no multi-record transactions are assumed.
type WalletRepository interface {
	// Get returns the wallet for (ownerID, currency), or a fresh
	// zero-balance wallet if none is stored. Reading has no side effect.
	Get(ctx context.Context, ownerID, currency string) (*domain.Wallet, error)
	// Save persists the wallet if the stored version still equals
	// previousVersion, inserting when previousVersion is zero and no record
	// exists. Returns domain.ErrVersionConflict otherwise.
	Save(ctx context.Context, wallet *domain.Wallet, previousVersion int64) error
}

// TransactionRepository defines data access for the transaction journal.
// Records are append-only: status may advance, rows are never deleted.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	Get(ctx context.Context, referenceID string) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, referenceID string, status domain.TransactionStatus, updatedAt time.Time) error
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Transaction, error)
	// ListPendingOlderThan returns pending transactions created before the
	// cutoff, oldest first. Used by operators to find stuck transactions.
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transaction, error)
}

// IDGenerator generates unique transaction reference ids.
type IDGenerator interface {
	Generate() string
}

// Retrier retries transient storage failures with bounded backoff.
// Business-rule errors are never retried.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Scheduler is the clock facility used to suspend a flow until settlement.
// After runs fn once after d; the returned function cancels the pending run.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

// Gateway confirms a transaction with the external settlement provider.
// A nil return means the provider confirmed the movement.
type Gateway interface {
	Settle(ctx context.Context, tx *domain.Transaction) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
