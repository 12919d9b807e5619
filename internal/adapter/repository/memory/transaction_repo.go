package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mobiwallet/ledger/internal/domain"
)

// TransactionRepository implements usecase.TransactionRepository in memory.
type TransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
	order        []string
}

// NewTransactionRepository creates a new in-memory TransactionRepository.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

// Create appends a new transaction record.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.transactions[tx.ReferenceID] = cloneTransaction(tx)
	r.order = append(r.order, tx.ReferenceID)

	return nil
}

// Get retrieves a transaction by reference id.
func (r *TransactionRepository) Get(ctx context.Context, referenceID string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, ok := r.transactions[referenceID]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}

	return cloneTransaction(tx), nil
}

// UpdateStatus advances the status of a transaction.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, referenceID string, status domain.TransactionStatus, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.transactions[referenceID]
	if !ok {
		return domain.ErrTransactionNotFound
	}

	tx.Status = status
	tx.UpdatedAt = updatedAt

	return nil
}

// ListByOwner lists an owner's transactions, newest first.
func (r *TransactionRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var txs []*domain.Transaction
	// Insertion order is creation order; walk it backwards for newest first.
	for i := len(r.order) - 1; i >= 0; i-- {
		tx := r.transactions[r.order[i]]
		if tx.OwnerID == ownerID {
			txs = append(txs, cloneTransaction(tx))
		}
	}

	if offset >= len(txs) {
		return nil, nil
	}
	txs = txs[offset:]
	if limit < len(txs) {
		txs = txs[:limit]
	}

	return txs, nil
}

// ListPendingOlderThan lists pending transactions created before cutoff,
// oldest first.
func (r *TransactionRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var txs []*domain.Transaction
	for _, tx := range r.transactions {
		if tx.Status == domain.StatusPending && tx.CreatedAt.Before(cutoff) {
			txs = append(txs, cloneTransaction(tx))
		}
	}

	sort.Slice(txs, func(i, j int) bool {
		return txs[i].CreatedAt.Before(txs[j].CreatedAt)
	})

	if limit > 0 && limit < len(txs) {
		txs = txs[:limit]
	}

	return txs, nil
}

// cloneTransaction copies the record including its metadata map, so callers
// never alias stored state.
func cloneTransaction(tx *domain.Transaction) *domain.Transaction {
	cp := *tx
	if tx.Metadata != nil {
		cp.Metadata = make(map[string]any, len(tx.Metadata))
		for k, v := range tx.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}
