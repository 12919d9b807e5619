package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mobiwallet/ledger/internal/domain"
)

// Journal is the append-only record of transaction intents and their
// lifecycle. Every money movement starts with a journal record in pending
// and ends with exactly one terminal transition.
type Journal struct {
	transactions TransactionRepository
	idGen        IDGenerator
	retrier      Retrier
	cache        Cache
}

// NewJournal creates a new Journal. cache may be nil; when present,
// terminal transactions are served from it since they can never change.
func NewJournal(transactions TransactionRepository, idGen IDGenerator, retrier Retrier, cache Cache) *Journal {
	return &Journal{
		transactions: transactions,
		idGen:        idGen,
		retrier:      retrier,
		cache:        cache,
	}
}

// CreateTransactionInput carries the fields of a new journal record.
type CreateTransactionInput struct {
	OwnerID     string
	Kind        domain.TransactionKind
	Currency    string
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	Description string
	Metadata    map[string]any
}

// Create appends a new transaction in pending with a generated reference id.
func (j *Journal) Create(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	now := time.Now().UTC()
	tx := &domain.Transaction{
		ReferenceID: j.idGen.Generate(),
		OwnerID:     input.OwnerID,
		Kind:        input.Kind,
		Currency:    input.Currency,
		Amount:      input.Amount,
		Fee:         input.Fee,
		Status:      domain.StatusPending,
		Description: input.Description,
		Metadata:    input.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	if err := j.retry(ctx, func() error {
		return j.transactions.Create(ctx, tx)
	}); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	return tx, nil
}

// Get retrieves a transaction by reference id.
func (j *Journal) Get(ctx context.Context, referenceID string) (*domain.Transaction, error) {
	if cached := j.fromCache(ctx, referenceID); cached != nil {
		return cached, nil
	}

	tx, err := j.transactions.Get(ctx, referenceID)
	if err != nil {
		return nil, err
	}

	if tx.Status.Terminal() {
		j.toCache(ctx, tx)
	}

	return tx, nil
}

// ListByOwner returns an owner's transactions, newest first.
func (j *Journal) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Transaction, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return j.transactions.ListByOwner(ctx, ownerID, limit, offset)
}

// ListPendingOlderThan lists pending transactions created before cutoff.
func (j *Journal) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	return j.transactions.ListPendingOlderThan(ctx, cutoff, limit)
}

// Transition moves a transaction to next. Repeating a transition into the
// terminal state the record already holds is a no-op success; moving out of
// a terminal state, or into pending, fails with ErrInvalidTransition.
func (j *Journal) Transition(ctx context.Context, referenceID string, next domain.TransactionStatus) (*domain.Transaction, error) {
	tx, err := j.transactions.Get(ctx, referenceID)
	if err != nil {
		return nil, err
	}

	if tx.Status == next && next.Terminal() {
		return tx, nil
	}

	if !domain.CanTransition(tx.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, tx.Status, next)
	}

	now := time.Now().UTC()
	if err := j.retry(ctx, func() error {
		return j.transactions.UpdateStatus(ctx, referenceID, next, now)
	}); err != nil {
		return nil, fmt.Errorf("transition %s to %s: %w", referenceID, next, err)
	}

	tx.Status = next
	tx.UpdatedAt = now

	if next.Terminal() {
		j.toCache(ctx, tx)
	}

	return tx, nil
}

func (j *Journal) retry(ctx context.Context, operation func() error) error {
	if j.retrier == nil {
		return operation()
	}
	return j.retrier.Retry(ctx, operation)
}

func (j *Journal) cacheKey(referenceID string) string {
	return "tx:" + referenceID
}

func (j *Journal) fromCache(ctx context.Context, referenceID string) *domain.Transaction {
	if j.cache == nil {
		return nil
	}

	raw, err := j.cache.Get(ctx, j.cacheKey(referenceID))
	if err != nil || len(raw) == 0 {
		return nil
	}

	var tx domain.Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil
	}

	return &tx
}

func (j *Journal) toCache(ctx context.Context, tx *domain.Transaction) {
	if j.cache == nil {
		return
	}

	raw, err := json.Marshal(tx)
	if err != nil {
		return
	}

	// Cache failures are invisible to callers; the repository stays the
	// source of truth.
	_ = j.cache.Set(ctx, j.cacheKey(tx.ReferenceID), raw, TerminalTransactionTTL)
}
