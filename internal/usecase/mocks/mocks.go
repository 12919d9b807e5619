package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mobiwallet/ledger/internal/domain"
)

// MockWalletRepository is an in-memory mock implementation of
// WalletRepository with optimistic version checking.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet

	GetFunc  func(ctx context.Context, ownerID, currency string) (*domain.Wallet, error)
	SaveFunc func(ctx context.Context, wallet *domain.Wallet, previousVersion int64) error
}

func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[string]*domain.Wallet),
	}
}

func walletKey(ownerID, currency string) string {
	return ownerID + "/" + currency
}

func (m *MockWalletRepository) Get(ctx context.Context, ownerID, currency string) (*domain.Wallet, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, ownerID, currency)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.wallets[walletKey(ownerID, currency)]; ok {
		return w.Clone(), nil
	}
	return domain.NewWallet(ownerID, currency), nil
}

func (m *MockWalletRepository) Save(ctx context.Context, wallet *domain.Wallet, previousVersion int64) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, wallet, previousVersion)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := walletKey(wallet.OwnerID, wallet.Currency)
	stored, ok := m.wallets[key]
	if !ok {
		if previousVersion != 0 {
			return domain.ErrVersionConflict
		}
		m.wallets[key] = wallet.Clone()
		return nil
	}
	if stored.Version != previousVersion {
		return domain.ErrVersionConflict
	}
	m.wallets[key] = wallet.Clone()
	return nil
}

// Seed stores a wallet directly, bypassing version checks.
func (m *MockWalletRepository) Seed(wallet *domain.Wallet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[walletKey(wallet.OwnerID, wallet.Currency)] = wallet.Clone()
}

// MockTransactionRepository is an in-memory mock implementation of
// TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction

	CreateFunc               func(ctx context.Context, tx *domain.Transaction) error
	GetFunc                  func(ctx context.Context, referenceID string) (*domain.Transaction, error)
	UpdateStatusFunc         func(ctx context.Context, referenceID string, status domain.TransactionStatus, updatedAt time.Time) error
	ListByOwnerFunc          func(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Transaction, error)
	ListPendingOlderThanFunc func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tx
	m.transactions[tx.ReferenceID] = &cp
	return nil
}

func (m *MockTransactionRepository) Get(ctx context.Context, referenceID string) (*domain.Transaction, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, referenceID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if tx, ok := m.transactions[referenceID]; ok {
		cp := *tx
		return &cp, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, referenceID string, status domain.TransactionStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, referenceID, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.transactions[referenceID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	tx.Status = status
	tx.UpdatedAt = updatedAt
	return nil
}

func (m *MockTransactionRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txs []*domain.Transaction
	for _, tx := range m.transactions {
		if tx.OwnerID == ownerID {
			cp := *tx
			txs = append(txs, &cp)
		}
	}
	sort.Slice(txs, func(i, j int) bool {
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
	if offset >= len(txs) {
		return nil, nil
	}
	txs = txs[offset:]
	if limit < len(txs) {
		txs = txs[:limit]
	}
	return txs, nil
}

func (m *MockTransactionRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transaction, error) {
	if m.ListPendingOlderThanFunc != nil {
		return m.ListPendingOlderThanFunc(ctx, cutoff, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txs []*domain.Transaction
	for _, tx := range m.transactions {
		if tx.Status == domain.StatusPending && tx.CreatedAt.Before(cutoff) {
			cp := *tx
			txs = append(txs, &cp)
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

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("TXN%08d", m.counter)
}

// MockRetrier is a mock implementation of Retrier that runs the operation
// exactly once.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockScheduler is a mock implementation of Scheduler that runs callbacks
// inline, ignoring the delay. Cancellation after an inline run is a no-op.
type MockScheduler struct {
	AfterFunc func(d time.Duration, fn func()) func()
}

func NewMockScheduler() *MockScheduler {
	return &MockScheduler{}
}

func (m *MockScheduler) After(d time.Duration, fn func()) func() {
	if m.AfterFunc != nil {
		return m.AfterFunc(d, fn)
	}
	fn()
	return func() {}
}

// ManualScheduler is a Scheduler that collects callbacks so tests can fire
// them at a chosen point.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) After(d time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := len(m.pending)
	m.pending = append(m.pending, fn)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if idx < len(m.pending) {
			m.pending[idx] = nil
		}
	}
}

// Fire runs all pending callbacks that have not been cancelled.
func (m *ManualScheduler) Fire() {
	m.mu.Lock()
	fns := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn()
		}
	}
}

// Pending reports the number of armed, uncancelled callbacks.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, fn := range m.pending {
		if fn != nil {
			n++
		}
	}
	return n
}

// MockGateway is a mock implementation of Gateway. With no SettleFunc each
// settlement succeeds.
type MockGateway struct {
	mu      sync.Mutex
	settled []string

	SettleFunc func(ctx context.Context, tx *domain.Transaction) error
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) Settle(ctx context.Context, tx *domain.Transaction) error {
	if m.SettleFunc != nil {
		return m.SettleFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settled = append(m.settled, tx.ReferenceID)
	return nil
}

// Settled returns the reference ids settled so far.
func (m *MockGateway) Settled() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.settled...)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
