package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mobiwallet/ledger/internal/domain"
)

func TestWalletRepositoryVersionConflict(t *testing.T) {
	repo := NewWalletRepository()
	ctx := context.Background()

	wallet := domain.NewWallet("owner-1", "UGX")
	wallet.Balance = decimal.NewFromInt(100)
	wallet.Version = 1

	if err := repo.Save(ctx, wallet, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A second insert against the same key must conflict.
	if err := repo.Save(ctx, wallet, 0); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	// An update against a stale version must conflict.
	stale := wallet.Clone()
	stale.Version = 5
	if err := repo.Save(ctx, stale, 3); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	// An update against the current version succeeds.
	next := wallet.Clone()
	next.Balance = decimal.NewFromInt(50)
	next.Version = 2
	if err := repo.Save(ctx, next, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.Get(ctx, "owner-1", "UGX")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Balance.Equal(decimal.NewFromInt(50)) || got.Version != 2 {
		t.Errorf("unexpected wallet state: %+v", got)
	}
}

func TestWalletRepositoryGetReturnsCopy(t *testing.T) {
	repo := NewWalletRepository()
	ctx := context.Background()

	wallet := domain.NewWallet("owner-1", "UGX")
	wallet.Balance = decimal.NewFromInt(100)
	wallet.Version = 1
	if err := repo.Save(ctx, wallet, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, _ := repo.Get(ctx, "owner-1", "UGX")
	first.Balance = decimal.NewFromInt(999)

	second, _ := repo.Get(ctx, "owner-1", "UGX")
	if !second.Balance.Equal(decimal.NewFromInt(100)) {
		t.Error("mutating a returned wallet must not affect the stored record")
	}
}

func TestWalletRepositoryUnknownKeyReadsZero(t *testing.T) {
	repo := NewWalletRepository()

	wallet, err := repo.Get(context.Background(), "ghost", "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !wallet.Balance.IsZero() || wallet.Version != 0 {
		t.Errorf("expected a fresh zero wallet, got %+v", wallet)
	}
}

func TestTransactionRepositoryLifecycle(t *testing.T) {
	repo := NewTransactionRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	tx := &domain.Transaction{
		ReferenceID: "TXN-1",
		OwnerID:     "owner-1",
		Kind:        domain.KindDeposit,
		Currency:    "UGX",
		Amount:      decimal.NewFromInt(1000),
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(ctx, tx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.UpdateStatus(ctx, "TXN-1", domain.StatusCompleted, now.Add(time.Second)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.Get(ctx, "TXN-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.StatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}

	if err := repo.UpdateStatus(ctx, "TXN-missing", domain.StatusFailed, now); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestTransactionRepositoryMetadataNotAliased(t *testing.T) {
	repo := NewTransactionRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	tx := &domain.Transaction{
		ReferenceID: "TXN-1",
		OwnerID:     "owner-1",
		Kind:        domain.KindTransfer,
		Currency:    "UGX",
		Amount:      decimal.NewFromInt(1000),
		Status:      domain.StatusPending,
		Metadata:    map[string]any{domain.MetaRecipientID: "bob"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(ctx, tx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Neither mutating the input map nor a returned copy may touch the store.
	tx.Metadata[domain.MetaRecipientID] = "mallory"

	got, err := repo.Get(ctx, "TXN-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MetaString(domain.MetaRecipientID) != "bob" {
		t.Fatalf("stored metadata changed through the input map: %v", got.Metadata)
	}

	got.Metadata[domain.MetaRecipientID] = "eve"

	again, err := repo.Get(ctx, "TXN-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.MetaString(domain.MetaRecipientID) != "bob" {
		t.Errorf("stored metadata changed through a returned copy: %v", again.Metadata)
	}
}

func TestTransactionRepositoryListByOwnerNewestFirst(t *testing.T) {
	repo := NewTransactionRepository()
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 3; i++ {
		tx := &domain.Transaction{
			ReferenceID: "TXN-" + string(rune('a'+i)),
			OwnerID:     "owner-1",
			Kind:        domain.KindDeposit,
			Currency:    "UGX",
			Amount:      decimal.NewFromInt(int64(i + 1)),
			Status:      domain.StatusPending,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
			UpdatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(ctx, tx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	txs, err := repo.ListByOwner(ctx, "owner-1", 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].ReferenceID != "TXN-c" || txs[1].ReferenceID != "TXN-b" {
		t.Errorf("expected newest first, got %s then %s", txs[0].ReferenceID, txs[1].ReferenceID)
	}
}

func TestTransactionRepositoryListPendingOlderThan(t *testing.T) {
	repo := NewTransactionRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	old := &domain.Transaction{
		ReferenceID: "TXN-old", OwnerID: "owner-1", Kind: domain.KindWithdrawal,
		Currency: "UGX", Amount: decimal.NewFromInt(1), Status: domain.StatusPending,
		CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour),
	}
	fresh := &domain.Transaction{
		ReferenceID: "TXN-fresh", OwnerID: "owner-1", Kind: domain.KindWithdrawal,
		Currency: "UGX", Amount: decimal.NewFromInt(1), Status: domain.StatusPending,
		CreatedAt: now, UpdatedAt: now,
	}
	done := &domain.Transaction{
		ReferenceID: "TXN-done", OwnerID: "owner-1", Kind: domain.KindWithdrawal,
		Currency: "UGX", Amount: decimal.NewFromInt(1), Status: domain.StatusCompleted,
		CreatedAt: now.Add(-time.Hour), UpdatedAt: now,
	}
	for _, tx := range []*domain.Transaction{old, fresh, done} {
		if err := repo.Create(ctx, tx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	txs, err := repo.ListPendingOlderThan(ctx, now.Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 || txs[0].ReferenceID != "TXN-old" {
		t.Errorf("expected only TXN-old, got %+v", txs)
	}
}
