package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/mobiwallet/ledger/internal/domain"
	"github.com/mobiwallet/ledger/internal/usecase"
	"github.com/mobiwallet/ledger/internal/usecase/mocks"
)

func newTestJournal() (*usecase.Journal, *mocks.MockTransactionRepository) {
	repo := mocks.NewMockTransactionRepository()
	return usecase.NewJournal(repo, mocks.NewMockIDGenerator(), nil, nil), repo
}

func TestJournal_CreateAndGet(t *testing.T) {
	journal, _ := newTestJournal()
	ctx := context.Background()

	created, err := journal.Create(ctx, usecase.CreateTransactionInput{
		OwnerID:  "owner-1",
		Kind:     domain.KindDeposit,
		Currency: "UGX",
		Amount:   decimal.NewFromInt(5000),
		Fee:      decimal.Zero,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ReferenceID == "" {
		t.Fatal("expected a generated reference id")
	}
	if created.Status != domain.StatusPending {
		t.Errorf("expected pending, got %s", created.Status)
	}

	got, err := journal.Get(ctx, created.ReferenceID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OwnerID != "owner-1" || !got.Amount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("stored record does not match: %+v", got)
	}
}

func TestJournal_CreateRejectsInvalid(t *testing.T) {
	journal, _ := newTestJournal()

	_, err := journal.Create(context.Background(), usecase.CreateTransactionInput{
		OwnerID:  "owner-1",
		Kind:     domain.KindDeposit,
		Currency: "UGX",
		Amount:   decimal.NewFromInt(-1),
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestJournal_GetNotFound(t *testing.T) {
	journal, _ := newTestJournal()

	_, err := journal.Get(context.Background(), "TXN-missing")
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestJournal_Transition(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.TransactionStatus
		to      domain.TransactionStatus
		wantErr bool
	}{
		{"pending to completed", domain.StatusPending, domain.StatusCompleted, false},
		{"pending to failed", domain.StatusPending, domain.StatusFailed, false},
		{"pending to cancelled", domain.StatusPending, domain.StatusCancelled, false},
		{"pending to pending", domain.StatusPending, domain.StatusPending, true},
		{"completed to failed", domain.StatusCompleted, domain.StatusFailed, true},
		{"failed to completed", domain.StatusFailed, domain.StatusCompleted, true},
		{"cancelled to pending", domain.StatusCancelled, domain.StatusPending, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			journal, repo := newTestJournal()
			ctx := context.Background()

			created, err := journal.Create(ctx, usecase.CreateTransactionInput{
				OwnerID:  "owner-1",
				Kind:     domain.KindDeposit,
				Currency: "UGX",
				Amount:   decimal.NewFromInt(100),
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.from != domain.StatusPending {
				if err := repo.UpdateStatus(ctx, created.ReferenceID, tt.from, created.UpdatedAt); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			tx, err := journal.Transition(ctx, created.ReferenceID, tt.to)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tx.Status != tt.to {
				t.Errorf("expected status %s, got %s", tt.to, tx.Status)
			}
		})
	}
}

func TestJournal_TransitionSameStateIsNoOp(t *testing.T) {
	journal, repo := newTestJournal()
	ctx := context.Background()

	created, err := journal.Create(ctx, usecase.CreateTransactionInput{
		OwnerID:  "owner-1",
		Kind:     domain.KindWithdrawal,
		Currency: "UGX",
		Amount:   decimal.NewFromInt(30000),
		Fee:      decimal.NewFromInt(2000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := journal.Transition(ctx, created.ReferenceID, domain.StatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A duplicate settlement callback must not write again or error.
	repo.UpdateStatusFunc = func(ctx context.Context, referenceID string, status domain.TransactionStatus, updatedAt time.Time) error {
		t.Error("repeated transition must not write")
		return nil
	}

	tx, err := journal.Transition(ctx, created.ReferenceID, domain.StatusCompleted)
	if err != nil {
		t.Fatalf("repeated transition must be a no-op, got %v", err)
	}
	if tx.Status != domain.StatusCompleted {
		t.Errorf("expected completed, got %s", tx.Status)
	}
}

func TestJournal_ListByOwnerPagination(t *testing.T) {
	journal, _ := newTestJournal()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := journal.Create(ctx, usecase.CreateTransactionInput{
			OwnerID:  "owner-1",
			Kind:     domain.KindDeposit,
			Currency: "UGX",
			Amount:   decimal.NewFromInt(int64(100 + i)),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	txs, err := journal.ListByOwner(ctx, "owner-1", 3, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 3 {
		t.Errorf("expected 3 transactions, got %d", len(txs))
	}

	txs, err = journal.ListByOwner(ctx, "owner-1", 3, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 2 {
		t.Errorf("expected 2 transactions, got %d", len(txs))
	}
}

func TestJournal_TerminalTransactionsCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockTransactionRepository()
	cache := mocks.NewMockCache(ctrl)
	journal := usecase.NewJournal(repo, mocks.NewMockIDGenerator(), nil, cache)
	ctx := context.Background()

	created, err := journal.Create(ctx, usecase.CreateTransactionInput{
		OwnerID:  "owner-1",
		Kind:     domain.KindDeposit,
		Currency: "UGX",
		Amount:   decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cache.EXPECT().
		Set(gomock.Any(), "tx:"+created.ReferenceID, gomock.Any(), usecase.TerminalTransactionTTL).
		Return(nil)

	completed, err := journal.Transition(ctx, created.ReferenceID, domain.StatusCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Later reads of a terminal record are served from the cache without
	// touching the repository.
	raw, err := json.Marshal(completed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cache.EXPECT().
		Get(gomock.Any(), "tx:"+created.ReferenceID).
		Return(raw, nil)
	repo.GetFunc = func(ctx context.Context, referenceID string) (*domain.Transaction, error) {
		t.Error("repository must not be hit for a cached terminal record")
		return nil, domain.ErrTransactionNotFound
	}

	got, err := journal.Get(ctx, created.ReferenceID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.StatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
}
