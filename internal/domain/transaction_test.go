package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		current TransactionStatus
		next    TransactionStatus
		want    bool
	}{
		{"pending to completed", StatusPending, StatusCompleted, true},
		{"pending to failed", StatusPending, StatusFailed, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending to pending", StatusPending, StatusPending, false},
		{"completed to failed", StatusCompleted, StatusFailed, false},
		{"failed to completed", StatusFailed, StatusCompleted, false},
		{"cancelled to pending", StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.current, tt.next); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.current, tt.next, got, tt.want)
			}
		})
	}
}

func TestTransactionStatus_Terminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	for _, s := range []TransactionStatus{StatusCompleted, StatusFailed, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name        string
		amount      decimal.Decimal
		fee         decimal.Decimal
		expectError bool
	}{
		{"valid", decimal.NewFromInt(50000), decimal.NewFromInt(1000), false},
		{"zero fee", decimal.NewFromInt(50000), decimal.Zero, false},
		{"zero amount", decimal.Zero, decimal.Zero, true},
		{"negative amount", decimal.NewFromInt(-1), decimal.Zero, true},
		{"negative fee", decimal.NewFromInt(100), decimal.NewFromInt(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{Amount: tt.amount, Fee: tt.fee}

			err := tx.Validate()

			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestTransaction_TotalDebit(t *testing.T) {
	tx := &Transaction{
		Amount: decimal.NewFromInt(50000),
		Fee:    decimal.NewFromInt(1000),
	}

	if got := tx.TotalDebit(); !got.Equal(decimal.NewFromInt(51000)) {
		t.Errorf("TotalDebit = %s, want 51000", got)
	}
}

func TestTransaction_MetaString(t *testing.T) {
	tx := &Transaction{Metadata: map[string]any{
		MetaRecipientID: "owner-2",
		MetaSellAmount:  42,
	}}

	if got := tx.MetaString(MetaRecipientID); got != "owner-2" {
		t.Errorf("MetaString = %q, want owner-2", got)
	}
	if got := tx.MetaString(MetaSellAmount); got != "" {
		t.Errorf("non-string value should return empty, got %q", got)
	}
	if got := (&Transaction{}).MetaString(MetaRecipientID); got != "" {
		t.Errorf("nil metadata should return empty, got %q", got)
	}
}
