package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mobiwallet/ledger/internal/domain"
)

func testTransaction() *domain.Transaction {
	return &domain.Transaction{
		ReferenceID: "TXN-1",
		OwnerID:     "owner-1",
		Kind:        domain.KindDeposit,
		Currency:    "UGX",
		Amount:      decimal.NewFromInt(1000),
		Status:      domain.StatusPending,
	}
}

func TestMockGatewayAlwaysSucceeds(t *testing.T) {
	g := NewMockGateway(zerolog.Nop())
	g.FailureRate = 0
	g.MinLatency = 0
	g.MaxLatency = time.Millisecond

	for i := 0; i < 20; i++ {
		if err := g.Settle(context.Background(), testTransaction()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestMockGatewayAlwaysFails(t *testing.T) {
	g := NewMockGateway(zerolog.Nop())
	g.FailureRate = 1
	g.MinLatency = 0
	g.MaxLatency = time.Millisecond

	if err := g.Settle(context.Background(), testTransaction()); err == nil {
		t.Fatal("expected an error")
	}
}

func TestMockGatewayRespectsContext(t *testing.T) {
	g := NewMockGateway(zerolog.Nop())
	g.FailureRate = 0
	g.MinLatency = time.Minute
	g.MaxLatency = 2 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := g.Settle(ctx, testTransaction())
	if err == nil {
		t.Fatal("expected an error")
	}
	if time.Since(start) > time.Second {
		t.Error("settle must return promptly when the context expires")
	}
}
