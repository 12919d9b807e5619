package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mobiwallet/ledger/internal/adapter/repository/memory"
	"github.com/mobiwallet/ledger/internal/domain"
	"github.com/mobiwallet/ledger/internal/usecase"
	"github.com/mobiwallet/ledger/internal/usecase/mocks"
)

// Stack wires a full ledger over in-memory storage with a hand-driven
// scheduler, so settlement timing is controlled by the test.
type Stack struct {
	Orchestrator *usecase.Orchestrator
	Writer       *usecase.LedgerWriter
	Journal      *usecase.Journal
	Gateway      *mocks.MockGateway
	Scheduler    *mocks.ManualScheduler

	t *testing.T
}

// NewStack creates a ready-to-use ledger stack.
func NewStack(t *testing.T) *Stack {
	t.Helper()

	gateway := mocks.NewMockGateway()
	scheduler := mocks.NewManualScheduler()

	writer := usecase.NewLedgerWriter(memory.NewWalletRepository(), nil)
	journal := usecase.NewJournal(memory.NewTransactionRepository(), mocks.NewMockIDGenerator(), nil, nil)

	orchestrator := usecase.NewOrchestrator(writer, journal, gateway, scheduler, usecase.OrchestratorConfig{
		SettlementDelay:   time.Millisecond,
		SettlementTimeout: time.Second,
		FeePolicy:         domain.DefaultFeePolicy(),
	}, zerolog.Nop(), nil)

	return &Stack{
		Orchestrator: orchestrator,
		Writer:       writer,
		Journal:      journal,
		Gateway:      gateway,
		Scheduler:    scheduler,
		t:            t,
	}
}

// Fund credits an owner's wallet directly, bypassing the flow engine.
func (s *Stack) Fund(ownerID, currency string, amount int64) {
	s.t.Helper()
	if _, err := s.Writer.Credit(context.Background(), ownerID, currency, decimal.NewFromInt(amount)); err != nil {
		s.t.Fatalf("failed to fund %s/%s: %v", ownerID, currency, err)
	}
}

// Balance returns the current available balance for an owner's wallet.
func (s *Stack) Balance(ownerID, currency string) decimal.Decimal {
	s.t.Helper()
	wallet, err := s.Orchestrator.GetBalance(context.Background(), ownerID, currency)
	if err != nil {
		s.t.Fatalf("failed to read balance %s/%s: %v", ownerID, currency, err)
	}
	return wallet.Balance
}

// Status returns the current status of a transaction.
func (s *Stack) Status(referenceID string) domain.TransactionStatus {
	s.t.Helper()
	tx, err := s.Orchestrator.GetTransaction(context.Background(), referenceID)
	if err != nil {
		s.t.Fatalf("failed to read transaction %s: %v", referenceID, err)
	}
	return tx.Status
}
