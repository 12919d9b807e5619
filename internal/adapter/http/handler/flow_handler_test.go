package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mobiwallet/ledger/internal/adapter/http/dto"
	"github.com/mobiwallet/ledger/internal/adapter/repository/memory"
	"github.com/mobiwallet/ledger/internal/domain"
	"github.com/mobiwallet/ledger/internal/usecase"
)

type inlineScheduler struct{}

func (inlineScheduler) After(d time.Duration, fn func()) func() {
	fn()
	return func() {}
}

type okGateway struct{}

func (okGateway) Settle(ctx context.Context, tx *domain.Transaction) error { return nil }

type seqGenerator struct{ n int }

func (g *seqGenerator) Generate() string {
	g.n++
	return fmt.Sprintf("TXN%08d", g.n)
}

func newTestOrchestrator(t *testing.T) (*usecase.Orchestrator, *usecase.LedgerWriter) {
	t.Helper()

	writer := usecase.NewLedgerWriter(memory.NewWalletRepository(), nil)
	journal := usecase.NewJournal(memory.NewTransactionRepository(), &seqGenerator{}, nil, nil)

	orchestrator := usecase.NewOrchestrator(writer, journal, okGateway{}, inlineScheduler{}, usecase.OrchestratorConfig{
		SettlementDelay:   time.Millisecond,
		SettlementTimeout: time.Second,
		FeePolicy:         domain.DefaultFeePolicy(),
	}, zerolog.Nop(), nil)

	return orchestrator, writer
}

func TestFlowHandler_Deposit(t *testing.T) {
	orchestrator, _ := newTestOrchestrator(t)
	h := NewFlowHandler(orchestrator)

	body, _ := json.Marshal(dto.DepositRequest{
		OwnerID:  "owner-1",
		Currency: "UGX",
		Amount:   decimal.NewFromInt(50000),
	})

	req := httptest.NewRequest(http.MethodPost, "/deposits", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Kind != "deposit" || resp.OwnerID != "owner-1" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.ReferenceID == "" {
		t.Error("expected a reference id")
	}
}

func TestFlowHandler_DepositInvalidBody(t *testing.T) {
	orchestrator, _ := newTestOrchestrator(t)
	h := NewFlowHandler(orchestrator)

	req := httptest.NewRequest(http.MethodPost, "/deposits", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFlowHandler_WithdrawInsufficientFunds(t *testing.T) {
	orchestrator, _ := newTestOrchestrator(t)
	h := NewFlowHandler(orchestrator)

	body, _ := json.Marshal(dto.WithdrawalRequest{
		OwnerID:  "owner-1",
		Currency: "UGX",
		Amount:   decimal.NewFromInt(50000),
		Fee:      decimal.NewFromInt(2000),
	})

	req := httptest.NewRequest(http.MethodPost, "/withdrawals", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Withdraw(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body)
	}
}

func TestFlowHandler_WithdrawBelowMinimum(t *testing.T) {
	orchestrator, writer := newTestOrchestrator(t)
	if _, err := writer.Credit(context.Background(), "owner-1", "UGX", decimal.NewFromInt(100000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := NewFlowHandler(orchestrator)

	body, _ := json.Marshal(dto.WithdrawalRequest{
		OwnerID:  "owner-1",
		Currency: "UGX",
		Amount:   decimal.NewFromInt(5000),
		Fee:      decimal.NewFromInt(2000),
	})

	req := httptest.NewRequest(http.MethodPost, "/withdrawals", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Withdraw(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body)
	}
}

func TestFlowHandler_Transfer(t *testing.T) {
	orchestrator, writer := newTestOrchestrator(t)
	if _, err := writer.Credit(context.Background(), "alice", "KES", decimal.NewFromInt(10000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := NewFlowHandler(orchestrator)

	body, _ := json.Marshal(dto.TransferRequest{
		OwnerID:     "alice",
		RecipientID: "bob",
		Currency:    "KES",
		Amount:      decimal.NewFromInt(3000),
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Transfer(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body)
	}
}

func TestFlowHandler_AirtimeMissingPhone(t *testing.T) {
	orchestrator, _ := newTestOrchestrator(t)
	h := NewFlowHandler(orchestrator)

	body, _ := json.Marshal(dto.AirtimeRequest{
		OwnerID:  "owner-1",
		Currency: "UGX",
		Amount:   decimal.NewFromInt(5000),
	})

	req := httptest.NewRequest(http.MethodPost, "/airtime", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Airtime(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
