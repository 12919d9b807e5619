package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mobiwallet/ledger/internal/adapter/http/dto"
	"github.com/mobiwallet/ledger/internal/usecase"
)

// TransactionHandler serves transaction lookups and cancellation.
type TransactionHandler struct {
	orchestrator *usecase.Orchestrator
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(orchestrator *usecase.Orchestrator) *TransactionHandler {
	return &TransactionHandler{orchestrator: orchestrator}
}

// Get retrieves a transaction by reference id.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if ref == "" {
		writeError(w, http.StatusBadRequest, "missing reference id", "")
		return
	}

	tx, err := h.orchestrator.GetTransaction(r.Context(), ref)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// Cancel aborts a pending transaction before settlement.
func (h *TransactionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if ref == "" {
		writeError(w, http.StatusBadRequest, "missing reference id", "")
		return
	}

	tx, err := h.orchestrator.Cancel(r.Context(), ref)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to cancel transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// ListByOwner lists an owner's transactions, newest first.
func (h *TransactionHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "id")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "missing owner id", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	txs, err := h.orchestrator.ListTransactions(r.Context(), ownerID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}

// ListStuck lists pending transactions older than the settlement window.
// Operator-facing: these need manual reconciliation.
func (h *TransactionHandler) ListStuck(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)

	txs, err := h.orchestrator.ListOverduePending(r.Context(), limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list stuck transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}
