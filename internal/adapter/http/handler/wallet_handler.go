package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mobiwallet/ledger/internal/adapter/http/dto"
	"github.com/mobiwallet/ledger/internal/usecase"
)

// WalletHandler serves balance reads.
type WalletHandler struct {
	orchestrator *usecase.Orchestrator
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(orchestrator *usecase.Orchestrator) *WalletHandler {
	return &WalletHandler{orchestrator: orchestrator}
}

// Get returns the wallet for an owner and currency. A pair that has never
// moved money reads as a zero balance, not a 404.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "id")
	currency := chi.URLParam(r, "currency")
	if ownerID == "" || currency == "" {
		writeError(w, http.StatusBadRequest, "missing owner id or currency", "")
		return
	}

	wallet, err := h.orchestrator.GetBalance(r.Context(), ownerID, currency)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get wallet", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}
