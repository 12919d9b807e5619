package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mobiwallet/ledger/internal/adapter/http/dto"
	"github.com/mobiwallet/ledger/internal/usecase"
)

// FlowHandler starts money movement flows.
type FlowHandler struct {
	orchestrator *usecase.Orchestrator
}

// NewFlowHandler creates a new FlowHandler.
func NewFlowHandler(orchestrator *usecase.Orchestrator) *FlowHandler {
	return &FlowHandler{orchestrator: orchestrator}
}

// Deposit starts a deposit flow.
func (h *FlowHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.orchestrator.StartDeposit(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to start deposit", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, dto.TransactionFromDomain(tx))
}

// Withdraw starts a withdrawal flow.
func (h *FlowHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.orchestrator.StartWithdrawal(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to start withdrawal", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, dto.TransactionFromDomain(tx))
}

// Transfer starts a transfer flow.
func (h *FlowHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.orchestrator.StartTransfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to start transfer", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, dto.TransactionFromDomain(tx))
}

// Trade starts a crypto trade flow.
func (h *FlowHandler) Trade(w http.ResponseWriter, r *http.Request) {
	var req dto.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.orchestrator.StartTrade(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to start trade", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, dto.TransactionFromDomain(tx))
}

// Airtime starts an airtime purchase flow.
func (h *FlowHandler) Airtime(w http.ResponseWriter, r *http.Request) {
	var req dto.AirtimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.PhoneNumber == "" {
		writeError(w, http.StatusBadRequest, "missing phone number", "")
		return
	}

	tx, err := h.orchestrator.StartAirtime(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to start airtime purchase", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, dto.TransactionFromDomain(tx))
}
