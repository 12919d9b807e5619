package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mobiwallet/ledger/internal/domain"
)

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ReferenceID string          `json:"reference_id"`
	OwnerID     string          `json:"owner_id"`
	Kind        string          `json:"kind"`
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	Status      string          `json:"status"`
	Description string          `json:"description,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(tx *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ReferenceID: tx.ReferenceID,
		OwnerID:     tx.OwnerID,
		Kind:        string(tx.Kind),
		Currency:    tx.Currency,
		Amount:      tx.Amount,
		Fee:         tx.Fee,
		Status:      string(tx.Status),
		Description: tx.Description,
		Metadata:    tx.Metadata,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, tx := range txs {
		result[i] = TransactionFromDomain(tx)
	}
	return result
}

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	OwnerID       string          `json:"owner_id"`
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"balance"`
	LockedBalance decimal.Decimal `json:"locked_balance"`
	Version       int64           `json:"version"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// WalletFromDomain converts a domain wallet to a response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		OwnerID:       w.OwnerID,
		Currency:      w.Currency,
		Balance:       w.Balance,
		LockedBalance: w.LockedBalance,
		Version:       w.Version,
		UpdatedAt:     w.UpdatedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
