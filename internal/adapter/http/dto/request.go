package dto

import (
	"github.com/shopspring/decimal"

	"github.com/mobiwallet/ledger/internal/usecase"
)

// DepositRequest represents a request to start a deposit.
type DepositRequest struct {
	OwnerID     string          `json:"owner_id"`
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	Description string          `json:"description,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *DepositRequest) ToUseCaseInput() usecase.DepositInput {
	return usecase.DepositInput{
		OwnerID:     r.OwnerID,
		Currency:    r.Currency,
		Amount:      r.Amount,
		Fee:         r.Fee,
		Description: r.Description,
		Metadata:    r.Metadata,
	}
}

// WithdrawalRequest represents a request to start a withdrawal.
type WithdrawalRequest struct {
	OwnerID     string          `json:"owner_id"`
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	Description string          `json:"description,omitempty"`
	Destination map[string]any  `json:"destination,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *WithdrawalRequest) ToUseCaseInput() usecase.WithdrawalInput {
	return usecase.WithdrawalInput{
		OwnerID:     r.OwnerID,
		Currency:    r.Currency,
		Amount:      r.Amount,
		Fee:         r.Fee,
		Description: r.Description,
		Destination: r.Destination,
	}
}

// TransferRequest represents a request to start a transfer.
type TransferRequest struct {
	OwnerID     string          `json:"owner_id"`
	RecipientID string          `json:"recipient_id"`
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	Description string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		OwnerID:     r.OwnerID,
		RecipientID: r.RecipientID,
		Currency:    r.Currency,
		Amount:      r.Amount,
		Fee:         r.Fee,
		Description: r.Description,
	}
}

// TradeRequest represents a request to start a crypto trade.
type TradeRequest struct {
	OwnerID      string          `json:"owner_id"`
	SellCurrency string          `json:"sell_currency"`
	BuyCurrency  string          `json:"buy_currency"`
	SellAmount   decimal.Decimal `json:"sell_amount"`
	BuyAmount    decimal.Decimal `json:"buy_amount"`
	Fee          decimal.Decimal `json:"fee"`
	Description  string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *TradeRequest) ToUseCaseInput() usecase.TradeInput {
	return usecase.TradeInput{
		OwnerID:      r.OwnerID,
		SellCurrency: r.SellCurrency,
		BuyCurrency:  r.BuyCurrency,
		SellAmount:   r.SellAmount,
		BuyAmount:    r.BuyAmount,
		Fee:          r.Fee,
		Description:  r.Description,
	}
}

// AirtimeRequest represents a request to start an airtime purchase.
type AirtimeRequest struct {
	OwnerID     string          `json:"owner_id"`
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	PhoneNumber string          `json:"phone_number"`
	Description string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AirtimeRequest) ToUseCaseInput() usecase.AirtimeInput {
	return usecase.AirtimeInput{
		OwnerID:     r.OwnerID,
		Currency:    r.Currency,
		Amount:      r.Amount,
		Fee:         r.Fee,
		PhoneNumber: r.PhoneNumber,
		Description: r.Description,
	}
}
