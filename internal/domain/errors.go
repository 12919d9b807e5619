package domain

import "errors"

var (
	// Wallet errors
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrVersionConflict   = errors.New("wallet version conflict")

	// Transaction errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidTransition   = errors.New("invalid transaction status transition")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrSameOwner           = errors.New("cannot transfer to the same owner")
	ErrCurrencyMismatch    = errors.New("currency mismatch")
	ErrFeeTooLow           = errors.New("fee below the required minimum")

	// Infrastructure errors
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrStuckTransaction marks a compensating refund that itself failed.
	// The transaction stays pending until an operator reconciles it; it must
	// never be reported as failed or silently dropped.
	ErrStuckTransaction = errors.New("stuck transaction: compensation failed, funds in limbo")
)
