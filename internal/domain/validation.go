package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidOwnerID   = errors.New("invalid owner id")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrAmountTooLarge   = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall   = errors.New("amount below minimum allowed")
	ErrMetadataTooLarge = errors.New("metadata size exceeds limit")
	ErrSameCurrency     = errors.New("trade requires two different currencies")
)

// Validation constants
const (
	MaxOwnerIDLength = 64
	MaxMetadataSize  = 10240 // 10KB
	MaxAmount        = "1000000000000"
)

// Supported wallet currencies: East African fiat plus the traded crypto
// assets.
var validCurrencies = map[string]bool{
	"UGX": true, "KES": true, "TZS": true, "USD": true,
	"BTC": true, "ETH": true, "USDT": true,
}

var cryptoCurrencies = map[string]bool{
	"BTC": true, "ETH": true, "USDT": true,
}

// IsCrypto reports whether currency is one of the traded crypto assets.
func IsCrypto(currency string) bool {
	return cryptoCurrencies[strings.ToUpper(strings.TrimSpace(currency))]
}

// ValidateOwnerID validates an owner identifier.
func ValidateOwnerID(ownerID string) error {
	ownerID = strings.TrimSpace(ownerID)

	if ownerID == "" {
		return fmt.Errorf("%w: owner id cannot be empty", ErrInvalidOwnerID)
	}

	if len(ownerID) > MaxOwnerIDLength {
		return fmt.Errorf("%w: owner id exceeds %d characters", ErrInvalidOwnerID, MaxOwnerIDLength)
	}

	return nil
}

// ValidateCurrency validates a currency code against the supported set.
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a supported currency", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateAmount validates a flow amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateMetadata validates metadata size.
func ValidateMetadata(metadata map[string]any) error {
	if metadata == nil {
		return nil
	}

	// Estimate size (rough approximation)
	size := 0
	for k, v := range metadata {
		size += len(k)
		size += len(fmt.Sprintf("%v", v))
	}

	if size > MaxMetadataSize {
		return fmt.Errorf("%w: metadata size %d bytes exceeds limit of %d bytes", ErrMetadataTooLarge, size, MaxMetadataSize)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const maxPageSize = 100
	const defaultPageSize = 20

	if limit <= 0 {
		limit = defaultPageSize
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
