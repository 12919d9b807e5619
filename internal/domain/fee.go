package domain

import "github.com/shopspring/decimal"

// FeePolicy computes the mandatory fees for debit-side flows. Amounts are in
// minor units of the fiat currency.
type FeePolicy struct {
	WithdrawalRate   decimal.Decimal // fraction of the withdrawn amount
	WithdrawalMinFee decimal.Decimal // fee floor
	MinWithdrawal    decimal.Decimal // smallest allowed withdrawal amount
}

// DefaultFeePolicy matches the product defaults: 1.5% withdrawal fee with a
// 2,000 floor, minimum withdrawal 20,000.
func DefaultFeePolicy() FeePolicy {
	return FeePolicy{
		WithdrawalRate:   decimal.NewFromFloat(0.015),
		WithdrawalMinFee: decimal.NewFromInt(2000),
		MinWithdrawal:    decimal.NewFromInt(20000),
	}
}

// WithdrawalFee returns the fee owed for withdrawing amount.
func (p FeePolicy) WithdrawalFee(amount decimal.Decimal) decimal.Decimal {
	fee := amount.Mul(p.WithdrawalRate)
	if fee.LessThan(p.WithdrawalMinFee) {
		return p.WithdrawalMinFee
	}
	return fee
}
