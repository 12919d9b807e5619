package usecase

import "time"

const (
	// DefaultSettlementDelay simulates the confirmation latency of the
	// external provider before a settlement outcome is known.
	DefaultSettlementDelay = 3 * time.Second

	// DefaultSettlementTimeout bounds how long a settlement may stay
	// unresolved; expiry counts as a failure and drives compensation.
	DefaultSettlementTimeout = 30 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour

	// TerminalTransactionTTL is the cache lifetime for transactions in a
	// terminal state. Terminal states are final, so cached copies never go
	// stale.
	TerminalTransactionTTL = time.Hour
)
