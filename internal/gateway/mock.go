// Package gateway holds settlement provider integrations. Only the
// simulated provider ships here; real providers implement usecase.Gateway
// the same way.
package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mobiwallet/ledger/internal/domain"
)

// MockGateway simulates an external settlement provider. It sleeps for a
// configurable latency, then fails a configurable fraction of settlements.
type MockGateway struct {
	// FailureRate is the probability of failure (0.0 to 1.0).
	FailureRate float64
	// MinLatency and MaxLatency bound the simulated provider delay.
	MinLatency time.Duration
	MaxLatency time.Duration

	logger zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockGateway creates a MockGateway with a 10% failure rate and
// sub-second latency.
func NewMockGateway(logger zerolog.Logger) *MockGateway {
	return &MockGateway{
		FailureRate: 0.1,
		MinLatency:  100 * time.Millisecond,
		MaxLatency:  800 * time.Millisecond,
		logger:      logger,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Settle simulates confirming a transaction with the provider. The latency
// respects ctx; an expired context reads as a failed settlement upstream.
func (g *MockGateway) Settle(ctx context.Context, tx *domain.Transaction) error {
	g.mu.Lock()
	latency := g.MinLatency
	if g.MaxLatency > g.MinLatency {
		latency += time.Duration(g.rng.Int63n(int64(g.MaxLatency - g.MinLatency)))
	}
	fail := g.rng.Float64() < g.FailureRate
	g.mu.Unlock()

	select {
	case <-time.After(latency):
	case <-ctx.Done():
		return fmt.Errorf("gateway call canceled: %w", ctx.Err())
	}

	if fail {
		g.logger.Debug().
			Str("reference_id", tx.ReferenceID).
			Str("kind", string(tx.Kind)).
			Msg("simulated settlement failure")
		return fmt.Errorf("gateway temporarily unavailable")
	}

	return nil
}
