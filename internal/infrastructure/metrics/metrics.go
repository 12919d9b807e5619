package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Flow metrics
	FlowsStarted     *prometheus.CounterVec
	FlowsRejected    *prometheus.CounterVec
	FlowsCancelled   prometheus.Counter
	SettlementsTotal *prometheus.CounterVec
	SettlementTime   prometheus.Histogram

	// Compensation metrics
	CompensationsTotal *prometheus.CounterVec

	// StuckTransactions is the operator alert channel for transactions
	// whose compensating refund failed and which need manual reconciliation.
	StuckTransactions prometheus.Counter

	// Wallet metrics
	WalletAdjustments *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Storage metrics
	StorageRetries *prometheus.CounterVec
	StorageErrors  *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec
}

// New creates and registers all metrics with the default registry.
func New() *Metrics {
	return &Metrics{
		FlowsStarted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_flows_started_total",
				Help: "Total number of flows started, by kind",
			},
			[]string{"kind"},
		),
		FlowsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_flows_rejected_total",
				Help: "Total number of flows rejected synchronously, by reason",
			},
			[]string{"kind", "reason"},
		),
		FlowsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_flows_cancelled_total",
			Help: "Total number of flows cancelled before settlement",
		}),
		SettlementsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_settlements_total",
				Help: "Settlement outcomes, by flow kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		SettlementTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_settlement_duration_seconds",
			Help:    "Time from flow start to settlement outcome",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		CompensationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_compensations_total",
				Help: "Compensating refunds applied, by flow kind",
			},
			[]string{"kind"},
		),
		StuckTransactions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_stuck_transactions_total",
			Help: "Transactions whose compensating refund failed; funds in limbo",
		}),
		WalletAdjustments: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_wallet_adjustments_total",
				Help: "Balance adjustments applied, by direction",
			},
			[]string{"direction"},
		),
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		StorageRetries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_storage_retries_total",
				Help: "Transient storage errors retried",
			},
			[]string{"operation"},
		),
		StorageErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_storage_errors_total",
				Help: "Storage errors after retry exhaustion",
			},
			[]string{"operation"},
		),
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),
	}
}
