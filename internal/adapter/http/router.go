package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mobiwallet/ledger/internal/adapter/http/handler"
	"github.com/mobiwallet/ledger/internal/adapter/http/middleware"
	"github.com/mobiwallet/ledger/internal/infrastructure/metrics"
	"github.com/mobiwallet/ledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	FlowHandler        *handler.FlowHandler
	TransactionHandler *handler.TransactionHandler
	WalletHandler      *handler.WalletHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	Metrics            *metrics.Metrics
	Logger             zerolog.Logger
	RateLimitRPS       float64
	RateLimitBurst     int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Flows
		r.Post("/deposits", cfg.FlowHandler.Deposit)
		r.Post("/withdrawals", cfg.FlowHandler.Withdraw)
		r.Post("/transfers", cfg.FlowHandler.Transfer)
		r.Post("/trades", cfg.FlowHandler.Trade)
		r.Post("/airtime", cfg.FlowHandler.Airtime)

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/stuck", cfg.TransactionHandler.ListStuck)
			r.Get("/{ref}", cfg.TransactionHandler.Get)
			r.Post("/{ref}/cancel", cfg.TransactionHandler.Cancel)
		})

		// Owners
		r.Route("/owners/{id}", func(r chi.Router) {
			r.Get("/transactions", cfg.TransactionHandler.ListByOwner)
			r.Get("/wallets/{currency}", cfg.WalletHandler.Get)
		})
	})

	return r
}
