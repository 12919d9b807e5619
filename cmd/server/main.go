package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/mobiwallet/ledger/internal/adapter/http"
	"github.com/mobiwallet/ledger/internal/adapter/http/handler"
	"github.com/mobiwallet/ledger/internal/adapter/repository/memory"
	postgresRepo "github.com/mobiwallet/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/mobiwallet/ledger/internal/adapter/repository/redis"
	"github.com/mobiwallet/ledger/internal/domain"
	"github.com/mobiwallet/ledger/internal/gateway"
	"github.com/mobiwallet/ledger/internal/infrastructure/clock"
	"github.com/mobiwallet/ledger/internal/infrastructure/config"
	"github.com/mobiwallet/ledger/internal/infrastructure/logger"
	"github.com/mobiwallet/ledger/internal/infrastructure/metrics"
	"github.com/mobiwallet/ledger/internal/infrastructure/postgres"
	"github.com/mobiwallet/ledger/internal/infrastructure/redis"
	"github.com/mobiwallet/ledger/internal/usecase"
)

func resolveMigrationsPath() string {
	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		return path
	}
	return "migrations"
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	var (
		wallets      usecase.WalletRepository
		transactions usecase.TransactionRepository
		retrier      usecase.Retrier
		cache        usecase.Cache
		idempotency  usecase.IdempotencyStore
		health       *handler.HealthHandler
	)

	switch cfg.StorageBackend {
	case "memory":
		log.Warn().Msg("using in-memory storage, state is lost on restart")
		wallets = memory.NewWalletRepository()
		transactions = memory.NewTransactionRepository()
		health = handler.NewHealthHandler(nil, nil)

	default:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pool.Close()
		log.Info().Msg("connected to postgres")

		if err := postgres.RunMigrations(cfg.DatabaseURL, resolveMigrationsPath()); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}

		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		wallets = postgresRepo.NewWalletRepository(pool)
		transactions = postgresRepo.NewTransactionRepository(pool)
		retrier = postgresRepo.NewRetrier(log)
		cache = redisRepo.NewCache(redisClient)
		idempotency = redisRepo.NewIdempotencyStore(redisClient)
		health = handler.NewHealthHandler(pool, redisClient)
	}

	m := metrics.New()

	settlementGateway := gateway.NewMockGateway(log)
	settlementGateway.FailureRate = cfg.GatewayFailureRate
	settlementGateway.MinLatency = cfg.GatewayMinLatency
	settlementGateway.MaxLatency = cfg.GatewayMaxLatency

	writer := usecase.NewLedgerWriter(wallets, retrier)
	journal := usecase.NewJournal(transactions, postgresRepo.NewULIDGenerator(), retrier, cache)
	orchestrator := usecase.NewOrchestrator(writer, journal, settlementGateway, clock.NewTimerScheduler(), usecase.OrchestratorConfig{
		SettlementDelay:   cfg.SettlementDelay,
		SettlementTimeout: cfg.SettlementTimeout,
		FeePolicy:         domain.DefaultFeePolicy(),
	}, log, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		FlowHandler:        handler.NewFlowHandler(orchestrator),
		TransactionHandler: handler.NewTransactionHandler(orchestrator),
		WalletHandler:      handler.NewWalletHandler(orchestrator),
		HealthHandler:      health,
		IdempotencyStore:   idempotency,
		Metrics:            m,
		Logger:             log,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("backend", cfg.StorageBackend).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
