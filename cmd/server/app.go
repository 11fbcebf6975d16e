package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/cardledger/internal/adapter/http"
	"github.com/iho/cardledger/internal/adapter/http/handler"
	"github.com/iho/cardledger/internal/adapter/http/middleware"
	"github.com/iho/cardledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/cardledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cardledger/internal/adapter/repository/redis"
	"github.com/iho/cardledger/internal/infrastructure/auth"
	"github.com/iho/cardledger/internal/infrastructure/config"
	"github.com/iho/cardledger/internal/infrastructure/eventpublisher"
	"github.com/iho/cardledger/internal/infrastructure/fxrates"
	"github.com/iho/cardledger/internal/infrastructure/metrics"
	"github.com/iho/cardledger/internal/infrastructure/postgres"
	"github.com/iho/cardledger/internal/infrastructure/redis"
	"github.com/iho/cardledger/internal/usecase"
)

// storage is one wired storage driver.
type storage struct {
	txManager   usecase.TransactionManager
	cards       usecase.CardRepository
	entries     usecase.LedgerEntryRepository
	projections usecase.SpendProjectionRepository
	outbox      usecase.OutboxRepository
	retrier     usecase.Retrier
	checks      []handler.HealthCheck

	// inProcessRelay drains the outbox inside the server. Only the memory
	// driver needs it; Postgres deployments run cmd/relay.
	inProcessRelay bool

	close func()
}

func openStorage(ctx context.Context, cfg *config.Config, l zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return openMemory(cfg), nil
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, l)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func openMemory(cfg *config.Config) *storage {
	store := memory.NewStore(cfg.LockTimeout)
	return &storage{
		txManager:      memory.NewTxManager(store),
		cards:          memory.NewCardRepository(store),
		entries:        memory.NewLedgerEntryRepository(store),
		projections:    memory.NewSpendProjectionRepository(store),
		outbox:         memory.NewOutboxRepository(store),
		inProcessRelay: true,
		close:          func() {},
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, l zerolog.Logger) (*storage, error) {
	pool, err := postgres.ConnectWithRetry(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	}, cfg.StartupMaxRetries, l)
	if err != nil {
		return nil, err
	}
	l.Info().Msg("connected to postgres")

	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, l); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &storage{
		txManager:   postgresRepo.NewTxManager(pool),
		cards:       postgresRepo.NewCardRepository(pool, cfg.LockTimeout),
		entries:     postgresRepo.NewLedgerEntryRepository(pool),
		projections: postgresRepo.NewSpendProjectionRepository(pool),
		outbox:      postgresRepo.NewOutboxRepository(pool),
		retrier:     postgresRepo.NewRetrier(l),
		checks:      []handler.HealthCheck{{Name: "postgres", Check: pool.Ping}},
		close:       pool.Close,
	}, nil
}

// app is the wired HTTP service.
type app struct {
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
	relay       *eventpublisher.EventPublisher
	logger      zerolog.Logger
	closers     []func()
}

func newApp(ctx context.Context, cfg *config.Config, l zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	rates, err := fxrates.LoadFile(cfg.FXRatesPath)
	if err != nil {
		return nil, err
	}
	l.Info().Strs("currencies", rates.Currencies()).Msg("fx rates loaded")

	store, err := openStorage(ctx, cfg, l)
	if err != nil {
		return nil, err
	}
	a := &app{logger: l, closers: []func(){store.close}}

	m := metrics.New(reg)
	checks := store.checks

	var cache usecase.CardCache
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		cache = redisRepo.NewCardCache(client, cfg.CardCacheTTL)
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
		l.Info().Msg("card cache enabled")
	}

	ids := postgresRepo.NewUUIDGenerator()
	ledgerOpts := []usecase.LedgerOption{
		usecase.WithMetrics(m),
		usecase.WithTransactionTimeout(cfg.TxTimeout),
	}
	if store.retrier != nil {
		ledgerOpts = append(ledgerOpts, usecase.WithRetrier(store.retrier))
	}

	cards := usecase.NewCardUseCase(store.cards, cache, ids)
	ledger := usecase.NewLedgerUseCase(store.txManager, store.cards, store.entries, store.projections, store.outbox, ids, ledgerOpts...)
	purchases := usecase.NewPurchaseUseCase(ledger, cards, store.entries, rates)
	balances := usecase.NewBalanceUseCase(cards, store.projections, rates)
	reconciler := usecase.NewReconciliationUseCase(store.cards, store.entries, store.projections)

	routerCfg := httpAdapter.RouterConfig{
		CardHandler:     handler.NewCardHandler(cards, balances, reconciler),
		PurchaseHandler: handler.NewPurchaseHandler(purchases),
		FXRateHandler:   handler.NewFXRateHandler(rates),
		HealthHandler:   handler.NewHealthHandler(checks...),
		Logger:          l,
		Metrics:         m,
		MetricsHandler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}
	if cfg.RateLimitRPS > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)
		routerCfg.RateLimiter = a.rateLimiter
	}
	if cfg.AuthEnabled {
		routerCfg.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	}
	a.handler = httpAdapter.NewRouter(routerCfg)

	if store.inProcessRelay {
		a.relay = eventpublisher.NewEventPublisher(eventpublisher.Config{
			Outbox:    store.outbox,
			Publisher: eventpublisher.NewLogPublisher(l),
			Logger:    l,
			Metrics:   m,
			BatchSize: cfg.OutboxBatchSize,
			Interval:  cfg.OutboxPollInterval,
		})
	}

	return a, nil
}

// startBackground runs the in-process relay and the rate limiter cleanup
// until ctx is cancelled.
func (a *app) startBackground(ctx context.Context, cleanupEvery time.Duration) {
	if a.relay != nil {
		go func() {
			if err := a.relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error().Err(err).Msg("outbox relay stopped")
			}
		}()
	}

	if a.rateLimiter != nil {
		go func() {
			ticker := time.NewTicker(cleanupEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					a.rateLimiter.CleanupLimiters()
				}
			}
		}()
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
