package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/cardledger/internal/adapter/http/handler"
	"github.com/iho/cardledger/internal/adapter/http/middleware"
	"github.com/iho/cardledger/internal/infrastructure/auth"
	"github.com/iho/cardledger/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	CardHandler     *handler.CardHandler
	PurchaseHandler *handler.PurchaseHandler
	FXRateHandler   *handler.FXRateHandler
	HealthHandler   *handler.HealthHandler

	Logger zerolog.Logger

	// Optional
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
	JWTManager     *auth.JWTManager
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager, cfg.Metrics))
		}

		// Cards
		r.Route("/cards", func(r chi.Router) {
			r.Post("/", cfg.CardHandler.Create)
			r.Route("/{cardID}", func(r chi.Router) {
				r.Get("/", cfg.CardHandler.Get)
				r.Get("/total-spend", cfg.CardHandler.TotalSpend)
				r.Get("/available-balance", cfg.CardHandler.AvailableBalance)
				r.Get("/reconcile", cfg.CardHandler.Reconcile)
				r.Get("/purchases", cfg.PurchaseHandler.ListByCard)
				r.With(middleware.IdempotencyKey).Post("/purchases", cfg.PurchaseHandler.Create)
			})
		})

		// Purchases
		r.Get("/purchases/{purchaseID}", cfg.PurchaseHandler.Get)

		// FX rates
		r.Get("/fx-rates", cfg.FXRateHandler.List)
	})

	return r
}
