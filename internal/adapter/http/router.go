package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/shopbook/internal/adapter/http/handler"
	"github.com/iho/shopbook/internal/adapter/http/middleware"
	"github.com/iho/shopbook/internal/infrastructure/auth"
	"github.com/iho/shopbook/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	EntryHandler     *handler.EntryHandler
	StatsHandler     *handler.StatsHandler
	AuthHandler      *handler.AuthHandler
	HealthHandler    *handler.HealthHandler
	JWTManager       *auth.JWTManager
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
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

		// Auth
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthMiddleware(cfg.JWTManager))
				r.Get("/me", cfg.AuthHandler.GetCurrentUser)
			})
		})

		// Everything below requires a valid token
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))

			// Entries
			r.Route("/entries", func(r chi.Router) {
				r.Post("/", cfg.EntryHandler.Create)
				r.Get("/", cfg.EntryHandler.List)
				r.Get("/assigned", cfg.EntryHandler.ListAssigned)
				r.Get("/{id}", cfg.EntryHandler.Get)
				r.Put("/{id}", cfg.EntryHandler.Update)
				r.Delete("/{id}", cfg.EntryHandler.Delete)
				r.Post("/{id}/review", cfg.EntryHandler.Review)
			})

			// Sells
			r.Route("/sells", func(r chi.Router) {
				r.Get("/", cfg.EntryHandler.ListSells)
				r.Get("/{id}/restmoney", cfg.EntryHandler.ListRestMoney)
			})

			// Ledger state
			r.Get("/balance", cfg.EntryHandler.GetBalance)
			r.Get("/stats", cfg.StatsHandler.Get)
		})
	})

	return r
}
