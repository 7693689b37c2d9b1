package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/adapter/http/handler"
	"github.com/iho/pocketledger/internal/adapter/http/middleware"
	"github.com/iho/pocketledger/internal/infrastructure/metrics"
	"github.com/iho/pocketledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler        *handler.AuthHandler
	TransactionHandler *handler.TransactionHandler
	SummaryHandler     *handler.SummaryHandler
	ReportHandler      *handler.ReportHandler
	HealthHandler      *handler.HealthHandler

	TokenVerifier middleware.TokenVerifier
	// RateLimiter guards the auth endpoints. Nil disables it.
	RateLimiter *middleware.RateLimiter
	// IdempotencyStore enables Idempotency-Key handling on POST. Nil
	// disables it.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	Metrics *metrics.Metrics
	// MetricsHandler serves /metrics. Nil leaves the route out.
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	idempotent := func(next http.Handler) http.Handler { return next }
	if cfg.IdempotencyStore != nil {
		idempotent = middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if cfg.RateLimiter != nil {
				r.Use(cfg.RateLimiter.Limit)
			}

			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/logout", cfg.AuthHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
			r.Use(idempotent)

			r.Get("/me", cfg.AuthHandler.Me)
			r.Put("/me", cfg.AuthHandler.UpdateMe)

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", cfg.TransactionHandler.List)
				r.Post("/", cfg.TransactionHandler.Append)
				r.Put("/", cfg.TransactionHandler.ReplaceAll)
				r.Get("/recent", cfg.TransactionHandler.Recent)
				r.Put("/{id}", cfg.TransactionHandler.Update)
				r.Delete("/{id}", cfg.TransactionHandler.Delete)
			})

			r.Route("/summary", func(r chi.Router) {
				r.Get("/", cfg.SummaryHandler.Summary)
				r.Get("/monthly", cfg.SummaryHandler.Monthly)
				r.Get("/categories", cfg.SummaryHandler.Categories)
			})

			r.Get("/calendar", cfg.SummaryHandler.Calendar)
			r.Get("/calendar/{date}", cfg.SummaryHandler.Day)

			r.Get("/report.pdf", cfg.ReportHandler.Download)
		})
	})

	return r
}
