package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"idacli/internal/config"
	"idacli/internal/middleware"
)

// NewRouter builds the HTTP router with the full middleware chain and all
// API routes.
func NewRouter(cfg *config.Config, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.Security.AllowedOrigins,
		Logger:         logger,
	}))
	r.Use(middleware.Compress(5))
	r.Use(middleware.Metrics)

	if cfg.Security.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst, logger)
		r.Use(limiter.Handler)
	}

	analyze := NewAnalyzeHandler(cfg, logger)
	health := NewHealthHandler(logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Post("/analyze", analyze.Analyze)
		r.Get("/health", health.HealthCheck)
		r.Get("/health/live", health.LivenessCheck)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
