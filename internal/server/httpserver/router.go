package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/cool4zbl/build-redis-from-scratch/internal/server/httpserver/handler"
	"github.com/cool4zbl/build-redis-from-scratch/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Metrics is served on /metrics. Nil serves 404.
	Metrics *metric.Registry

	// Stats feeds /stats.
	Stats handler.StatsSource

	// Ready reports whether the RESP listener is accepting. Nil means always ready.
	Ready func() bool

	// Logger for request logging.
	Logger *slog.Logger

	// RateLimit is the per-IP request rate; 0 disables limiting.
	RateLimit int
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Logger:    slog.Default(),
		RateLimit: 100,
	}
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := handler.New(cfg.Stats, cfg.Ready, logger)

	mux := http.NewServeMux()
	mux.Handle("GET /health", h)
	mux.Handle("GET /ready", h)
	mux.Handle("GET /stats", h)
	mux.Handle("GET /version", h)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	// Order: Recover -> RequestID -> RateLimit -> AccessLog -> mux
	middlewares := []Middleware{Recover(logger), RequestID()}
	if cfg.RateLimit > 0 {
		middlewares = append(middlewares, RateLimit(cfg.RateLimit))
	}
	middlewares = append(middlewares, AccessLog(logger))

	return Chain(mux, middlewares...)
}
