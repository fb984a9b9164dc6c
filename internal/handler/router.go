package handler

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cs-tungthanh/fcc-microservices/internal/metrics"
	"github.com/cs-tungthanh/fcc-microservices/internal/middleware"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterOptions holds the endpoints shared by both services
type RouterOptions struct {
	Metrics   *metrics.Metrics // nil disables /metrics and instrumentation
	StaticDir string           // served at /public, index.html at /
	Health    Pinger           // nil reports healthy unconditionally
}

// Mounter registers a service's routes
type Mounter interface {
	Routes(r chi.Router)
}

// NewRouter builds the chi router with health, metrics, static files and
// JSON not-found/method-not-allowed responses around the given services.
func NewRouter(opts RouterOptions, services ...Mounter) http.Handler {
	r := chi.NewRouter()

	if opts.Metrics != nil {
		r.Use(middleware.Instrument(opts.Metrics))
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Get("/health", healthHandler(opts.Health))

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/public/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Handle("/public/*", fs)
		index := filepath.Join(opts.StaticDir, "index.html")
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, index)
		})
	}

	for _, svc := range services {
		svc.Routes(r)
	}

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	return r
}

// healthHandler returns service health status
// GET /health
func healthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.PingContext(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}
