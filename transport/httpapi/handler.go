package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/qrgen/core/artifact"
	"github.com/dmitrymomot/qrgen/core/background"
	"github.com/dmitrymomot/qrgen/core/generate"
	"github.com/dmitrymomot/qrgen/core/health"
	"github.com/dmitrymomot/qrgen/core/replicate"
)

// Request body and payload limits.
const (
	maxBodyBytes   = 1 << 20 // 1 MB
	maxUploadBytes = 5 << 20 // 5 MB multipart uploads
	maxBatchSize   = 100
	maxUploadLines = 100
)

// Handler wires the generation service and its supporting infrastructure
// into HTTP endpoints.
type Handler struct {
	svc        *generate.Service
	cache      *artifact.Cache
	replicator *replicate.Replicator
	jobs       *background.Executor
	checker    *health.Checker
	metrics    http.Handler
	log        *slog.Logger
	cors       CORSConfig
	version    string
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets the logger for request logging and handler errors.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithReplication attaches the replicator and the executor that runs
// uploads after the response is written. Both must be set for replication
// to happen.
func WithReplication(r *replicate.Replicator, jobs *background.Executor) Option {
	return func(h *Handler) {
		h.replicator = r
		h.jobs = jobs
	}
}

// WithHealthChecker mounts /health endpoints backed by the checker.
func WithHealthChecker(c *health.Checker) Option {
	return func(h *Handler) {
		h.checker = c
	}
}

// WithMetricsHandler mounts the given handler at /metrics.
func WithMetricsHandler(m http.Handler) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithCORS overrides the default permissive CORS policy.
func WithCORS(cfg CORSConfig) Option {
	return func(h *Handler) {
		h.cors = cfg
	}
}

// WithVersion sets the version string reported by the index endpoint.
func WithVersion(v string) Option {
	return func(h *Handler) {
		h.version = v
	}
}

// New creates a Handler around the generation service and artifact cache.
func New(svc *generate.Service, cache *artifact.Cache, opts ...Option) *Handler {
	h := &Handler{
		svc:     svc,
		cache:   cache,
		log:     slog.Default(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the chi router with all routes and middleware attached.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(RequestLogger(h.log, "/health", "/health/ready", "/health/live", "/metrics"))
	r.Use(chimw.Recoverer)
	r.Use(CORS(h.cors))

	r.Get("/", h.handleIndex)

	r.Route("/qr", func(r chi.Router) {
		r.Post("/generate", h.handleGenerate)
		r.Post("/batch", h.handleBatch)
		r.Post("/upload", h.handleUpload)
		r.Post("/wifi", h.handleWiFi)
		r.Post("/vcard", h.handleVCard)
		r.Post("/url", h.handleURL)
		r.Get("/download/{id}", h.handleDownload)
		r.Get("/stats", h.handleStats)
	})

	r.Get("/health", h.handleHealth)
	r.Get("/health/ready", h.handleReady)
	r.Get("/health/live", h.handleLive)

	if h.metrics != nil {
		r.Handle("/metrics", h.metrics)
	}

	return r
}

// scheduleReplication hands the artifact to the background executor. A full
// queue only drops the upload, never the request.
func (h *Handler) scheduleReplication(a *artifact.Artifact) {
	if h.replicator == nil || h.jobs == nil {
		return
	}
	_ = h.jobs.Enqueue("replicate:"+a.ID, func(ctx context.Context) error {
		h.replicator.Replicate(ctx, a)
		return nil
	})
}
