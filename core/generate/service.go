// Package generate orchestrates QR encoding and rendering: it assigns
// artifact identifiers, offloads CPU-bound rendering to a bounded worker
// pool, and hands finished artifacts to the cache.
package generate

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/qrgen/core/artifact"
	"github.com/dmitrymomot/qrgen/core/logger"
	"github.com/dmitrymomot/qrgen/core/metrics"
	"github.com/dmitrymomot/qrgen/core/qr"
)

// Config holds generation service configuration.
type Config struct {
	RenderWorkers int `env:"QR_RENDER_WORKERS" envDefault:"4"`
}

// Params describes one generation request. Zero values fall back to the
// service defaults: PNG, scale 10, level M, black on white, square modules.
// Border is taken literally; zero means no quiet zone.
type Params struct {
	Data      string
	Format    qr.Format
	Level     qr.Level
	Size      int
	Border    int
	FillColor string
	BackColor string
	Style     qr.Shape
}

func (p *Params) applyDefaults() {
	if p.Format == "" {
		p.Format = qr.FormatPNG
	}
	if p.Level == "" {
		p.Level = qr.LevelM
	}
	if p.Size <= 0 {
		p.Size = 10
	}
	if p.FillColor == "" {
		p.FillColor = "black"
	}
	if p.BackColor == "" {
		p.BackColor = "white"
	}
	if p.Style == "" {
		p.Style = qr.ShapeSquare
	}
}

// Service owns artifact creation. It is safe for concurrent use.
type Service struct {
	cache   *artifact.Cache
	pool    *Pool
	metrics metrics.Recorder
	log     *slog.Logger
	now     func() time.Time
	newID   func() string
}

// Option configures a Service.
type Option func(*Service)

// WithPool sets a pre-built render pool.
func WithPool(pool *Pool) Option {
	return func(s *Service) {
		if pool != nil {
			s.pool = pool
		}
	}
}

// WithWorkers sets the render pool size.
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.pool = NewPool(n)
	}
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(rec metrics.Recorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithClock overrides the timestamp source. Primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides artifact id generation. Primarily for tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New creates a Service writing into cache.
func New(cache *artifact.Cache, opts ...Option) *Service {
	s := &Service{
		cache:   cache,
		metrics: metrics.Noop{},
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pool == nil {
		s.pool = NewPool(DefaultRenderWorkers)
	}
	return s
}

// NewFromConfig creates a Service from configuration. Additional options
// override config values.
func NewFromConfig(cfg Config, cache *artifact.Cache, opts ...Option) *Service {
	allOpts := append([]Option{WithWorkers(cfg.RenderWorkers)}, opts...)
	return New(cache, allOpts...)
}

// Generate encodes and renders one QR code, caches the artifact, and
// returns it. Encode and render run on the worker pool; the caller blocks
// only on its own job.
func (s *Service) Generate(ctx context.Context, p Params) (*artifact.Artifact, error) {
	start := time.Now()
	p.applyDefaults()
	id := s.newID()

	data, err := s.pool.Submit(ctx, func() ([]byte, error) {
		matrix, err := qr.Encode(p.Data, p.Level)
		if err != nil {
			return nil, err
		}
		return qr.Render(matrix, qr.RenderOptions{
			Format:    p.Format,
			Scale:     p.Size,
			Border:    p.Border,
			FillColor: p.FillColor,
			BackColor: p.BackColor,
			Shape:     p.Style,
		})
	})
	if err != nil {
		s.log.ErrorContext(ctx, "qr generation failed",
			logger.ArtifactID(id),
			logger.Count("data_length", len(p.Data)),
			logger.Error(err))
		return nil, err
	}

	a := &artifact.Artifact{
		ID:        id,
		Data:      p.Data,
		Format:    p.Format,
		Level:     p.Level,
		Size:      p.Size,
		Border:    p.Border,
		Bytes:     data,
		CreatedAt: s.now(),
	}
	s.cache.Put(a)

	s.metrics.IncGenerated(string(a.Format))
	s.metrics.ObserveGenerateDuration(time.Since(start).Seconds())

	s.log.InfoContext(ctx, "qr code generated",
		logger.ArtifactID(a.ID),
		logger.Format(string(a.Format)),
		logger.Count("file_size", a.SizeBytes()),
		logger.Elapsed(start))

	return a, nil
}

// GenerateBatch processes items in order with shared params. Each item's
// render still goes through the worker pool. The first failure aborts the
// whole batch; there is no partial-success contract.
func (s *Service) GenerateBatch(ctx context.Context, items []string, p Params) ([]*artifact.Artifact, error) {
	results := make([]*artifact.Artifact, 0, len(items))
	for _, item := range items {
		params := p
		params.Data = item

		a, err := s.Generate(ctx, params)
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, nil
}

// Preview returns the base64 transcoding of the rendered bytes for inline
// response embedding.
func (s *Service) Preview(a *artifact.Artifact) string {
	return base64.StdEncoding.EncodeToString(a.Bytes)
}

// Healthcheck exercises the full encode-render-cache path with a probe
// payload and removes the probe so it does not accumulate.
func (s *Service) Healthcheck(ctx context.Context) error {
	a, err := s.Generate(ctx, Params{Data: "health-check-test", Border: 4})
	if err != nil {
		return err
	}
	s.cache.Remove(a.ID)
	return nil
}

// Close drains the render pool.
func (s *Service) Close() {
	s.pool.Close()
}
