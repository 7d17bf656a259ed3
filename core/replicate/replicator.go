// Package replicate fans generated artifacts out to independent object
// storage providers on a best-effort basis. Provider failures are isolated
// from each other and never surface to the request path.
package replicate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/qrgen/core/artifact"
	"github.com/dmitrymomot/qrgen/core/logger"
	"github.com/dmitrymomot/qrgen/core/metrics"
)

// ErrProviderDisabled marks an upload attempt against a provider that
// failed its initialization probe.
var ErrProviderDisabled = errors.New("replicate: provider disabled")

// DefaultObjectPrefix namespaces artifact objects in every provider.
const DefaultObjectPrefix = "qr-codes"

// Provider is one remote object store. Enabled is decided once during
// initialization probing and never flips afterwards.
type Provider interface {
	Name() string
	Enabled() bool

	// Upload stores the object and returns a time-limited signed URL for
	// read access.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes the object if present.
	Delete(ctx context.Context, key string) error
}

// Outcome records one provider attempt for a single artifact.
type Outcome struct {
	Provider  string
	SignedURL string
	Err       error
}

// Replicator pushes artifacts to its providers sequentially.
type Replicator struct {
	providers []Provider
	prefix    string
	metrics   metrics.Recorder
	log       *slog.Logger
}

// Option configures a Replicator.
type Option func(*Replicator)

// WithObjectPrefix overrides the object key namespace.
func WithObjectPrefix(prefix string) Option {
	return func(r *Replicator) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithLogger sets the replicator logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Replicator) {
		if log != nil {
			r.log = log
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(rec metrics.Recorder) Option {
	return func(r *Replicator) {
		if rec != nil {
			r.metrics = rec
		}
	}
}

// New creates a Replicator over the given providers. Provider order is the
// attempt order.
func New(providers []Provider, opts ...Option) *Replicator {
	r := &Replicator{
		providers: providers,
		prefix:    DefaultObjectPrefix,
		metrics:   metrics.Noop{},
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ObjectKey returns the storage key for an artifact:
// <prefix>/<id>.<lowercase format>.
func (r *Replicator) ObjectKey(a *artifact.Artifact) string {
	return fmt.Sprintf("%s/%s.%s", r.prefix, a.ID, a.Format.Ext())
}

// Replicate uploads the artifact to every provider in order. Each attempt
// is independent: one provider's failure neither stops the next attempt
// nor raises to the caller. The result maps provider name to signed URL,
// with an empty string for a disabled or failed provider. There is no
// retry; a failed upload is only retried implicitly by the next generation
// event.
func (r *Replicator) Replicate(ctx context.Context, a *artifact.Artifact) map[string]string {
	start := time.Now()
	key := r.ObjectKey(a)
	urls := make(map[string]string, len(r.providers))

	urlAttrs := make([]slog.Attr, 0, len(r.providers))
	var errs []error
	for _, p := range r.providers {
		outcome := r.upload(ctx, p, key, a)
		urls[outcome.Provider] = outcome.SignedURL
		urlAttrs = append(urlAttrs, slog.String(outcome.Provider, outcome.SignedURL))
		errs = append(errs, outcome.Err)
	}

	r.log.InfoContext(ctx, "artifact replicated",
		logger.ArtifactID(a.ID),
		logger.Key("key", key),
		logger.Group("urls", urlAttrs...),
		logger.Errors(errs...),
		logger.Elapsed(start))

	return urls
}

func (r *Replicator) upload(ctx context.Context, p Provider, key string, a *artifact.Artifact) Outcome {
	outcome := Outcome{Provider: p.Name()}

	if !p.Enabled() {
		outcome.Err = ErrProviderDisabled
		r.metrics.IncUpload(p.Name(), "skipped")
		r.log.WarnContext(ctx, "storage provider unavailable for upload",
			logger.Provider(p.Name()),
			logger.ArtifactID(a.ID))
		return outcome
	}

	start := time.Now()
	url, err := p.Upload(ctx, key, a.Bytes, a.ContentType())
	r.metrics.ObserveUploadDuration(p.Name(), time.Since(start).Seconds())

	if err != nil {
		outcome.Err = err
		r.metrics.IncUpload(p.Name(), "error")
		r.log.ErrorContext(ctx, "storage upload failed",
			logger.Provider(p.Name()),
			logger.ArtifactID(a.ID),
			logger.Error(err))
		return outcome
	}

	outcome.SignedURL = url
	r.metrics.IncUpload(p.Name(), "ok")
	return outcome
}

// Delete removes the artifact's object from every enabled provider,
// reporting per-provider success.
func (r *Replicator) Delete(ctx context.Context, a *artifact.Artifact) map[string]bool {
	key := r.ObjectKey(a)
	deleted := make(map[string]bool, len(r.providers))

	for _, p := range r.providers {
		if !p.Enabled() {
			deleted[p.Name()] = false
			continue
		}
		err := p.Delete(ctx, key)
		if err != nil {
			r.log.ErrorContext(ctx, "storage delete failed",
				logger.Provider(p.Name()),
				logger.Key("key", key),
				logger.Error(err))
		}
		deleted[p.Name()] = err == nil
	}

	return deleted
}
