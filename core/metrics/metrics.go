// Package metrics defines the observability counters for QR generation and
// storage replication, backed by Prometheus with a no-op fallback.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder captures generation and upload events.
type Recorder interface {
	IncGenerated(format string)
	ObserveGenerateDuration(seconds float64)
	IncUpload(provider, status string)
	ObserveUploadDuration(provider string, seconds float64)
}

// Noop implements Recorder without emitting anything.
type Noop struct{}

func (Noop) IncGenerated(string)                   {}
func (Noop) ObserveGenerateDuration(float64)       {}
func (Noop) IncUpload(string, string)              {}
func (Noop) ObserveUploadDuration(string, float64) {}

// Prom implements Recorder backed by Prometheus collectors.
type Prom struct {
	generated        *prometheus.CounterVec
	generateDuration prometheus.Histogram
	uploads          *prometheus.CounterVec
	uploadDuration   *prometheus.HistogramVec
}

// NewProm constructs the collectors under the namespace and registers them
// on the default registry.
func NewProm(namespace string) *Prom {
	return NewPromWith(prometheus.DefaultRegisterer, namespace)
}

// NewPromWith registers the collectors on the given registry.
func NewPromWith(reg prometheus.Registerer, namespace string) *Prom {
	p := &Prom{
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qr_codes_generated_total",
			Help:      "QR codes generated by output format",
		}, []string{"format"}),
		generateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "qr_generation_duration_seconds",
			Help:      "QR code generation duration",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_uploads_total",
			Help:      "Storage uploads by provider and status",
		}, []string{"provider", "status"}),
		uploadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_upload_duration_seconds",
			Help:      "Storage upload duration by provider",
		}, []string{"provider"}),
	}
	reg.MustRegister(p.generated, p.generateDuration, p.uploads, p.uploadDuration)
	return p
}

func (p *Prom) IncGenerated(format string) {
	p.generated.WithLabelValues(format).Inc()
}

func (p *Prom) ObserveGenerateDuration(seconds float64) {
	p.generateDuration.Observe(seconds)
}

func (p *Prom) IncUpload(provider, status string) {
	p.uploads.WithLabelValues(provider, status).Inc()
}

func (p *Prom) ObserveUploadDuration(provider string, seconds float64) {
	p.uploadDuration.WithLabelValues(provider).Observe(seconds)
}

// Handler returns the HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
