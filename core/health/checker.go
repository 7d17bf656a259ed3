package health

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Service statuses reported per probe.
const (
	StatusHealthy     = "healthy"
	StatusDegraded    = "degraded"
	StatusUnhealthy   = "unhealthy"
	StatusUnavailable = "unavailable"
)

// Probe verifies a single dependency.
type Probe func(ctx context.Context) error

type probe struct {
	name string
	fn   Probe
	core bool
}

// Checker runs registered probes and aggregates the results.
type Checker struct {
	probes      []probe
	unavailable []error
	started     time.Time
	now         func() time.Time
}

// ServiceStatus is the outcome of a single probe.
type ServiceStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report is a snapshot of all probe outcomes.
type Report struct {
	Status        string                   `json:"status"`
	Timestamp     time.Time                `json:"timestamp"`
	UptimeSeconds float64                  `json:"uptime_seconds"`
	Services      map[string]ServiceStatus `json:"services"`
}

// Option configures a Checker.
type Option func(*Checker)

// WithCoreProbe registers a probe that gates readiness. A failing core probe
// marks the whole service unhealthy.
func WithCoreProbe(name string, fn Probe) Option {
	return func(c *Checker) {
		if fn != nil {
			c.probes = append(c.probes, probe{name: name, fn: fn, core: true})
		}
	}
}

// WithProbe registers an informational probe. Failures degrade the report
// but never fail readiness.
func WithProbe(name string, fn Probe) Option {
	return func(c *Checker) {
		if fn != nil {
			c.probes = append(c.probes, probe{name: name, fn: fn})
		}
	}
}

// WithUnavailableErrors registers sentinel errors that mean a dependency is
// deliberately switched off. Matching probe errors report as unavailable
// instead of failing.
func WithUnavailableErrors(errs ...error) Option {
	return func(c *Checker) {
		c.unavailable = append(c.unavailable, errs...)
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

// NewChecker creates a checker with the given probes.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.started = c.now()
	return c
}

// Report runs every probe and returns the aggregated snapshot. Probe order
// in the Services map follows registration; the map itself is fresh per call.
func (c *Checker) Report(ctx context.Context) Report {
	now := c.now()
	report := Report{
		Status:        StatusHealthy,
		Timestamp:     now,
		UptimeSeconds: now.Sub(c.started).Seconds(),
		Services:      make(map[string]ServiceStatus, len(c.probes)),
	}

	for _, p := range c.probes {
		err := p.fn(ctx)
		switch {
		case err == nil:
			report.Services[p.name] = ServiceStatus{Status: StatusHealthy}
		case c.isUnavailable(err):
			report.Services[p.name] = ServiceStatus{Status: StatusUnavailable}
		default:
			report.Services[p.name] = ServiceStatus{Status: StatusUnhealthy, Error: err.Error()}
			if p.core {
				report.Status = StatusUnhealthy
			} else if report.Status == StatusHealthy {
				report.Status = StatusDegraded
			}
		}
	}

	return report
}

// Ready verifies core probes only. Informational probes never block
// readiness: a disabled storage backend must not take the service out of
// rotation.
func (c *Checker) Ready(ctx context.Context) error {
	for _, p := range c.probes {
		if !p.core {
			continue
		}
		if err := p.fn(ctx); err != nil {
			return fmt.Errorf("health: %s: %w", p.name, err)
		}
	}
	return nil
}

// ServiceNames returns the registered probe names in sorted order.
func (c *Checker) ServiceNames() []string {
	names := make([]string, 0, len(c.probes))
	for _, p := range c.probes {
		names = append(names, p.name)
	}
	sort.Strings(names)
	return names
}

func (c *Checker) isUnavailable(err error) bool {
	for _, sentinel := range c.unavailable {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
