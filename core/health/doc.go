// Package health aggregates named dependency probes into service reports.
//
// Probes follow the func(context.Context) error signature. Core probes gate
// readiness; informational probes (storage providers that may be disabled)
// are reported but never fail the service.
//
// Usage:
//
//	checker := health.NewChecker(
//		health.WithCoreProbe("generator", svc.Healthcheck),
//		health.WithProbe("storage_primary", primary.Healthcheck),
//	)
//
//	report := checker.Report(ctx)
//	if err := checker.Ready(ctx); err != nil {
//		// return 503
//	}
package health
