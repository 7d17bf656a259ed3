// Package logger provides structured logging built on Go's standard slog
// package: a factory with environment presets plus pre-built attribute
// helpers for common logging scenarios.
//
// Usage:
//
//	log := logger.New(
//		logger.WithProduction("qrgen"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log.Info("artifact generated",
//		logger.Component("generate"),
//		logger.Duration(elapsed),
//	)
//
// Attribute helpers use the empty Attr pattern for nil safety, so
// log.Error("msg", logger.Error(err)) is safe without explicit nil checks.
package logger
