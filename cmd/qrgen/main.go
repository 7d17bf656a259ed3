package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/qrgen/core/artifact"
	"github.com/dmitrymomot/qrgen/core/background"
	"github.com/dmitrymomot/qrgen/core/config"
	"github.com/dmitrymomot/qrgen/core/generate"
	"github.com/dmitrymomot/qrgen/core/health"
	"github.com/dmitrymomot/qrgen/core/logger"
	"github.com/dmitrymomot/qrgen/core/metrics"
	"github.com/dmitrymomot/qrgen/core/replicate"
	"github.com/dmitrymomot/qrgen/core/server"
	s3storage "github.com/dmitrymomot/qrgen/integration/storage/s3"
	"github.com/dmitrymomot/qrgen/transport/httpapi"
)

var version = "dev"

type appConfig struct {
	Name     string `env:"APP_NAME" envDefault:"qrgen"`
	Env      string `env:"APP_ENV" envDefault:"production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StoragePrefix string `env:"QR_STORAGE_PREFIX" envDefault:"qr-codes"`

	Server     server.Config
	Generate   generate.Config
	Background background.Config

	Primary   s3storage.Config `envPrefix:"STORAGE_PRIMARY_"`
	Secondary s3storage.Config `envPrefix:"STORAGE_SECONDARY_"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	config.MustLoad(&cfg)

	logOpts := []logger.Option{logger.WithProduction(cfg.Name)}
	if cfg.Env == "development" {
		logOpts = []logger.Option{logger.WithDevelopment(cfg.Name)}
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
		logOpts = append(logOpts, logger.WithLevel(level))
	}
	log := logger.New(logOpts...)

	prom := metrics.NewProm("qrgen")

	cache := artifact.NewCache()
	svc := generate.NewFromConfig(cfg.Generate, cache,
		generate.WithLogger(log),
		generate.WithMetrics(prom),
	)
	defer svc.Close()

	// Storage providers stay disabled when their bucket probe fails; the
	// service serves requests either way.
	primary, err := s3storage.New(ctx, "storage_primary", cfg.Primary, s3storage.WithLogger(log.With(logger.Component("storage"))))
	if err != nil {
		return fmt.Errorf("primary storage: %w", err)
	}
	secondary, err := s3storage.New(ctx, "storage_secondary", cfg.Secondary, s3storage.WithLogger(log.With(logger.Component("storage"))))
	if err != nil {
		return fmt.Errorf("secondary storage: %w", err)
	}
	primary.Init(ctx)
	secondary.Init(ctx)

	replicator := replicate.New(
		[]replicate.Provider{primary, secondary},
		replicate.WithObjectPrefix(cfg.StoragePrefix),
		replicate.WithLogger(log.With(logger.Component("replicate"))),
		replicate.WithMetrics(prom),
	)

	jobs, err := background.NewFromConfig(cfg.Background, background.WithLogger(log.With(logger.Component("background"))))
	if err != nil {
		return fmt.Errorf("background executor: %w", err)
	}

	checker := health.NewChecker(
		health.WithUnavailableErrors(replicate.ErrProviderDisabled),
		health.WithCoreProbe("generator", svc.Healthcheck),
		health.WithProbe("storage_primary", primary.Healthcheck),
		health.WithProbe("storage_secondary", secondary.Healthcheck),
	)

	handler := httpapi.New(svc, cache,
		httpapi.WithLogger(log),
		httpapi.WithReplication(replicator, jobs),
		httpapi.WithHealthChecker(checker),
		httpapi.WithMetricsHandler(metrics.Handler()),
		httpapi.WithVersion(version),
	)

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	log.InfoContext(ctx, "starting qrgen",
		logger.Key("version", version),
		logger.Key("addr", cfg.Server.Addr),
		logger.Key("env", cfg.Env))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(jobs.Run(ctx))
	g.Go(srv.Run(ctx, handler.Router()))

	return g.Wait()
}
