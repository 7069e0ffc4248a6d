// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/tomtom215/nutrirank/internal/api"
	"github.com/tomtom215/nutrirank/internal/artifacts"
	"github.com/tomtom215/nutrirank/internal/cache"
	"github.com/tomtom215/nutrirank/internal/config"
	"github.com/tomtom215/nutrirank/internal/logging"
	"github.com/tomtom215/nutrirank/internal/metrics"
	"github.com/tomtom215/nutrirank/internal/recommend"
	"github.com/tomtom215/nutrirank/internal/supervisor"
	"github.com/tomtom215/nutrirank/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LoggingOptions())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("NutriRank stopped with error")
		stop()
		os.Exit(1)
	}
	logging.Info().Msg("NutriRank stopped gracefully")
}

//nolint:gocyclo // sequential startup steps
func run(ctx context.Context, cfg *config.Config) error {
	metrics.SetAppInfo(version, runtime.Version())
	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Str("cache_backend", cfg.Cache.Backend).
		Str("jobs_transport", cfg.Jobs.Transport).
		Msg("Starting NutriRank")

	art, err := artifacts.Load(ctx, cfg.ArtifactsConfig(), logging.WithComponent("artifacts"))
	if err != nil {
		return fmt.Errorf("load artifacts: %w", err)
	}

	recCfg, err := cfg.RecommendConfig()
	if err != nil {
		return err
	}
	engine, err := recommend.NewEngine(recCfg, art, logging.WithComponent("engine"))
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	store, err := cache.Open(cfg.CacheConfig(), logging.WithComponent("cache"))
	if err != nil {
		return fmt.Errorf("open result store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing result store")
		}
	}()

	pipeline, err := initJobs(cfg, engine, store)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	srv, err := api.NewServer(cfg.APIConfig(), engine, pipeline.Queue, store,
		logging.WithComponent("api"), api.WithVersion(version))
	if err != nil {
		return fmt.Errorf("create api server: %w", err)
	}
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           srv.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	treeLogger := logging.WithComponent("supervisor")
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(treeLogger), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(services.NewMaintenanceService(store, cfg.Cache.MaintenanceInterval, treeLogger))
	if pipeline.NATSServer != nil {
		tree.AddDataService(services.NewEmbeddedNATSService(pipeline.NATSServer, 0, treeLogger))
	}
	tree.AddMessagingService(services.NewJobRouterService(pipeline.NewRouter, logging.WithComponent("jobs")))
	tree.AddAPIService(services.NewHTTPServerService(httpServer, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))

	logging.Info().Msg("Starting supervisor tree")
	err = tree.Serve(ctx)

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	return nil
}
