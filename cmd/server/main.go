// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

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

	"github.com/tomtom215/bookrec/internal/api"
	"github.com/tomtom215/bookrec/internal/catalog"
	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/logging"
	"github.com/tomtom215/bookrec/internal/metrics"
	"github.com/tomtom215/bookrec/internal/recommend"
	"github.com/tomtom215/bookrec/internal/supervisor"
	"github.com/tomtom215/bookrec/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("store_backend", cfg.Store.Backend).
		Bool("events_enabled", cfg.Events.Enabled).
		Msg("Starting Bookrec")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential startup steps
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === CATALOG AND MODEL ===
	books, err := catalog.LoadCSV(ctx, &cfg.Catalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	stats := catalog.Summarize(books)
	logging.Info().
		Str("path", cfg.Catalog.Path).
		Int("books", stats.Books).
		Int("dimensions", stats.FeatureDimensions()).
		Int("duplicate_titles", stats.DuplicateTitles).
		Msg("Catalog loaded")

	model, err := recommend.BuildModel(books, cfg.Recommend.Epsilon)
	if err != nil {
		return fmt.Errorf("build feature model: %w", err)
	}

	// === PREFERENCE STORE ===
	store, err := openStore(ctx, cfg, books)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing preference store")
		}
	}()

	// === EVENTS ===
	ev, err := initEvents(&cfg.Events)
	if err != nil {
		return err
	}
	defer ev.Close()

	// === ENGINE AND API ===
	engine, resolutions, err := newEngine(cfg, model, store)
	if err != nil {
		return err
	}

	handler := api.NewHandler(engine, store, cfg, version)
	if ev.publisher != nil {
		engine.SetNotifier(ev.publisher)
		handler.SetNotifier(ev.publisher)
	}

	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(&cfg.Security))
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// === SUPERVISOR TREE ===
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(&cfg.Supervisor))
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if resolutions != nil {
		tree.AddDataService(services.NewCacheJanitorService(resolutions, cfg.Supervisor.JanitorInterval, logging.WithComponent("cache-janitor")))
	}
	if ev.audit != nil {
		tree.AddMessagingService(ev.audit)
		logging.Info().Str("topic", cfg.Events.Topic).Msg("Audit consumer added to supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START ===
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			serveErr = err
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	return serveErr
}
