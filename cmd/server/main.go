// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

// Package main is the entry point for the Vitarank server.
//
// Vitarank turns a user health and lifestyle profile into a ranked list of
// supplement recommendations and improves those rankings over time from
// accumulated outcome feedback.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, config file, environment (Koanf v2)
//  2. Catalog: static supplement reference data, optionally from a file
//  3. Store: BadgerDB-backed learning corpus, feedback log, and model state
//  4. Engine: similarity, rules, quality gating, blending, model lifecycle
//  5. Supervisor tree: HTTP server (api layer), retention janitor and
//     training scheduler (data layer)
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables (VITARANK_ prefix), a config file
// (config.yaml or VITARANK_CONFIG), and built-in defaults.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests within the configured
// shutdown timeout, and closes the store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitarank/vitarank/internal/api"
	"github.com/vitarank/vitarank/internal/catalog"
	"github.com/vitarank/vitarank/internal/config"
	"github.com/vitarank/vitarank/internal/engine"
	"github.com/vitarank/vitarank/internal/logging"
	"github.com/vitarank/vitarank/internal/store"
	"github.com/vitarank/vitarank/internal/supervisor"
	"github.com/vitarank/vitarank/internal/supervisor/services"
)

// version is set at build time via -ldflags.
var version = "dev"

// janitorSweepInterval is how often the retention janitor runs beyond the
// opportunistic trims performed on write.
const janitorSweepInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet, use the default logger.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)

	logging.Info().
		Str("version", version).
		Str("store_path", cfg.Store.Path).
		Int("port", cfg.Server.Port).
		Msg("Starting Vitarank")

	cat := catalog.New()
	if cfg.Catalog.Path != "" {
		cat, err = catalog.Load(cfg.Catalog.Path)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("Failed to load catalog")
		}
		logging.Info().Str("path", cfg.Catalog.Path).Int("supplements", cat.Len()).Msg("Catalog loaded from file")
	} else {
		logging.Info().Int("supplements", cat.Len()).Msg("Using built-in catalog")
	}

	st, err := store.Open(cfg.Store, cfg.Engine.Retention, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	eng, err := engine.New(cfg.Engine, st, cat, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create engine")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility.
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	handler := api.NewHandler(eng, st, cat, version)
	router := api.NewRouter(handler, api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "X-Correlation-ID"},
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Server.RateLimitReqs,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
	}))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree.AddDataService(services.NewJanitorService(st, janitorSweepInterval, logging.Logger()))
	tree.AddDataService(services.NewTrainerService(eng, cfg.Engine.Training.FullRetrainInterval, logging.Logger()))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
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

	logging.Info().Msg("Application stopped gracefully")
}
