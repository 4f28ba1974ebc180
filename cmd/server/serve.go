// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/cohortlens/internal/api"
	"github.com/tomtom215/cohortlens/internal/auth"
	"github.com/tomtom215/cohortlens/internal/database"
	"github.com/tomtom215/cohortlens/internal/logging"
	"github.com/tomtom215/cohortlens/internal/supervisor"
	"github.com/tomtom215/cohortlens/internal/supervisor/services"
)

const readHeaderTimeout = 5 * time.Second

// runServe runs the API under the supervisor tree until SIGINT or SIGTERM.
func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logging.Info().
		Str("version", api.Version).
		Str("db_path", cfg.Database.Path).
		Str("environment", cfg.Server.Environment).
		Msg("Starting OMOP Cohort Analysis API")

	store, err := database.New(&cfg.Database)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to configure analytical store")
		return err
	}

	accounts := auth.NewService(auth.NewMemoryStore(), nil)
	logging.Warn().Msg("Account endpoints are mock implementations: credentials are held in memory and tokens are not signed")

	handler := api.NewHandler(store, accounts)
	router := api.NewRouter(handler, api.ChiMiddlewareConfigFrom(&cfg.Security), cfg.Metrics)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       2 * cfg.Server.ReadTimeout,
	}

	// Supervisor events go through zerolog via the slog bridge.
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddDataService(services.NewStoreMonitorService(store, cfg.Database.MonitorInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
		return err
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
	return nil
}
