// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

/*
Package main is the entry point for the OMOP Cohort Analysis API server.

The server answers cohort questions against a DuckDB file holding an OMOP
CDM extract plus three precomputed tables (measurement_summary_stats,
measurement_by_age_sex, demographics_case/demographics_control). The file is
opened read-only per request; the service never writes to it.

# Application Architecture

	RootSupervisor ("cohortlens")
	├── DataSupervisor ("data-layer")
	│   └── Store monitor (periodic SELECT 1, duckdb_store_available gauge)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Startup order:

 1. Configuration: Koanf v2 (defaults, optional config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Store: DuckDB path, thread count and circuit breaker
 4. Accounts: in-memory mock identity store
 5. Router: middleware stack, /health, /metrics and /api routes
 6. Supervisor Tree: suture v4 runs the monitor and the HTTP server

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server stops accepting
connections and waits up to HTTP_SHUTDOWN_TIMEOUT for in-flight requests.

# Commands

	cohortlens [serve]           run the API (default)
	cohortlens check [--strict]  list required tables and row counts
	cohortlens version           print the API version

# Example Usage

	export DB_PATH=/data/omop.duckdb
	export CORS_ORIGINS=https://cohorts.example.org
	./cohortlens check --strict && ./cohortlens serve

See package config for the full list of environment variables.
*/
package main
