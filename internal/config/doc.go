// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

/*
Package config provides configuration management for the cohort analysis API.

Configuration is layered with koanf:

  - Struct defaults (defaultConfig)
  - An optional YAML file (CONFIG_PATH, ./config.yaml, /etc/cohortlens/config.yaml)
  - Environment variables, mapped explicitly by envTransformFunc

# Environment Variables

Database:
  - DB_PATH (alias DUCKDB_PATH): OMOP DuckDB file, default /app/data/omop.duckdb
  - DUCKDB_THREADS: DuckDB worker threads, default 0 (DuckDB decides)
  - DB_QUERY_TIMEOUT: per-request statement timeout, default 30s
  - DB_BREAKER_ENABLED: circuit breaker around store opens, default true
  - DB_MONITOR_INTERVAL: background availability probe interval, default 30s

Server:
  - HTTP_HOST, HTTP_PORT: listen address, default 0.0.0.0:8000
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - ENVIRONMENT: development, staging or production

Security:
  - CORS_ORIGINS: comma-separated allow list, defaults to the local dashboard origins
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, AUTH_RATE_LIMIT_REQUESTS, DISABLE_RATE_LIMIT

Logging and metrics:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
  - METRICS_ENABLED, METRICS_PATH

# Usage

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config
