// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cohortlens/config.yaml",
	"/etc/cohortlens/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultDatabasePath is where the OMOP DuckDB file lives inside the container image.
const DefaultDatabasePath = "/app/data/omop.duckdb"

// DefaultCORSOrigins are the local development origins the dashboard is served from.
var DefaultCORSOrigins = []string{
	"http://localhost",
	"http://localhost:80",
	"http://localhost:3000",
	"http://localhost:8000",
}

// defaultConfig is the bottom layer of LoadWithKoanf.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            DefaultDatabasePath,
			QueryTimeout:    30 * time.Second,
			BreakerEnabled:  true,
			MonitorInterval: 30 * time.Second,
		},
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "production",
		},
		Security: SecurityConfig{
			CORSOrigins:       append([]string(nil), DefaultCORSOrigins...),
			RateLimitReqs:     1000,
			RateLimitWindow:   time.Minute,
			AuthRateLimitReqs: 20,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// LoadWithKoanf layers struct defaults, an optional YAML file and the
// process environment, in that order, then validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := splitListValues(k); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// findConfigFile prefers $CONFIG_PATH, then DefaultConfigPaths. "" means
// run on defaults and environment only.
func findConfigFile() string {
	candidates := DefaultConfigPaths
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		candidates = append([]string{p}, candidates...)
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// listPaths hold comma-separated strings when they come from the environment.
var listPaths = []string{"security.cors_origins"}

func splitListValues(k *koanf.Koanf) error {
	for _, path := range listPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		items := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' })
		list := make([]string, 0, len(items))
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
		if len(list) == 0 {
			continue
		}
		if err := k.Set(path, list); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Database
	"db_path":             "database.path",
	"duckdb_path":         "database.path",
	"duckdb_threads":      "database.threads",
	"db_query_timeout":    "database.query_timeout",
	"db_breaker_enabled":  "database.breaker_enabled",
	"db_monitor_interval": "database.monitor_interval",

	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Security
	"cors_origins":             "security.cors_origins",
	"rate_limit_requests":      "security.rate_limit_reqs",
	"rate_limit_window":        "security.rate_limit_window",
	"auth_rate_limit_requests": "security.auth_rate_limit_reqs",
	"disable_rate_limit":       "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Metrics
	"metrics_enabled": "metrics.enabled",
	"metrics_path":    "metrics.path",
}

// envTransformFunc maps an environment variable to its koanf path. Unknown
// variables map to "" and are dropped by the provider.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
