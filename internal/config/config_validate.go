// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Rate limiter bounds, applied to both the global and the auth limiter.
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

var (
	logLevels  = []string{"trace", "debug", "info", "warn", "error"}
	logFormats = []string{"json", "console"}
)

// Validate runs every section check and returns the first failure. Messages
// name the environment variable to change.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.Database.validate,
		c.Server.validate,
		c.Security.validate,
		c.Metrics.validate,
		c.Logging.validate,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (d *DatabaseConfig) validate() error {
	switch {
	case strings.TrimSpace(d.Path) == "":
		return errors.New("DB_PATH is required")
	case d.Threads < 0:
		return errors.New("DUCKDB_THREADS must not be negative")
	case d.QueryTimeout <= 0:
		return errors.New("DB_QUERY_TIMEOUT must be positive")
	case d.MonitorInterval < time.Second:
		return errors.New("DB_MONITOR_INTERVAL must be at least 1s")
	}
	return nil
}

func (s *ServerConfig) validate() error {
	switch {
	case s.Port < 1 || s.Port > 65535:
		return errors.New("HTTP_PORT must be between 1 and 65535")
	case s.ReadTimeout <= 0 || s.WriteTimeout <= 0:
		return errors.New("HTTP_READ_TIMEOUT and HTTP_WRITE_TIMEOUT must be positive")
	case s.ShutdownTimeout <= 0:
		return errors.New("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (s *SecurityConfig) validate() error {
	for _, origin := range s.CORSOrigins {
		// credentials are allowed, which rules out "*"
		if origin == "*" {
			return errors.New("CORS_ORIGINS=* is not allowed with credentialed requests; " +
				"list explicit origins such as CORS_ORIGINS=http://localhost:3000")
		}
		if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS contains an invalid origin %q", origin)
		}
	}

	if s.RateLimitDisabled {
		return nil
	}
	inRange := func(n int) bool { return n >= minRateLimitRequests && n <= maxRateLimitRequests }
	switch {
	case !inRange(s.RateLimitReqs):
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	case !inRange(s.AuthRateLimitReqs):
		return fmt.Errorf("AUTH_RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	case s.RateLimitWindow < minRateLimitWindow || s.RateLimitWindow > maxRateLimitWindow:
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (m *MetricsConfig) validate() error {
	if m.Enabled && !strings.HasPrefix(m.Path, "/") {
		return errors.New("METRICS_PATH must start with /")
	}
	return nil
}

// validate also normalizes Level and Format to the lowercase names the
// logger uses, so LOG_LEVEL=INFO and LOG_LEVEL=warning are accepted.
func (l *LoggingConfig) validate() error {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	if l.Level == "warning" {
		l.Level = "warn"
	}
	l.Format = strings.ToLower(strings.TrimSpace(l.Format))

	if !slices.Contains(logLevels, l.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: %s", strings.Join(logLevels, ", "))
	}
	if l.Format != "" && !slices.Contains(logFormats, l.Format) {
		return fmt.Errorf("LOG_FORMAT must be one of: %s", strings.Join(logFormats, ", "))
	}
	return nil
}
