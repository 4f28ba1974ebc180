// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver registration

	"github.com/tomtom215/cohortlens/internal/config"
	"github.com/tomtom215/cohortlens/internal/logging"
	"github.com/tomtom215/cohortlens/internal/metrics"
)

const (
	driverName = "duckdb"

	// defaultQueryTimeout applies when the caller's context carries no deadline.
	defaultQueryTimeout = 30 * time.Second

	breakerName = "analytical-store"
)

// Store gives read-only access to the analytical DuckDB file.
// It holds no open connection between calls and is safe for concurrent use.
type Store struct {
	path         string
	dsn          string
	queryTimeout time.Duration
	breaker      *storeBreaker
}

// Option customizes a Store.
type Option func(*Store)

// WithBreakerSettings overrides the circuit breaker tuning.
// It has no effect when the breaker is disabled in config.
func WithBreakerSettings(s BreakerSettings) Option {
	return func(st *Store) {
		if st.breaker != nil {
			st.breaker = newStoreBreaker(breakerName, s)
		}
	}
}

// New validates the database configuration and returns a Store.
// A missing file is logged but is not an error: the ETL may not have run yet,
// and requests will report the store as unavailable until it does.
func New(cfg *config.DatabaseConfig, opts ...Option) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("database config is required")
	}
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if cfg.Threads < 0 {
		return nil, fmt.Errorf("database threads must be non-negative, got %d", cfg.Threads)
	}

	s := &Store{
		path:         path,
		dsn:          buildDSN(path, cfg.Threads),
		queryTimeout: cfg.QueryTimeout,
	}
	if s.queryTimeout <= 0 {
		s.queryTimeout = defaultQueryTimeout
	}
	if cfg.BreakerEnabled {
		s.breaker = newStoreBreaker(breakerName, DefaultBreakerSettings())
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := os.Stat(path); err != nil {
		logging.Warn().Str("path", path).Err(err).Msg("Analytical store not found, requests will fail until it is generated")
	} else {
		logging.Info().Str("path", path).Bool("circuit_breaker", s.breaker != nil).Msg("Analytical store configured")
	}

	return s, nil
}

// buildDSN appends read-only access mode and optional thread count to the path.
func buildDSN(path string, threads int) string {
	params := url.Values{}
	params.Set("access_mode", "read_only")
	if threads > 0 {
		params.Set("threads", strconv.Itoa(threads))
	}
	return path + "?" + params.Encode()
}

// Path returns the configured database file path.
func (s *Store) Path() string {
	return s.path
}

// ensureContext applies the configured query timeout if ctx has no deadline.
func (s *Store) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// open creates a fresh read-only handle and verifies it with a ping.
func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	conn, err := sql.Open(driverName, s.dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)
	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, err
	}
	return conn, nil
}

// acquire opens a connection, through the breaker when one is configured.
func (s *Store) acquire(ctx context.Context) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)
	if s.breaker != nil {
		conn, err = s.breaker.execute(func() (*sql.DB, error) { return s.open(ctx) })
	} else {
		conn, err = s.open(ctx)
	}
	if err != nil {
		metrics.DBConnectionOpenErrors.Inc()
		logging.Ctx(ctx).Error().Err(err).Str("path", s.path).Msg("Failed to open analytical store")
		return nil, &UnavailableError{Err: err}
	}
	metrics.TrackConnection(true)
	return conn, nil
}

func (s *Store) release(conn *sql.DB) {
	closeWithLog(conn, "duckdb connection")
	metrics.TrackConnection(false)
}

// WithConn runs fn on a fresh read-only connection.
// The connection is closed on every path, including when fn panics.
func (s *Store) WithConn(ctx context.Context, fn func(ctx context.Context, conn *sql.DB) error) error {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	conn, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer s.release(conn)

	return fn(ctx, conn)
}

// Ping verifies the store can be opened and answers a trivial query.
func (s *Store) Ping(ctx context.Context) error {
	return s.WithConn(ctx, func(ctx context.Context, conn *sql.DB) error {
		var one int
		if err := conn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
			return &UnavailableError{Err: err}
		}
		return nil
	})
}
