// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

// Package logging provides centralized zerolog-based logging.
//
// A single global logger is configured once from main and used everywhere
// through package-level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("path", cfg.Database.Path).Msg("Opening store")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Query failed")
//
// Always terminate log chains with .Msg() or .Send(); an unterminated
// event is never written.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	Level  string // trace, debug, info, warn, error, disabled
	Format string // json or console

	Caller    bool
	Timestamp bool

	// Service and Version, when set, are attached to every line so logs from
	// several deployments can share a sink.
	Service string
	Version string

	Output io.Writer // default os.Stderr
}

// DefaultConfig returns JSON at info level with timestamps.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Timestamp: true, Output: os.Stderr}
}

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

//nolint:gochecknoinits // packages log before main calls Init
func init() {
	cfg := DefaultConfig()
	if os.Getenv("LOG_SILENT") == "1" {
		cfg.Level = "disabled"
	}
	log = build(cfg)
}

// Init replaces the global logger. Safe to call more than once.
func Init(cfg Config) {
	l := build(cfg)
	mu.Lock()
	log = l
	mu.Unlock()
}

func build(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339

	// The level belongs to this logger only; loggers built elsewhere, such
	// as NewTestLogger, keep writing.
	ctx := zerolog.New(out).Level(parseLevel(cfg.Level)).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	if cfg.Version != "" {
		ctx = ctx.Str("version", cfg.Version)
	}
	return ctx.Logger()
}

// parseLevel accepts zerolog level names plus "warning"; anything else is info.
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	if level == "" {
		return zerolog.InfoLevel
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// SetLogger replaces the global logger, mostly for tests.
//
//nolint:gocritic // zerolog.Logger is passed by value by design of the library
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
}

func current() *zerolog.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	return &l
}

// Debug starts a debug-level event on the global logger.
func Debug() *zerolog.Event { return current().Debug() }

// Info starts an info-level event on the global logger.
func Info() *zerolog.Event { return current().Info() }

// Warn starts a warn-level event on the global logger.
func Warn() *zerolog.Event { return current().Warn() }

// Error starts an error-level event on the global logger.
func Error() *zerolog.Event { return current().Error() }

// Fatal starts a fatal event; the process exits after Msg.
func Fatal() *zerolog.Event { return current().Fatal() }

// Err starts an error-level event carrying err, or info when err is nil.
func Err(err error) *zerolog.Event { return current().Err(err) }

// NewTestLogger returns a JSON logger writing to w.
//
//	var buf bytes.Buffer
//	logging.SetLogger(logging.NewTestLogger(&buf))
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
