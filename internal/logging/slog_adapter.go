// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package logging

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// SlogHandler is a slog.Handler that writes through zerolog, so the
// supervisor events emitted by sutureslog land in the same stream as
// everything else.
//
// Attributes added with WithAttrs are baked into the underlying zerolog
// context at that point; open groups become a dotted key prefix.
type SlogHandler struct {
	logger zerolog.Logger
	prefix string
}

// NewSlogHandler wraps the global zerolog logger.
func NewSlogHandler() *SlogHandler {
	return &SlogHandler{logger: Logger()}
}

//nolint:gocritic // zerolog.Logger is passed by value
func NewSlogHandlerWithLogger(logger zerolog.Logger) *SlogHandler {
	return &SlogHandler{logger: logger}
}

// NewSlogLogger is what the supervisor tree is built with.
func NewSlogLogger() *slog.Logger {
	return slog.New(NewSlogHandler())
}

func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	lvl := slogToZerologLevel(level)
	return lvl >= h.logger.GetLevel() && lvl >= zerolog.GlobalLevel()
}

//nolint:gocritic // slog.Record is passed by value per slog.Handler
func (h *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	var fields []any
	record.Attrs(func(a slog.Attr) bool {
		fields = flatten(fields, h.prefix, a)
		return true
	})

	event := h.logger.WithLevel(slogToZerologLevel(record.Level))
	if len(fields) > 0 {
		event = event.Fields(fields)
	}
	event.Msg(record.Message)
	return nil
}

func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var fields []any
	for _, a := range attrs {
		fields = flatten(fields, h.prefix, a)
	}
	if len(fields) == 0 {
		return h
	}
	return &SlogHandler{
		logger: h.logger.With().Fields(fields).Logger(),
		prefix: h.prefix,
	}
}

func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SlogHandler{logger: h.logger, prefix: h.prefix + name + "."}
}

// flatten appends key/value pairs for a, expanding groups into dotted keys.
func flatten(dst []any, prefix string, a slog.Attr) []any {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner += a.Key + "."
		}
		for _, ga := range v.Group() {
			dst = flatten(dst, inner, ga)
		}
		return dst
	}
	if a.Key == "" {
		return dst
	}
	return append(dst, prefix+a.Key, v.Any())
}

var slogLevels = []struct {
	below slog.Level
	level zerolog.Level
}{
	{slog.LevelDebug, zerolog.TraceLevel},
	{slog.LevelInfo, zerolog.DebugLevel},
	{slog.LevelWarn, zerolog.InfoLevel},
	{slog.LevelError, zerolog.WarnLevel},
}

func slogToZerologLevel(level slog.Level) zerolog.Level {
	for _, l := range slogLevels {
		if level < l.below {
			return l.level
		}
	}
	return zerolog.ErrorLevel
}
