// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// traceIDs is what request middleware attaches for log correlation.
// The request ID is echoed to clients; the correlation ID is internal and short.
type traceIDs struct {
	request     string
	correlation string
}

type traceKey struct{}

func idsFrom(ctx context.Context) traceIDs {
	if ctx == nil {
		return traceIDs{}
	}
	ids, _ := ctx.Value(traceKey{}).(traceIDs)
	return ids
}

// ContextWithRequestID stores the client-visible request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	ids := idsFrom(ctx)
	ids.request = id
	return context.WithValue(ctx, traceKey{}, ids)
}

// ContextWithCorrelationID stores an internal correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	ids := idsFrom(ctx)
	ids.correlation = id
	return context.WithValue(ctx, traceKey{}, ids)
}

// ContextWithNewCorrelationID stores the first 8 characters of a fresh UUID.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, uuid.NewString()[:8])
}

// RequestIDFromContext returns the request ID or "".
func RequestIDFromContext(ctx context.Context) string { return idsFrom(ctx).request }

// CorrelationIDFromContext returns the correlation ID or "".
func CorrelationIDFromContext(ctx context.Context) string { return idsFrom(ctx).correlation }

// Ctx returns the global logger with request_id and correlation_id from ctx.
//
//	logging.Ctx(ctx).Info().Msg("Cohort built")
func Ctx(ctx context.Context) *zerolog.Logger {
	ids := idsFrom(ctx)
	lc := Logger().With()
	if ids.correlation != "" {
		lc = lc.Str("correlation_id", ids.correlation)
	}
	if ids.request != "" {
		lc = lc.Str("request_id", ids.request)
	}
	l := lc.Logger()
	return &l
}

// WithComponent returns a child of the global logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return Logger().With().Str("component", component).Logger()
}
