// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

// Package metrics defines the Prometheus instrumentation for the API:
// DuckDB query latency and errors, HTTP throughput and latency, the store
// circuit breaker and the mock identity store.
package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func counter(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
}

func gauge(name, help string) prometheus.Gauge {
	return promauto.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
}

// duckdb
var (
	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "duckdb_query_duration_seconds",
		Help:    "Duration of DuckDB queries in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	DBQueryErrors = counter("duckdb_query_errors_total",
		"DuckDB query failures by class (timeout, canceled, catalog, other)",
		"operation", "table", "error_type")

	DBConnectionsOpen = gauge("duckdb_connections_open",
		"Current number of request-scoped read-only connections")

	DBConnectionOpenErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duckdb_connection_open_errors_total",
		Help: "Total number of failures opening the analytical store",
	})

	DBStoreAvailable = gauge("duckdb_store_available",
		"Whether the last background probe reached the analytical store (1) or not (0)")

	DBMissingTable = counter("duckdb_missing_table_total",
		"Requests that found a precomputed table missing", "table")
)

// http
var (
	APIRequestsTotal = counter("api_requests_total",
		"Total number of API requests", "method", "endpoint", "status_code")

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "API request duration in seconds",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "endpoint"})

	APIActiveRequests = gauge("api_active_requests", "Current number of in-flight API requests")

	APIRateLimitHits = counter("api_rate_limit_hits_total",
		"Requests rejected by the per-IP rate limiter", "endpoint")
)

// store circuit breaker
var (
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	// result is success, failure or rejected
	CircuitBreakerRequests = counter("circuit_breaker_requests_total",
		"Calls made through the circuit breaker by result", "name", "result")

	CircuitBreakerTransitions = counter("circuit_breaker_state_transitions_total",
		"Circuit breaker state changes", "name", "from_state", "to_state")
)

// mock identity store
var (
	AuthUsersRegistered = gauge("auth_users_registered",
		"Number of accounts held by the in-memory identity store")

	// result is success, conflict, unauthorized or error
	AuthOperations = counter("auth_operations_total",
		"Account operations by outcome", "operation", "result")
)

// ErrorClass buckets a query error into a bounded label value.
func ErrorClass(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case strings.Contains(strings.ToLower(err.Error()), "catalog error"):
		return "catalog"
	}
	return "other"
}

func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, ErrorClass(err)).Inc()
	}
}

func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func TrackActiveRequest(start bool) { adjust(APIActiveRequests, start) }

func TrackConnection(open bool) { adjust(DBConnectionsOpen, open) }

func adjust(g prometheus.Gauge, up bool) {
	if up {
		g.Inc()
		return
	}
	g.Dec()
}

// RecordAuthOperation records the outcome of a signup, login or reset.
func RecordAuthOperation(operation, result string) {
	AuthOperations.WithLabelValues(operation, result).Inc()
}
