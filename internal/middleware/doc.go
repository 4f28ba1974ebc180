// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

/*
Package middleware provides the HTTP middleware stack for the API.

All middleware uses the standard func(http.Handler) http.Handler shape so it
composes with chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(middleware.DefaultSlowRequestThreshold))
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Compression)

Components:

  - RequestID: reuses or generates X-Request-ID and stores it for logging
  - AccessLog: one zerolog line per request, warn on 5xx or slow requests
  - PrometheusMetrics: request count, latency and in-flight gauge, labeled by route pattern
  - SecurityHeaders: nosniff, frame denial, no-store
  - Compression: gzip via klauspost gzhttp (1KiB minimum, HEAD bypass)

Metrics are labeled by chi route pattern, so unknown paths collapse into a
single "unmatched" series.
*/
package middleware
