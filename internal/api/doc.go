// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

/*
Package api serves the cohort analysis HTTP/JSON API using the Chi router.

Routes:

	GET  /                              static liveness payload
	GET  /health                        SELECT 1 against the analytical store
	GET  /health/live                   process liveness
	GET  /health/ready                  same check as /health
	GET  /metrics                       Prometheus exposition (when enabled)

	POST /api/auth/signup               mock account creation
	POST /api/auth/login                mock login, returns mock_token_<email>
	POST /api/auth/reset-password       always succeeds

	GET  /api/diseases                  tracked conditions with patient counts
	POST /api/cohorts/build             case/control partition for a condition
	GET  /api/measurements/available    fixed measurement catalog
	POST /api/measurements/summary      precomputed per-cohort statistics
	POST /api/measurements/by-age-sex   precomputed cohort/age/sex aggregates
	GET  /api/demographics              patient count, mean age, sex split

Every error response is {"detail": "<message>"}. Store errors map to statuses
in respondStoreError: missing precomputed tables are 404, anything else is 500
with the underlying message, and /health reports an unreachable store as 503.

Handlers depend on the DataSource and AccountService interfaces, so tests run
against in-memory fakes without DuckDB.
*/
package api
