// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

/*
Package database provides read-only access to the OMOP analytical store.

The store is a DuckDB file produced by an external ETL. Every request opens
its own read-only connection and closes it before returning, whatever the
outcome:

	err := store.WithConn(ctx, func(ctx context.Context, conn *sql.DB) error {
	    return conn.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	})

Connection failures are reported as *UnavailableError (matching
ErrUnavailable). Repeated failures trip a circuit breaker so a missing or
locked file fails fast instead of paying the open cost on every request.

Query failures are reported as *QueryError. Precomputed tables that have not
been generated yet are reported with ErrMeasurementDataNotFound or
ErrDemographicsDataNotFound, both matching ErrDataNotGenerated.

Nothing in this package writes to the store.
*/
package database
