// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/cohortlens/internal/logging"
	"github.com/tomtom215/cohortlens/internal/metrics"
)

// queryAndScan runs query and hands each row to scanFn.
// Failures are wrapped in *QueryError tagged with op.
func queryAndScan(ctx context.Context, conn *sql.DB, op, table, query string, args []interface{}, scanFn func(*sql.Rows) error) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, table, time.Since(start), err) }()

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return queryFailed(ctx, op, err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		if err = scanFn(rows); err != nil {
			return queryFailed(ctx, op, err)
		}
	}
	if err = rows.Err(); err != nil {
		return queryFailed(ctx, op, err)
	}
	return nil
}

// queryCount runs a single-value COUNT query.
func queryCount(ctx context.Context, conn *sql.DB, op, table, query string, args ...interface{}) (n int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, table, time.Since(start), err) }()

	if err = conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, queryFailed(ctx, op, err)
	}
	return n, nil
}

// tableExists reports whether a table is present in the catalog.
func tableExists(ctx context.Context, conn *sql.DB, table string) (bool, error) {
	n, err := queryCount(ctx, conn, "table_exists", "information_schema.tables",
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?", table)
	if err != nil {
		return false, err
	}
	if n == 0 {
		metrics.DBMissingTable.WithLabelValues(table).Inc()
	}
	return n > 0, nil
}

func queryFailed(ctx context.Context, op string, err error) error {
	logging.Ctx(ctx).Error().Err(err).Str("operation", op).Msg("Query failed")
	return &QueryError{Op: op, Err: err}
}

// placeholders returns "?, ?, ..." for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// int64Args converts ids to driver arguments.
func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// conditionLabel is the fallback display name for a concept with no name.
func conditionLabel(id int64) string {
	return fmt.Sprintf("Condition %d", id)
}
