// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package database

import (
	"errors"
	"fmt"
	"io"

	"github.com/tomtom215/cohortlens/internal/logging"
)

var (
	// ErrUnavailable matches any failure to open or reach the store.
	ErrUnavailable = errors.New("database unavailable")

	// ErrDataNotGenerated matches any precomputed table that does not exist yet.
	ErrDataNotGenerated = errors.New("precomputed data not generated")

	// ErrMeasurementDataNotFound: measurement_summary or measurement_by_age_sex is missing.
	ErrMeasurementDataNotFound = fmt.Errorf("measurement data: %w", ErrDataNotGenerated)

	// ErrDemographicsDataNotFound: demographics_case is missing.
	ErrDemographicsDataNotFound = fmt.Errorf("demographics data: %w", ErrDataNotGenerated)
)

// UnavailableError wraps the cause of a failed connection attempt.
// Error returns the cause unchanged so it can be shown to operators.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string { return e.Err.Error() }

func (e *UnavailableError) Unwrap() error { return e.Err }

// Is reports ErrUnavailable as a match.
func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// QueryError wraps a failed statement. Op names the query for logs and metrics.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string { return e.Err.Error() }

func (e *QueryError) Unwrap() error { return e.Err }

// closeWithLog closes a resource and logs any error
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this on error paths where a Close error is not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
