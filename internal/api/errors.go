// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/cohortlens/internal/auth"
	"github.com/tomtom215/cohortlens/internal/database"
	"github.com/tomtom215/cohortlens/internal/logging"
)

// Response details for conditions the client can act on.
const (
	detailMeasurementNotFound  = "Measurement data not found. Please run generate_synthetic_measurements.sql first."
	detailDemographicsNotFound = "Demographics data not found. Please run demographics.sql first."
	detailDataNotGenerated     = "Precomputed data not found. Please run the data generation scripts first."
	detailUserExists           = "User already exists"
	detailInvalidCredentials   = "Invalid credentials"
	detailNotFound             = "Not Found"
	detailMethodNotAllowed     = "Method Not Allowed"
	detailRateLimited          = "Too many requests, please retry later"
)

// respondStoreError maps an analytical store error to a response.
// Data-not-generated errors keep their own 404; everything else is a 500
// carrying the store's message.
func respondStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()

	switch {
	case errors.Is(err, database.ErrMeasurementDataNotFound):
		logging.Ctx(ctx).Warn().Str("operation", op).Msg("Measurement tables not generated")
		respondError(w, http.StatusNotFound, detailMeasurementNotFound)
	case errors.Is(err, database.ErrDemographicsDataNotFound):
		logging.Ctx(ctx).Warn().Str("operation", op).Msg("Demographics tables not generated")
		respondError(w, http.StatusNotFound, detailDemographicsNotFound)
	case errors.Is(err, database.ErrDataNotGenerated):
		respondError(w, http.StatusNotFound, detailDataNotGenerated)
	default:
		logging.Ctx(ctx).Error().Err(err).Str("operation", op).Msg("Database error")
		respondError(w, http.StatusInternalServerError, "Database error: "+err.Error())
	}
}

// respondAuthError maps an account error to a response.
func respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUserExists):
		respondError(w, http.StatusBadRequest, detailUserExists)
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, detailInvalidCredentials)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Account operation failed")
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
