// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/cohortlens/internal/logging"
	"github.com/tomtom215/cohortlens/internal/models"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// DataSource is the read-only analytical store the handlers query.
// *database.Store implements it.
type DataSource interface {
	Ping(ctx context.Context) error
	ListDiseases(ctx context.Context) ([]models.Disease, error)
	BuildCohort(ctx context.Context, conceptID int64) (models.CohortResult, error)
	MeasurementSummary(ctx context.Context, req models.MeasurementRequest) ([]models.MeasurementSummary, error)
	MeasurementByAgeSex(ctx context.Context, req models.MeasurementRequest) ([]models.MeasurementByAgeSex, error)
	Demographics(ctx context.Context) ([]models.Demographics, error)
}

// AccountService handles the mock identity endpoints.
// *auth.Service implements it.
type AccountService interface {
	Signup(ctx context.Context, req models.SignupRequest) (models.SignupResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error)
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) models.MessageResponse
}

// Handler holds the dependencies of every endpoint.
type Handler struct {
	store    DataSource
	accounts AccountService
}

// NewHandler creates a Handler.
func NewHandler(store DataSource, accounts AccountService) *Handler {
	return &Handler{store: store, accounts: accounts}
}

// Root returns a static payload without touching the store.
// GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.RootResponse{
		Status:  "healthy",
		Message: "OMOP Cohort Analysis API",
		Version: Version,
	})
}

// Health runs SELECT 1 against the store.
// GET /health and GET /health/ready
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check failed")
		respondError(w, http.StatusServiceUnavailable, "Database unavailable: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, models.HealthResponse{Status: "healthy", Database: "connected"})
}

// HealthLive reports that the process is serving requests.
// GET /health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.LivenessResponse{Status: "alive"})
}

// Signup creates a mock account.
// POST /api/auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if !bindRequest(w, r, &req) {
		return
	}

	resp, err := h.accounts.Signup(r.Context(), req)
	if err != nil {
		respondAuthError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Login checks mock credentials.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !bindRequest(w, r, &req) {
		return
	}

	resp, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		respondAuthError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// ResetPassword acknowledges a reset request for any email.
// POST /api/auth/reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if !bindRequest(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, h.accounts.ResetPassword(r.Context(), req))
}

// Diseases lists the tracked conditions by patient count.
// GET /api/diseases
func (h *Handler) Diseases(w http.ResponseWriter, r *http.Request) {
	diseases, err := h.store.ListDiseases(r.Context())
	if err != nil {
		respondStoreError(w, r, "list_diseases", err)
		return
	}
	respondJSON(w, http.StatusOK, models.DiseasesResponse{Diseases: diseases})
}

// BuildCohort partitions persons into case and control for a condition.
// POST /api/cohorts/build
func (h *Handler) BuildCohort(w http.ResponseWriter, r *http.Request) {
	var req models.CohortRequest
	if !bindRequest(w, r, &req) {
		return
	}

	result, err := h.store.BuildCohort(r.Context(), req.ConceptID())
	if err != nil {
		respondStoreError(w, r, "build_cohort", err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Int64("disease_concept_id", result.DiseaseConceptID).
		Int64("case", result.Cohorts.Case.Count).
		Int64("control", result.Cohorts.Control.Count).
		Msg("Cohort built")

	respondJSON(w, http.StatusOK, result)
}

// AvailableMeasurements returns the fixed measurement catalog.
// GET /api/measurements/available
func (h *Handler) AvailableMeasurements(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.MeasurementsResponse{Measurements: models.AvailableMeasurements()})
}

// MeasurementSummary returns per-cohort measurement statistics.
// POST /api/measurements/summary
func (h *Handler) MeasurementSummary(w http.ResponseWriter, r *http.Request) {
	var req models.MeasurementRequest
	if !bindRequest(w, r, &req) {
		return
	}
	logMeasurementRequest(r, "measurement_summary", req)

	rows, err := h.store.MeasurementSummary(r.Context(), req)
	if err != nil {
		respondStoreError(w, r, "measurement_summary", err)
		return
	}
	respondJSON(w, http.StatusOK, models.MeasurementSummaryResponse{Summary: rows})
}

// MeasurementByAgeSex returns measurement aggregates by cohort, age group and sex.
// POST /api/measurements/by-age-sex
func (h *Handler) MeasurementByAgeSex(w http.ResponseWriter, r *http.Request) {
	var req models.MeasurementRequest
	if !bindRequest(w, r, &req) {
		return
	}
	logMeasurementRequest(r, "measurement_by_age_sex", req)

	rows, err := h.store.MeasurementByAgeSex(r.Context(), req)
	if err != nil {
		respondStoreError(w, r, "measurement_by_age_sex", err)
		return
	}
	respondJSON(w, http.StatusOK, models.MeasurementByAgeSexResponse{Data: rows})
}

// Demographics returns per-cohort patient count, mean age and sex split.
// GET /api/demographics
func (h *Handler) Demographics(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.Demographics(r.Context())
	if err != nil {
		respondStoreError(w, r, "demographics", err)
		return
	}
	respondJSON(w, http.StatusOK, models.DemographicsResponse{Demographics: rows})
}

// logMeasurementRequest records the requested ids; the precomputed tables are not filtered by them.
func logMeasurementRequest(r *http.Request, op string, req models.MeasurementRequest) {
	logging.Ctx(r.Context()).Debug().
		Str("operation", op).
		Int64("disease_concept_id", req.DiseaseID()).
		Int64("measurement_concept_id", req.MeasurementID()).
		Msg("Measurement request")
}
