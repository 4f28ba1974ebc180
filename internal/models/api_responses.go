// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package models

// ErrorResponse is the body of every non-2xx response.
//
//	{"detail": "Invalid credentials"}
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// RootResponse is the static liveness payload served at /.
type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// HealthResponse reports database connectivity.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// LivenessResponse reports that the process is serving requests.
type LivenessResponse struct {
	Status string `json:"status"`
}
