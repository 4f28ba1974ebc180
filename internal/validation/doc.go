// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

// Package validation provides request body validation using go-playground/validator v10.
//
// A single validator instance is created on first use and shared; it caches
// struct metadata and is safe for concurrent use. Field names in messages are
// taken from json tags so they match what the client sent:
//
//	type CohortRequest struct {
//	    DiseaseConceptID *int64 `json:"disease_concept_id" validate:"required"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondError(w, http.StatusBadRequest, verr.Detail())
//	    return
//	}
//
// Produces "Validation error: disease_concept_id is required" for a body of {}.
package validation
