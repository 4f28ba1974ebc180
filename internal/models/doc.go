// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

/*
Package models defines the request and response payloads of the API.

OMOP models (omop.go) mirror the analytical views served to the dashboard:

  - Disease: a tracked condition concept with its distinct patient count
  - CohortResult: case/control partition counts for one condition concept
  - MeasurementConcept: an entry of the fixed measurement catalog
  - MeasurementSummary, MeasurementByAgeSex, Demographics: rows of the
    precomputed summary tables

Auth models (auth.go) carry the mock account endpoints. JSON field names are
part of the front-end contract and must not change.
*/
package models
