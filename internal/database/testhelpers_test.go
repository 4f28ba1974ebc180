// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package database

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/cohortlens/internal/config"
)

// testDBSemaphore serializes tests that touch DuckDB files.
// Concurrent CGO opens of many instances can stall CI runners.
var testDBSemaphore = make(chan struct{}, 1)

// fixture describes which precomputed tables seedStore creates.
type fixture struct {
	measurementSummary  bool
	measurementByAgeSex bool
	demographics        bool
	emptyControl        bool
}

var fullFixture = fixture{measurementSummary: true, measurementByAgeSex: true, demographics: true}

// baseSchema seeds 100 persons:
//   - 30 with Type 2 diabetes (persons 1-30, person 1 has two occurrences)
//   - 10 with hypertension (persons 50-59)
//   - 5 with concept 312648, which has no concept row (persons 90-94)
var baseSchema = []string{
	`CREATE TABLE person (person_id BIGINT, gender_concept_id INTEGER, year_of_birth INTEGER)`,
	`INSERT INTO person SELECT range, 8507, 1970 FROM range(1, 101)`,
	`CREATE TABLE concept (concept_id INTEGER, concept_name VARCHAR)`,
	`INSERT INTO concept VALUES (201826, 'Type 2 diabetes mellitus'), (320128, 'Essential hypertension')`,
	`CREATE TABLE condition_occurrence (condition_occurrence_id BIGINT, person_id BIGINT, condition_concept_id INTEGER)`,
	`INSERT INTO condition_occurrence SELECT range, range, 201826 FROM range(1, 31)`,
	`INSERT INTO condition_occurrence VALUES (1000, 1, 201826)`,
	`INSERT INTO condition_occurrence SELECT 2000 + range, range, 320128 FROM range(50, 60)`,
	`INSERT INTO condition_occurrence SELECT 3000 + range, range, 312648 FROM range(90, 95)`,
	`INSERT INTO condition_occurrence VALUES (4000, 5, 999999)`,
}

var measurementSummarySchema = []string{
	`CREATE TABLE measurement_summary (cohort VARCHAR, n_measurements BIGINT, n_patients BIGINT,
		mean_value DOUBLE, median_value DOUBLE, p25 DOUBLE, p75 DOUBLE, min_value DOUBLE, max_value DOUBLE, std_dev DOUBLE)`,
	`INSERT INTO measurement_summary VALUES
		('CONTROL', 500, 70, 98.2, 97.0, 88.0, 107.5, 60.0, 180.0, 14.1),
		('CASE', 240, 30, 151.4, 148.0, 120.0, 178.0, 70.0, 390.0, NULL)`,
}

var measurementByAgeSexSchema = []string{
	`CREATE TABLE measurement_by_age_sex (cohort VARCHAR, age_group VARCHAR, gender VARCHAR,
		n_patients BIGINT, n_measurements BIGINT, mean_value DOUBLE, median_value DOUBLE)`,
	`INSERT INTO measurement_by_age_sex VALUES
		('CASE', '60+', 'Male', 4, 30, 160.0, 158.0),
		('CASE', '<20', 'Female', 1, 5, 120.0, 120.0),
		('CASE', '20-40', 'Male', 3, 20, 140.0, 139.0),
		('CASE', '20-40', 'Female', 2, 12, 138.0, 137.0),
		('CONTROL', '40-60', 'Male', 10, 80, 99.0, 98.0),
		('CASE', '40-60', 'Female', 5, 40, 150.0, 149.0)`,
}

func demographicsSchema(emptyControl bool) []string {
	stmts := []string{
		`CREATE TABLE demographics_case (person_id BIGINT, age_at_index INTEGER, gender VARCHAR)`,
		`INSERT INTO demographics_case VALUES (1, 50, 'Male'), (2, 61, 'Male'), (3, 45, 'Female')`,
		`CREATE TABLE demographics_control (person_id BIGINT, age_at_index INTEGER, gender VARCHAR)`,
	}
	if !emptyControl {
		stmts = append(stmts, `INSERT INTO demographics_control VALUES (10, 30, 'Female'), (11, 40, 'Female'), (12, 35, 'Male'), (13, 44, 'Unknown')`)
	}
	return stmts
}

// seedStore writes an OMOP fixture file and returns a Store reading it.
func seedStore(t *testing.T, fx fixture) *Store {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	path := filepath.Join(t.TempDir(), "omop.duckdb")

	stmts := append([]string{}, baseSchema...)
	if fx.measurementSummary {
		stmts = append(stmts, measurementSummarySchema...)
	}
	if fx.measurementByAgeSex {
		stmts = append(stmts, measurementByAgeSexSchema...)
	}
	if fx.demographics {
		stmts = append(stmts, demographicsSchema(fx.emptyControl)...)
	}
	writeFixture(t, path, stmts)

	store, err := New(&config.DatabaseConfig{Path: path, QueryTimeout: 30 * time.Second})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store
}

func writeFixture(t *testing.T, path string, stmts []string) {
	t.Helper()

	db, err := sql.Open(driverName, path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer db.Close()

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}
}

func ptr[T any](v T) *T { return &v }
