// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/tomtom215/cohortlens/internal/models"
)

// TrackedConditionIDs is the allow-list of condition concepts the disease listing reports.
var TrackedConditionIDs = []int64{
	201826, // Type 2 diabetes mellitus
	320128, // Essential hypertension
	312648, // Coronary arteriosclerosis
	432867, // Hyperlipidemia
}

// Precomputed tables written by the ETL.
const (
	tableMeasurementSummary  = "measurement_summary"
	tableMeasurementByAgeSex = "measurement_by_age_sex"
	tableDemographicsCase    = "demographics_case"
	tableDemographicsControl = "demographics_control"
)

var diseaseListQuery = `
	SELECT co.condition_concept_id, c.concept_name, COUNT(DISTINCT co.person_id) AS patient_count
	FROM condition_occurrence co
	LEFT JOIN concept c ON co.condition_concept_id = c.concept_id
	WHERE co.condition_concept_id IN (` + placeholders(len(TrackedConditionIDs)) + `)
	GROUP BY co.condition_concept_id, c.concept_name
	ORDER BY patient_count DESC, co.condition_concept_id`

const (
	caseCountQuery = `
	SELECT COUNT(DISTINCT person_id)
	FROM condition_occurrence
	WHERE condition_concept_id = ?`

	// NOT EXISTS keeps the complement correct even if person_id is ever NULL.
	controlCountQuery = `
	SELECT COUNT(DISTINCT p.person_id)
	FROM person p
	WHERE NOT EXISTS (
		SELECT 1 FROM condition_occurrence co
		WHERE co.person_id = p.person_id AND co.condition_concept_id = ?
	)`

	measurementSummaryQuery = `
	SELECT cohort,
		CAST(n_measurements AS BIGINT),
		CAST(n_patients AS BIGINT),
		CAST(mean_value AS DOUBLE),
		CAST(median_value AS DOUBLE),
		CAST(p25 AS DOUBLE),
		CAST(p75 AS DOUBLE),
		CAST(min_value AS DOUBLE),
		CAST(max_value AS DOUBLE),
		CAST(std_dev AS DOUBLE)
	FROM measurement_summary
	ORDER BY cohort`

	demographicsQuery = `
	SELECT * FROM (
		SELECT 'CASE' AS cohort,
			COUNT(*) AS n_patients,
			CAST(ROUND(AVG(age_at_index), 1) AS DOUBLE) AS mean_age,
			COUNT(CASE WHEN gender = 'Male' THEN 1 END) AS n_male,
			COUNT(CASE WHEN gender = 'Female' THEN 1 END) AS n_female
		FROM demographics_case
		UNION ALL
		SELECT 'CONTROL' AS cohort,
			COUNT(*),
			CAST(ROUND(AVG(age_at_index), 1) AS DOUBLE),
			COUNT(CASE WHEN gender = 'Male' THEN 1 END),
			COUNT(CASE WHEN gender = 'Female' THEN 1 END)
		FROM demographics_control
	) ORDER BY cohort`
)

// measurementByAgeSexQuery orders buckets by models.AgeGroups; unknown
// buckets rank NULL and sort last within a cohort.
var measurementByAgeSexQuery = `
	SELECT cohort, age_group, gender,
		CAST(n_patients AS BIGINT),
		CAST(n_measurements AS BIGINT),
		CAST(mean_value AS DOUBLE),
		CAST(median_value AS DOUBLE)
	FROM measurement_by_age_sex
	ORDER BY cohort, ` + ageGroupRank(models.AgeGroups) + ` NULLS LAST, gender`

// ageGroupRank renders a CASE expression ranking age_group by its position
// in groups.
func ageGroupRank(groups []string) string {
	var b strings.Builder
	b.WriteString("CASE age_group")
	for i, g := range groups {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", strings.ReplaceAll(g, "'", "''"), i+1)
	}
	b.WriteString(" END")
	return b.String()
}

// ListDiseases counts distinct persons per tracked condition, most frequent first.
// Concepts with no occurrences are omitted.
func (s *Store) ListDiseases(ctx context.Context) ([]models.Disease, error) {
	diseases := make([]models.Disease, 0, len(TrackedConditionIDs))
	err := s.WithConn(ctx, func(ctx context.Context, conn *sql.DB) error {
		return queryAndScan(ctx, conn, "list_diseases", "condition_occurrence", diseaseListQuery, int64Args(TrackedConditionIDs),
			func(rows *sql.Rows) error {
				var (
					d    models.Disease
					name sql.NullString
				)
				if err := rows.Scan(&d.ConceptID, &name, &d.PatientCount); err != nil {
					return err
				}
				if name.Valid && name.String != "" {
					d.Name = name.String
				} else {
					d.Name = conditionLabel(d.ConceptID)
				}
				diseases = append(diseases, d)
				return nil
			})
	})
	if err != nil {
		return nil, err
	}
	return diseases, nil
}

// BuildCohort partitions all persons into those with at least one occurrence of
// conceptID (case) and those with none (control). The concept is not validated.
func (s *Store) BuildCohort(ctx context.Context, conceptID int64) (models.CohortResult, error) {
	var caseCount, controlCount int64
	err := s.WithConn(ctx, func(ctx context.Context, conn *sql.DB) error {
		var err error
		caseCount, err = queryCount(ctx, conn, "cohort_case", "condition_occurrence", caseCountQuery, conceptID)
		if err != nil {
			return err
		}
		controlCount, err = queryCount(ctx, conn, "cohort_control", "person", controlCountQuery, conceptID)
		return err
	})
	if err != nil {
		return models.CohortResult{}, err
	}
	return models.NewCohortResult(conceptID, caseCount, controlCount), nil
}

// MeasurementSummary returns the precomputed per-cohort statistics.
// The request ids select no rows today; the table holds a single disease context.
func (s *Store) MeasurementSummary(ctx context.Context, req models.MeasurementRequest) ([]models.MeasurementSummary, error) {
	var out []models.MeasurementSummary
	err := s.WithConn(ctx, func(ctx context.Context, conn *sql.DB) error {
		if err := requireTable(ctx, conn, tableMeasurementSummary, ErrMeasurementDataNotFound); err != nil {
			return err
		}
		return queryAndScan(ctx, conn, "measurement_summary", tableMeasurementSummary, measurementSummaryQuery, nil,
			func(rows *sql.Rows) error {
				var (
					row            models.MeasurementSummary
					cohort         sql.NullString
					nMeas, nPat    sql.NullInt64
					mean, median   sql.NullFloat64
					p25, p75       sql.NullFloat64
					minV, maxV, sd sql.NullFloat64
				)
				if err := rows.Scan(&cohort, &nMeas, &nPat, &mean, &median, &p25, &p75, &minV, &maxV, &sd); err != nil {
					return err
				}
				row.Cohort = cohort.String
				row.NMeasurements = nullInt(nMeas)
				row.NPatients = nullInt(nPat)
				row.Mean = nullFloat(mean)
				row.Median = nullFloat(median)
				row.P25 = nullFloat(p25)
				row.P75 = nullFloat(p75)
				row.Min = nullFloat(minV)
				row.Max = nullFloat(maxV)
				row.StdDev = nullFloat(sd)
				out = append(out, row)
				return nil
			})
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.MeasurementSummary{}
	}
	return out, nil
}

// MeasurementByAgeSex returns the precomputed cohort/age/sex aggregates in display order.
func (s *Store) MeasurementByAgeSex(ctx context.Context, req models.MeasurementRequest) ([]models.MeasurementByAgeSex, error) {
	var out []models.MeasurementByAgeSex
	err := s.WithConn(ctx, func(ctx context.Context, conn *sql.DB) error {
		if err := requireTable(ctx, conn, tableMeasurementByAgeSex, ErrMeasurementDataNotFound); err != nil {
			return err
		}
		return queryAndScan(ctx, conn, "measurement_by_age_sex", tableMeasurementByAgeSex, measurementByAgeSexQuery, nil,
			func(rows *sql.Rows) error {
				var (
					row              models.MeasurementByAgeSex
					cohort           sql.NullString
					ageGroup, gender sql.NullString
					nPat, nMeas      sql.NullInt64
					mean, median     sql.NullFloat64
				)
				if err := rows.Scan(&cohort, &ageGroup, &gender, &nPat, &nMeas, &mean, &median); err != nil {
					return err
				}
				row.Cohort = cohort.String
				row.AgeGroup = nullString(ageGroup)
				row.Gender = nullString(gender)
				row.NPatients = nullInt(nPat)
				row.NMeasurements = nullInt(nMeas)
				row.MeanValue = nullFloat(mean)
				row.MedianValue = nullFloat(median)
				out = append(out, row)
				return nil
			})
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.MeasurementByAgeSex{}
	}
	return out, nil
}

// Demographics returns patient count, mean age and sex split for both cohorts.
func (s *Store) Demographics(ctx context.Context) ([]models.Demographics, error) {
	out := make([]models.Demographics, 0, 2)
	err := s.WithConn(ctx, func(ctx context.Context, conn *sql.DB) error {
		if err := requireTable(ctx, conn, tableDemographicsCase, ErrDemographicsDataNotFound); err != nil {
			return err
		}
		return queryAndScan(ctx, conn, "demographics", tableDemographicsCase, demographicsQuery, nil,
			func(rows *sql.Rows) error {
				var (
					row     models.Demographics
					meanAge sql.NullFloat64
				)
				if err := rows.Scan(&row.Cohort, &row.NPatients, &meanAge, &row.NMale, &row.NFemale); err != nil {
					return err
				}
				row.MeanAge = nullFloat(meanAge)
				row.PctMale = PercentMale(row.NMale, row.NPatients)
				out = append(out, row)
				return nil
			})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PercentMale is 100*nMale/nPatients rounded to one decimal, or 0 for an empty cohort.
func PercentMale(nMale, nPatients int64) float64 {
	if nPatients <= 0 {
		return 0
	}
	pct := 100 * float64(nMale) / float64(nPatients)
	return math.Round(pct*10) / 10
}

// requireTable returns missing when table is absent from the catalog.
func requireTable(ctx context.Context, conn *sql.DB, table string, missing error) error {
	ok, err := tableExists(ctx, conn, table)
	if err != nil {
		return err
	}
	if !ok {
		return missing
	}
	return nil
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}
