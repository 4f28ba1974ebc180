// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package models

// Cohort labels returned with cohort counts.
const (
	CaseCohortLabel    = "Disease"
	ControlCohortLabel = "Non-disease"
)

// GlucoseConceptID is the measurement used when a request names none.
const GlucoseConceptID int64 = 3034639

// Disease is a tracked condition concept and the number of distinct persons with it.
type Disease struct {
	ConceptID    int64  `json:"concept_id"`
	Name         string `json:"name"`
	PatientCount int64  `json:"patient_count"`
}

// CohortCount is the size of one side of the case/control partition.
type CohortCount struct {
	Count int64  `json:"count"`
	Label string `json:"label"`
}

// Cohorts holds both sides of the partition.
type Cohorts struct {
	Case    CohortCount `json:"case"`
	Control CohortCount `json:"control"`
}

// CohortResult is the response of the cohort builder.
// Case and control are the full complement over the person table, not a matched sample.
type CohortResult struct {
	Success          bool    `json:"success"`
	DiseaseConceptID int64   `json:"disease_concept_id"`
	Cohorts          Cohorts `json:"cohorts"`
}

// NewCohortResult labels raw case and control counts.
func NewCohortResult(conceptID, caseCount, controlCount int64) CohortResult {
	return CohortResult{
		Success:          true,
		DiseaseConceptID: conceptID,
		Cohorts: Cohorts{
			Case:    CohortCount{Count: caseCount, Label: CaseCohortLabel},
			Control: CohortCount{Count: controlCount, Label: ControlCohortLabel},
		},
	}
}

// MeasurementConcept is one entry of the measurement catalog.
type MeasurementConcept struct {
	ConceptID int64  `json:"concept_id"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
}

// MeasurementCatalog lists the measurements the dashboard can chart.
// The list is fixed and does not come from the database.
var MeasurementCatalog = []MeasurementConcept{
	{ConceptID: GlucoseConceptID, Name: "Glucose [Mass/volume] in Serum or Plasma", Unit: "mg/dL"},
	{ConceptID: 3004410, Name: "Hemoglobin A1c/Hemoglobin.total in Blood", Unit: "%"},
	{ConceptID: 3004249, Name: "Systolic Blood Pressure (SBP)", Unit: "mmHg"},
	{ConceptID: 3012888, Name: "Diastolic Blood Pressure (DBP)", Unit: "mmHg"},
}

// AvailableMeasurements returns a copy of the catalog.
func AvailableMeasurements() []MeasurementConcept {
	out := make([]MeasurementConcept, len(MeasurementCatalog))
	copy(out, MeasurementCatalog)
	return out
}

// MeasurementSummary is one cohort's descriptive statistics.
// Statistics are nullable in the source table and are passed through as-is.
type MeasurementSummary struct {
	Cohort        string   `json:"cohort"`
	NMeasurements *int64   `json:"n_measurements"`
	NPatients     *int64   `json:"n_patients"`
	Mean          *float64 `json:"mean"`
	Median        *float64 `json:"median"`
	P25           *float64 `json:"p25"`
	P75           *float64 `json:"p75"`
	Min           *float64 `json:"min"`
	Max           *float64 `json:"max"`
	StdDev        *float64 `json:"std_dev"`
}

// MeasurementByAgeSex is one cohort, age bucket and sex aggregate.
type MeasurementByAgeSex struct {
	Cohort        string   `json:"cohort"`
	AgeGroup      *string  `json:"age_group"`
	Gender        *string  `json:"gender"`
	NPatients     *int64   `json:"n_patients"`
	NMeasurements *int64   `json:"n_measurements"`
	MeanValue     *float64 `json:"mean_value"`
	MedianValue   *float64 `json:"median_value"`
}

// AgeGroups is the display order of the age buckets.
var AgeGroups = []string{"<20", "20-40", "40-60", "60+"}

// Demographics is one cohort's patient count, mean age and sex split.
type Demographics struct {
	Cohort    string   `json:"cohort"`
	NPatients int64    `json:"n_patients"`
	MeanAge   *float64 `json:"mean_age"`
	NMale     int64    `json:"n_male"`
	NFemale   int64    `json:"n_female"`
	PctMale   float64  `json:"pct_male"`
}

// DiseasesResponse wraps the disease listing.
type DiseasesResponse struct {
	Diseases []Disease `json:"diseases"`
}

// MeasurementsResponse wraps the measurement catalog.
type MeasurementsResponse struct {
	Measurements []MeasurementConcept `json:"measurements"`
}

// MeasurementSummaryResponse wraps the summary rows.
type MeasurementSummaryResponse struct {
	Summary []MeasurementSummary `json:"summary"`
}

// MeasurementByAgeSexResponse wraps the age/sex rows.
type MeasurementByAgeSexResponse struct {
	Data []MeasurementByAgeSex `json:"data"`
}

// DemographicsResponse wraps the demographics rows.
type DemographicsResponse struct {
	Demographics []Demographics `json:"demographics"`
}

// CohortRequest selects the condition concept defining the case cohort.
// The concept is not checked against the vocabulary; an unknown id yields an empty case cohort.
type CohortRequest struct {
	DiseaseConceptID *int64 `json:"disease_concept_id" validate:"required"`
}

// ConceptID returns the requested condition concept.
func (r CohortRequest) ConceptID() int64 {
	if r.DiseaseConceptID == nil {
		return 0
	}
	return *r.DiseaseConceptID
}

// MeasurementRequest names the disease context and measurement of a chart.
// Neither id filters the precomputed tables today.
type MeasurementRequest struct {
	DiseaseConceptID     *int64 `json:"disease_concept_id" validate:"required"`
	MeasurementConceptID *int64 `json:"measurement_concept_id,omitempty"`
}

// DiseaseID returns the disease context of the request.
func (r MeasurementRequest) DiseaseID() int64 {
	if r.DiseaseConceptID == nil {
		return 0
	}
	return *r.DiseaseConceptID
}

// MeasurementID returns the requested measurement, defaulting to glucose.
func (r MeasurementRequest) MeasurementID() int64 {
	if r.MeasurementConceptID == nil {
		return GlucoseConceptID
	}
	return *r.MeasurementConceptID
}
