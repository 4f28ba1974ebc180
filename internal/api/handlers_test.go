// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/tomtom215/cohortlens/internal/database"
	"github.com/tomtom215/cohortlens/internal/models"
)

func TestRoot(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	srv.store.pingErr = errors.New("store must not be touched")

	rec := srv.do(t, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decodeBody[models.RootResponse](t, rec)
	if got.Status != "healthy" || got.Message != "OMOP Cohort Analysis API" || got.Version != Version {
		t.Errorf("root = %+v", got)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		pingErr    error
		wantStatus int
		wantDetail string
	}{
		{name: "healthy", path: "/health", wantStatus: http.StatusOK},
		{name: "ready healthy", path: "/health/ready", wantStatus: http.StatusOK},
		{
			name:       "store unavailable",
			path:       "/health",
			pingErr:    &database.UnavailableError{Err: errors.New("IO Error: Cannot open file")},
			wantStatus: http.StatusServiceUnavailable,
			wantDetail: "Database unavailable: IO Error: Cannot open file",
		},
		{
			name:       "ready unavailable",
			path:       "/health/ready",
			pingErr:    &database.UnavailableError{Err: errors.New("locked")},
			wantStatus: http.StatusServiceUnavailable,
			wantDetail: "Database unavailable: locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newTestServer(t, nil)
			srv.store.pingErr = tt.pingErr

			rec := srv.do(t, http.MethodGet, tt.path, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantDetail != "" {
				if got := detailOf(t, rec); got != tt.wantDetail {
					t.Errorf("detail = %q, want %q", got, tt.wantDetail)
				}
				return
			}
			got := decodeBody[models.HealthResponse](t, rec)
			if got.Status != "healthy" || got.Database != "connected" {
				t.Errorf("health = %+v", got)
			}
		})
	}
}

func TestHealthLiveIgnoresStore(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	srv.store.pingErr = errors.New("down")

	rec := srv.do(t, http.MethodGet, "/health/live", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody[models.LivenessResponse](t, rec); got.Status != "alive" {
		t.Errorf("live = %+v", got)
	}
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/auth/signup", `{"email":"ann@example.com","password":"pw","name":"Ann"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("signup status = %d: %s", rec.Code, rec.Body.String())
	}
	signup := decodeBody[models.SignupResponse](t, rec)
	if !signup.Success || signup.User.Email != "ann@example.com" || signup.User.Name != "Ann" {
		t.Errorf("signup = %+v", signup)
	}

	rec = srv.do(t, http.MethodPost, "/api/auth/signup", `{"email":"ann@example.com","password":"other","name":"Imposter"}`)
	if rec.Code != http.StatusBadRequest || detailOf(t, rec) != "User already exists" {
		t.Errorf("duplicate signup = %d %s", rec.Code, rec.Body.String())
	}

	rec = srv.do(t, http.MethodPost, "/api/auth/login", `{"email":"ann@example.com","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	login := decodeBody[models.LoginResponse](t, rec)
	if login.Token != "mock_token_ann@example.com" || login.User.Name != "Ann" {
		t.Errorf("login = %+v", login)
	}

	for _, body := range []string{
		`{"email":"ann@example.com","password":"other"}`,
		`{"email":"nobody@example.com","password":"pw"}`,
		`{"email":"ann@example.com","password":""}`,
		`{"email":"ann@example.com"}`,
		`{"email":"nobody@example.com","password":""}`,
	} {
		rec = srv.do(t, http.MethodPost, "/api/auth/login", body)
		if rec.Code != http.StatusUnauthorized || detailOf(t, rec) != "Invalid credentials" {
			t.Errorf("login %s = %d %s", body, rec.Code, rec.Body.String())
		}
	}
}

func TestResetPasswordSameShapeForAnyEmail(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	srv.do(t, http.MethodPost, "/api/auth/signup", `{"email":"known@example.com","password":"pw","name":"K"}`)

	for _, email := range []string{"known@example.com", "unknown@example.com"} {
		rec := srv.do(t, http.MethodPost, "/api/auth/reset-password", fmt.Sprintf(`{"email":%q}`, email))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", email, rec.Code)
		}
		got := decodeBody[models.MessageResponse](t, rec)
		if !got.Success || got.Message != "Password reset email sent to "+email {
			t.Errorf("%s: reset = %+v", email, got)
		}
	}
}

func TestRequestValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		body       string
		wantDetail string
	}{
		{name: "signup bad email", path: "/api/auth/signup", body: `{"email":"nope","password":"x","name":"n"}`, wantDetail: "email must be a valid email address"},
		{name: "signup missing fields", path: "/api/auth/signup", body: `{}`, wantDetail: "password is required"},
		{name: "login malformed json", path: "/api/auth/login", body: `{"email":`, wantDetail: "Invalid request body"},
		{name: "cohort missing concept", path: "/api/cohorts/build", body: `{}`, wantDetail: "disease_concept_id is required"},
		{name: "cohort wrong type", path: "/api/cohorts/build", body: `{"disease_concept_id":"abc"}`, wantDetail: "Invalid request body"},
		{name: "cohort empty body", path: "/api/cohorts/build", body: "", wantDetail: "body is empty"},
		{name: "cohort array body", path: "/api/cohorts/build", body: `[1]`, wantDetail: "Invalid request body"},
		{name: "summary missing disease", path: "/api/measurements/summary", body: `{"measurement_concept_id":3034639}`, wantDetail: "disease_concept_id is required"},
		{name: "by-age-sex missing disease", path: "/api/measurements/by-age-sex", body: `{}`, wantDetail: "disease_concept_id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newTestServer(t, nil)
			rec := srv.do(t, http.MethodPost, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
			if got := detailOf(t, rec); !strings.Contains(got, tt.wantDetail) {
				t.Errorf("detail = %q, want it to contain %q", got, tt.wantDetail)
			}
		})
	}
}

func TestRequestBodyTooLarge(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	body := `{"disease_concept_id":201826,"pad":"` + strings.Repeat("x", maxRequestBodyBytes) + `"}`
	rec := srv.do(t, http.MethodPost, "/api/cohorts/build", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDiseases(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	srv.store.diseases = []models.Disease{
		{ConceptID: 201826, Name: "Type 2 diabetes mellitus", PatientCount: 30},
		{ConceptID: 312648, Name: "Condition 312648", PatientCount: 5},
	}

	rec := srv.do(t, http.MethodGet, "/api/diseases", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decodeBody[models.DiseasesResponse](t, rec)
	if len(got.Diseases) != 2 || got.Diseases[1].Name != "Condition 312648" {
		t.Errorf("diseases = %+v", got.Diseases)
	}
	if !strings.Contains(rec.Body.String(), `"patient_count":30`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestBuildCohort(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/cohorts/build", `{"disease_concept_id":201826}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[models.CohortResult](t, rec)
	if !got.Success || got.DiseaseConceptID != 201826 {
		t.Errorf("result = %+v", got)
	}
	if got.Cohorts.Case.Count != 30 || got.Cohorts.Control.Count != 70 {
		t.Errorf("counts = %+v", got.Cohorts)
	}
	if got.Cohorts.Case.Label != "Disease" || got.Cohorts.Control.Label != "Non-disease" {
		t.Errorf("labels = %+v", got.Cohorts)
	}

	rec = srv.do(t, http.MethodPost, "/api/cohorts/build", `{"disease_concept_id":0}`)
	if rec.Code != http.StatusOK {
		t.Errorf("concept 0 status = %d", rec.Code)
	}
}

func TestAvailableMeasurements(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	srv.store.pingErr = errors.New("unused")

	rec := srv.do(t, http.MethodGet, "/api/measurements/available", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decodeBody[models.MeasurementsResponse](t, rec)
	if len(got.Measurements) != 4 {
		t.Fatalf("got %d measurements, want 4", len(got.Measurements))
	}
	want := models.MeasurementConcept{ConceptID: 3034639, Name: "Glucose [Mass/volume] in Serum or Plasma", Unit: "mg/dL"}
	if got.Measurements[0] != want {
		t.Errorf("first = %+v, want %+v", got.Measurements[0], want)
	}
}

func TestMeasurementSummary(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	srv.store.summary = []models.MeasurementSummary{
		{Cohort: "CASE", NPatients: ptr(int64(30)), Mean: ptr(151.4)},
		{Cohort: "CONTROL", NPatients: ptr(int64(70))},
	}

	rec := srv.do(t, http.MethodPost, "/api/measurements/summary", `{"disease_concept_id":201826}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[models.MeasurementSummaryResponse](t, rec)
	if len(got.Summary) != 2 || *got.Summary[0].Mean != 151.4 {
		t.Errorf("summary = %+v", got.Summary)
	}
	if !strings.Contains(rec.Body.String(), `"std_dev":null`) {
		t.Errorf("null statistics should be passed through: %s", rec.Body.String())
	}
	if id := srv.store.lastMeasurementReq.MeasurementID(); id != models.GlucoseConceptID {
		t.Errorf("default measurement id = %d, want glucose", id)
	}
}

func TestMeasurementByAgeSex(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	srv.store.byAgeSex = []models.MeasurementByAgeSex{
		{Cohort: "CASE", AgeGroup: ptr("<20"), Gender: ptr("Female"), NPatients: ptr(int64(1))},
	}

	rec := srv.do(t, http.MethodPost, "/api/measurements/by-age-sex", `{"disease_concept_id":201826,"measurement_concept_id":3004410}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[models.MeasurementByAgeSexResponse](t, rec)
	if len(got.Data) != 1 || *got.Data[0].AgeGroup != "<20" {
		t.Errorf("data = %+v", got.Data)
	}
	if id := srv.store.lastMeasurementReq.MeasurementID(); id != 3004410 {
		t.Errorf("measurement id = %d, want 3004410", id)
	}
}

func TestDemographics(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	srv.store.demographics = []models.Demographics{
		{Cohort: "CASE", NPatients: 3, MeanAge: ptr(52.0), NMale: 2, NFemale: 1, PctMale: 66.7},
		{Cohort: "CONTROL", NPatients: 0, PctMale: 0},
	}

	rec := srv.do(t, http.MethodGet, "/api/demographics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decodeBody[models.DemographicsResponse](t, rec)
	if len(got.Demographics) != 2 || got.Demographics[0].PctMale != 66.7 {
		t.Errorf("demographics = %+v", got.Demographics)
	}
}

func TestStoreErrorMapping(t *testing.T) {
	t.Parallel()

	queryErr := &database.QueryError{Op: "x", Err: errors.New("Catalog Error: Table with name person does not exist!")}
	unavailable := &database.UnavailableError{Err: errors.New("IO Error: no such file")}

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		setup      func(*fakeStore)
		wantStatus int
		wantDetail string
	}{
		{
			name: "summary not generated", method: http.MethodPost, path: "/api/measurements/summary", body: `{"disease_concept_id":1}`,
			setup:      func(f *fakeStore) { f.summaryErr = database.ErrMeasurementDataNotFound },
			wantStatus: http.StatusNotFound, wantDetail: detailMeasurementNotFound,
		},
		{
			name: "by-age-sex not generated", method: http.MethodPost, path: "/api/measurements/by-age-sex", body: `{"disease_concept_id":1}`,
			setup:      func(f *fakeStore) { f.ageSexErr = database.ErrMeasurementDataNotFound },
			wantStatus: http.StatusNotFound, wantDetail: detailMeasurementNotFound,
		},
		{
			name: "demographics not generated", method: http.MethodGet, path: "/api/demographics",
			setup:      func(f *fakeStore) { f.demographicsErr = database.ErrDemographicsDataNotFound },
			wantStatus: http.StatusNotFound, wantDetail: detailDemographicsNotFound,
		},
		{
			name: "wrapped not generated keeps 404", method: http.MethodGet, path: "/api/demographics",
			setup:      func(f *fakeStore) { f.demographicsErr = fmt.Errorf("load: %w", database.ErrDemographicsDataNotFound) },
			wantStatus: http.StatusNotFound, wantDetail: detailDemographicsNotFound,
		},
		{
			name: "other precomputed table not generated", method: http.MethodGet, path: "/api/demographics",
			setup:      func(f *fakeStore) { f.demographicsErr = fmt.Errorf("age bands: %w", database.ErrDataNotGenerated) },
			wantStatus: http.StatusNotFound, wantDetail: detailDataNotGenerated,
		},
		{
			name: "diseases query error", method: http.MethodGet, path: "/api/diseases",
			setup:      func(f *fakeStore) { f.diseasesErr = queryErr },
			wantStatus: http.StatusInternalServerError, wantDetail: "Database error: Catalog Error: Table with name person does not exist!",
		},
		{
			name: "cohort store unavailable", method: http.MethodPost, path: "/api/cohorts/build", body: `{"disease_concept_id":1}`,
			setup:      func(f *fakeStore) { f.cohortErr = unavailable },
			wantStatus: http.StatusInternalServerError, wantDetail: "Database error: IO Error: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newTestServer(t, nil)
			tt.setup(srv.store)

			rec := srv.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := detailOf(t, rec); got != tt.wantDetail {
				t.Errorf("detail = %q, want %q", got, tt.wantDetail)
			}
		})
	}
}
