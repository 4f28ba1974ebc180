// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cohortlens/internal/auth"
	"github.com/tomtom215/cohortlens/internal/config"
	"github.com/tomtom215/cohortlens/internal/models"
)

// fakeStore is an in-memory DataSource.
type fakeStore struct {
	mu sync.Mutex

	pingErr     error
	diseases    []models.Disease
	diseasesErr error

	totalPersons int64
	caseCounts   map[int64]int64
	cohortErr    error

	summary    []models.MeasurementSummary
	summaryErr error
	byAgeSex   []models.MeasurementByAgeSex
	ageSexErr  error

	demographics    []models.Demographics
	demographicsErr error

	lastMeasurementReq models.MeasurementRequest
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		totalPersons: 100,
		caseCounts:   map[int64]int64{201826: 30},
	}
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) ListDiseases(ctx context.Context) ([]models.Disease, error) {
	return f.diseases, f.diseasesErr
}

func (f *fakeStore) BuildCohort(ctx context.Context, conceptID int64) (models.CohortResult, error) {
	if f.cohortErr != nil {
		return models.CohortResult{}, f.cohortErr
	}
	c := f.caseCounts[conceptID]
	return models.NewCohortResult(conceptID, c, f.totalPersons-c), nil
}

func (f *fakeStore) MeasurementSummary(ctx context.Context, req models.MeasurementRequest) ([]models.MeasurementSummary, error) {
	f.mu.Lock()
	f.lastMeasurementReq = req
	f.mu.Unlock()
	return f.summary, f.summaryErr
}

func (f *fakeStore) MeasurementByAgeSex(ctx context.Context, req models.MeasurementRequest) ([]models.MeasurementByAgeSex, error) {
	f.mu.Lock()
	f.lastMeasurementReq = req
	f.mu.Unlock()
	return f.byAgeSex, f.ageSexErr
}

func (f *fakeStore) Demographics(ctx context.Context) ([]models.Demographics, error) {
	return f.demographics, f.demographicsErr
}

// testServer routes requests through the full middleware stack.
type testServer struct {
	store   *fakeStore
	handler http.Handler
}

func newTestServer(t *testing.T, mw *ChiMiddlewareConfig) *testServer {
	t.Helper()
	store := newFakeStore()
	accounts := auth.NewService(auth.NewMemoryStore(), nil)
	if mw == nil {
		mw = DefaultChiMiddlewareConfig()
		mw.RateLimitDisabled = true
	}
	router := NewRouter(NewHandler(store, accounts), mw, config.MetricsConfig{Enabled: true, Path: "/metrics"})
	return &testServer{store: store, handler: router.SetupChi()}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func detailOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[models.ErrorResponse](t, rec).Detail
}

func ptr[T any](v T) *T { return &v }
