// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/cohortlens/internal/metrics"
)

func TestPrometheusMetrics_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/test/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Post("/test/implicit", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	teapot := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/test/items/{id}", "418")
	implicit := metrics.APIRequestsTotal.WithLabelValues(http.MethodPost, "/test/implicit", "200")
	beforeTeapot := testutil.ToFloat64(teapot)
	beforeImplicit := testutil.ToFloat64(implicit)

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test/items/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/test/implicit", nil))

	if got := testutil.ToFloat64(teapot) - beforeTeapot; got != 3 {
		t.Errorf("pattern counter delta = %v, want 3", got)
	}
	if got := testutil.ToFloat64(implicit) - beforeImplicit; got != 1 {
		t.Errorf("implicit 200 counter delta = %v, want 1", got)
	}
}

func TestPrometheusMetrics_Unmatched(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/known", func(w http.ResponseWriter, r *http.Request) {})

	c := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404")
	before := testutil.ToFloat64(c)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/one", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/two", nil))

	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Errorf("unmatched counter delta = %v, want 2", got)
	}
}

func TestPrometheusMetrics_ActiveRequestsReturnsToBaseline(t *testing.T) {
	before := testutil.ToFloat64(metrics.APIActiveRequests)

	var during float64
	h := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = testutil.ToFloat64(metrics.APIActiveRequests)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if during < before+1 {
		t.Errorf("in-flight gauge during request = %v, want >= %v", during, before+1)
	}
	if after := testutil.ToFloat64(metrics.APIActiveRequests); after != before {
		t.Errorf("in-flight gauge after request = %v, want %v", after, before)
	}
}
