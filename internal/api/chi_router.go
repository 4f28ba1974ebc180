// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cohortlens/internal/config"
	"github.com/tomtom215/cohortlens/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	metrics       config.MetricsConfig
}

// NewRouter creates a Router. A nil middleware config uses the defaults.
func NewRouter(handler *Handler, mw *ChiMiddlewareConfig, metricsCfg config.MetricsConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mw),
		metrics:       metricsCfg,
	}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to every route, outermost first.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(middleware.DefaultSlowRequestThreshold))
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(router.chiMiddleware.CORS()) // before routing so OPTIONS preflight is answered
	r.Use(middleware.Compression)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, detailNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, detailMethodNotAllowed)
	})

	r.Get("/", router.handler.Root)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.Health)
	})

	if router.metrics.Enabled {
		path := router.metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		r.Route("/auth", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitAuth())
			r.Post("/signup", router.handler.Signup)
			r.Post("/login", router.handler.Login)
			r.Post("/reset-password", router.handler.ResetPassword)
		})

		r.Get("/diseases", router.handler.Diseases)
		r.Post("/cohorts/build", router.handler.BuildCohort)

		r.Route("/measurements", func(r chi.Router) {
			r.Get("/available", router.handler.AvailableMeasurements)
			r.Post("/summary", router.handler.MeasurementSummary)
			r.Post("/by-age-sex", router.handler.MeasurementByAgeSex)
		})

		r.Get("/demographics", router.handler.Demographics)
	})

	return r
}
