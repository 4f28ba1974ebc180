// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

/*
Package services provides suture.Service wrappers for long-running components.

Each wrapper implements suture's Service interface and fmt.Stringer:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Available services:

  - HTTPServerService: runs an *http.Server, shutting it down gracefully
    when the context is canceled.
  - StoreMonitorService: probes the analytical store on an interval and
    publishes its availability as a gauge.

Returning an error from Serve asks the supervisor to restart the service.
Returning ctx.Err() after cancellation is a normal stop.
*/
package services
