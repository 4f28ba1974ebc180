// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

/*
Package supervisor runs the long-lived services under suture v4.

	RootSupervisor ("cohortlens")
	├── DataSupervisor ("data-layer")
	│   └── StoreMonitorService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A service that returns an error is restarted with backoff. Canceling the
context passed to Serve stops every service; each gets ShutdownTimeout to
return. Supervisor events go to the slog logger given to NewSupervisorTree,
which main bridges onto zerolog.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewStoreMonitorService(store, 30*time.Second))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor
