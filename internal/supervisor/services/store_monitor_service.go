// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package services

import (
	"context"
	"time"

	"github.com/tomtom215/cohortlens/internal/logging"
	"github.com/tomtom215/cohortlens/internal/metrics"
)

// Pinger checks that the analytical store can be reached.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreMonitorService probes the analytical store on an interval.
//
// It publishes the result as the duckdb_store_available gauge and logs only
// when availability changes, so a store produced by a late ETL run shows up
// in the logs once. Request handling never waits on it.
type StoreMonitorService struct {
	store        Pinger
	interval     time.Duration
	probeTimeout time.Duration

	// available is nil until the first probe completes.
	available *bool
}

// NewStoreMonitorService creates a monitor probing every interval (minimum 1s, default 30s).
func NewStoreMonitorService(store Pinger, interval time.Duration) *StoreMonitorService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if interval < time.Second {
		interval = time.Second
	}
	timeout := interval / 2
	if timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	return &StoreMonitorService{
		store:        store,
		interval:     interval,
		probeTimeout: timeout,
	}
}

// Serve implements suture.Service.
func (s *StoreMonitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

func (s *StoreMonitorService) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	err := s.store.Ping(probeCtx)
	if ctx.Err() != nil {
		return // shutting down
	}

	ok := err == nil
	if ok {
		metrics.DBStoreAvailable.Set(1)
	} else {
		metrics.DBStoreAvailable.Set(0)
	}

	if s.available != nil && *s.available == ok {
		return
	}
	s.available = &ok

	log := logging.WithComponent("store-monitor")
	if ok {
		log.Info().Msg("Analytical store is available")
	} else {
		log.Warn().Err(err).Msg("Analytical store is unavailable")
	}
}

// String implements fmt.Stringer for suture's event log.
func (s *StoreMonitorService) String() string {
	return "store-monitor"
}
