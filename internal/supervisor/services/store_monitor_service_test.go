// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/cohortlens/internal/metrics"
)

// scriptedPinger returns errs in order, then repeats the last one.
type scriptedPinger struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (p *scriptedPinger) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	if i >= len(p.errs) {
		i = len(p.errs) - 1
	}
	p.calls++
	return p.errs[i]
}

func (p *scriptedPinger) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestNewStoreMonitorService_Interval(t *testing.T) {
	tests := []struct {
		in, want time.Duration
	}{
		{0, 30 * time.Second},
		{-time.Second, 30 * time.Second},
		{10 * time.Millisecond, time.Second},
		{time.Minute, time.Minute},
	}
	for _, tt := range tests {
		if got := NewStoreMonitorService(&scriptedPinger{errs: []error{nil}}, tt.in).interval; got != tt.want {
			t.Errorf("interval(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// The gauge is process-global, so these probes run sequentially.
func TestStoreMonitorService_ProbeUpdatesGauge(t *testing.T) {
	p := &scriptedPinger{errs: []error{errors.New("no file"), nil, nil}}
	svc := NewStoreMonitorService(p, time.Second)
	ctx := context.Background()

	svc.probe(ctx)
	if got := testutil.ToFloat64(metrics.DBStoreAvailable); got != 0 {
		t.Errorf("after failure gauge = %v, want 0", got)
	}
	if svc.available == nil || *svc.available {
		t.Error("state should be unavailable")
	}

	svc.probe(ctx)
	if got := testutil.ToFloat64(metrics.DBStoreAvailable); got != 1 {
		t.Errorf("after recovery gauge = %v, want 1", got)
	}
	if !*svc.available {
		t.Error("state should be available")
	}

	svc.probe(ctx)
	if p.Calls() != 3 {
		t.Errorf("calls = %d, want 3", p.Calls())
	}
}

func TestStoreMonitorService_StopsOnCancel(t *testing.T) {
	p := &scriptedPinger{errs: []error{nil}}
	svc := NewStoreMonitorService(p, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(time.Second)
	for p.Calls() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if p.Calls() == 0 {
		t.Fatal("no initial probe")
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not stop")
	}
	if got := svc.String(); got != "store-monitor" {
		t.Errorf("String() = %q", got)
	}
}
