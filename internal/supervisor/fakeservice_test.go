// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// fakeService counts its starts and optionally fails the first N of them.
type fakeService struct {
	name     string
	starts   atomic.Int32
	failures int32
}

func newFakeService(name string, failures int) *fakeService {
	return &fakeService{name: name, failures: int32(failures)}
}

func (f *fakeService) Serve(ctx context.Context) error {
	n := f.starts.Add(1)
	if n <= f.failures {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeService) StartCount() int32 { return f.starts.Load() }

func (f *fakeService) String() string { return f.name }
