// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package database

import (
	"context"
	"database/sql"
)

// Table kinds reported by CheckTables.
const (
	TableKindOMOP        = "omop"
	TableKindPrecomputed = "precomputed"
)

// TableStatus describes one table the API reads.
type TableStatus struct {
	Name    string
	Kind    string
	Present bool
	Rows    int64 // 0 when absent
}

// RequiredTables lists every table the endpoints query, in check order.
var RequiredTables = []struct {
	Name string
	Kind string
}{
	{"person", TableKindOMOP},
	{"concept", TableKindOMOP},
	{"condition_occurrence", TableKindOMOP},
	{tableMeasurementSummary, TableKindPrecomputed},
	{tableMeasurementByAgeSex, TableKindPrecomputed},
	{tableDemographicsCase, TableKindPrecomputed},
	{tableDemographicsControl, TableKindPrecomputed},
}

// CheckTables reports presence and row count for every required table.
// A missing table is not an error.
func (s *Store) CheckTables(ctx context.Context) ([]TableStatus, error) {
	out := make([]TableStatus, 0, len(RequiredTables))
	err := s.WithConn(ctx, func(ctx context.Context, conn *sql.DB) error {
		for _, t := range RequiredTables {
			st := TableStatus{Name: t.Name, Kind: t.Kind}
			ok, err := tableExists(ctx, conn, t.Name)
			if err != nil {
				return err
			}
			if ok {
				st.Present = true
				// Names come from RequiredTables, never from input.
				st.Rows, err = queryCount(ctx, conn, "table_rows", t.Name, "SELECT COUNT(*) FROM "+t.Name)
				if err != nil {
					return err
				}
			}
			out = append(out, st)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
