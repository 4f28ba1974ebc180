// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cohortlens/internal/database"
)

// TableChecker is the part of *database.Store the check command needs.
type TableChecker interface {
	Ping(ctx context.Context) error
	CheckTables(ctx context.Context) ([]database.TableStatus, error)
}

// storeOpener returns the store the check command inspects.
type storeOpener func() (TableChecker, error)

func openConfiguredStore() (TableChecker, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func checkCmd(openStore storeOpener) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report which OMOP and precomputed tables the store holds",
		Long: `Opens the configured DuckDB file read-only and lists every table the API
queries with its row count. Missing precomputed tables make the measurement
and demographics endpoints answer 404 until the ETL scripts have run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), store, cmd.OutOrStdout(), strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any table is missing")
	return cmd
}

// runCheck writes the table report to w. It fails when the store cannot be
// reached, or with strict set when any table is missing.
func runCheck(ctx context.Context, store TableChecker, w io.Writer, strict bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("store unavailable: %w", err)
	}

	statuses, err := store.CheckTables(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tKIND\tSTATUS\tROWS")
	missing := 0
	for _, st := range statuses {
		status, rows := "ok", fmt.Sprint(st.Rows)
		if !st.Present {
			status, rows = "missing", "-"
			missing++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", st.Name, st.Kind, status, rows)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if missing > 0 && strict {
		return fmt.Errorf("%d required table(s) missing", missing)
	}
	return nil
}
