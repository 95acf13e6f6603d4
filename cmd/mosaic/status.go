// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mosaic-dev/mosaic/internal/db/migrate"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied migration history",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	client, cfg, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	runner := migrate.NewRunner(client, migrate.Migrations())
	history := runner.History(cmd.Context())

	out := cmd.OutOrStdout()
	if len(history) == 0 {
		_, _ = fmt.Fprintf(out, "database %q: no migrations applied\n", cfg.Storage.Backend)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VERSION\tDESCRIPTION\tAPPLIED AT")
	for _, rec := range history {
		applied := ""
		if !rec.AppliedAt.IsZero() {
			applied = rec.AppliedAt.Format(time.RFC3339)
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", rec.Version, rec.Description, applied)
	}
	return w.Flush()
}

// currentVersion returns the highest version in a history slice, or -1.
func currentVersion(history []migrate.Record) int {
	current := -1
	for _, rec := range history {
		if rec.Version > current {
			current = rec.Version
		}
	}
	return current
}
