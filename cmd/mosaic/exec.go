// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mosaic-dev/mosaic/internal/db"
	mosaicerr "github.com/mosaic-dev/mosaic/pkg/errors"
)

func newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql> [arg...]",
		Short: "Execute a single parameterized SQL statement",
		Long:  "Execute one statement against the configured backend. Positional arguments bind to ? placeholders left to right.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runExec,
	}
}

func runExec(cmd *cobra.Command, args []string) error {
	client, _, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	stmtArgs := make([]any, 0, len(args)-1)
	for _, a := range args[1:] {
		stmtArgs = append(stmtArgs, a)
	}

	res, err := client.Execute(cmd.Context(), db.SQL(args[0], stmtArgs...))
	if err != nil {
		return mosaicerr.Wrap(err, mosaicerr.CodeCLIRequestFailure, "executing statement")
	}

	out := cmd.OutOrStdout()
	if len(res.Rows) == 0 {
		_, _ = fmt.Fprintf(out, "ok (%d rows affected)\n", res.RowsAffected)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, col := range res.Columns {
		if i > 0 {
			_, _ = fmt.Fprint(w, "\t")
		}
		_, _ = fmt.Fprint(w, col)
	}
	_, _ = fmt.Fprintln(w)
	for _, row := range res.Rows {
		for i := range res.Columns {
			if i > 0 {
				_, _ = fmt.Fprint(w, "\t")
			}
			_, _ = fmt.Fprintf(w, "%v", row.Index(i))
		}
		_, _ = fmt.Fprintln(w)
	}
	return w.Flush()
}
