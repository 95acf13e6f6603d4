// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mosaic-dev/mosaic/internal/db/migrate"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long:  "Apply every schema migration not yet recorded in the tracking table, in version order. A failing migration aborts immediately.",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	client, cfg, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	runner := migrate.NewRunner(client, migrate.Migrations())
	if err := runner.Run(cmd.Context()); err != nil {
		return err
	}

	history := runner.History(cmd.Context())
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "database %q is at version %d (%d migrations applied)\n",
		cfg.Storage.Backend, currentVersion(history), len(history))
	return nil
}
