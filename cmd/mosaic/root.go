// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mosaic-dev/mosaic/internal/config"
	mosaicerr "github.com/mosaic-dev/mosaic/pkg/errors"
)

// NewRootCmd creates the root mosaic command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mosaic",
		Short:         "Mosaic — canvas knowledge-graph workspace",
		Long:          "Mosaic is a desktop data-exploration workspace; this CLI operates its database core.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(cmd)
		},
	}

	// Global flags — these map to viper keys via initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("backend", "", "database backend (sqlite or memory)")
	root.PersistentFlags().String("db", "", "database file path")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	// Register subcommands
	root.AddCommand(
		newMigrateCmd(),
		newStatusCmd(),
		newExecCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up the global Viper with defaults, env bindings, flag
// bindings, and optional config file so the standard precedence
// (flag > env > file > defaults) is handled uniformly.
func initViper(cmd *cobra.Command) error {
	v := viper.GetViper()

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return mosaicerr.Errorf(mosaicerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// Auto-discover mosaic.yaml from standard locations.
		// Note: SetConfigType is intentionally omitted. When set, Viper
		// falls back to trying the bare config name without extension,
		// which collides with the ./mosaic binary in the project root.
		v.SetConfigName("mosaic")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/mosaic")
		v.AddConfigPath("/etc/mosaic")
		// No config file is fine — defaults and env vars still apply.
		// Parse or permission errors must surface.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return mosaicerr.Errorf(mosaicerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			// No config found anywhere — bootstrap a default to ~/.config/mosaic/.
			if path := config.BootstrapConfig(); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return mosaicerr.Errorf(mosaicerr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
				}
			}
		}
	}

	// Bind persistent flags to viper keys.
	flags := cmd.Root().PersistentFlags()
	if err := v.BindPFlag("storage.backend", flags.Lookup("backend")); err != nil {
		return mosaicerr.Wrap(err, mosaicerr.CodeCLISetupFailure, "binding backend flag")
	}
	if err := v.BindPFlag("storage.path", flags.Lookup("db")); err != nil {
		return mosaicerr.Wrap(err, mosaicerr.CodeCLISetupFailure, "binding db flag")
	}
	if err := v.BindPFlag("verbose", flags.Lookup("verbose")); err != nil {
		return mosaicerr.Wrap(err, mosaicerr.CodeCLISetupFailure, "binding verbose flag")
	}

	if v.GetBool("verbose") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	return nil
}

// loadConfig resolves the effective configuration from the global viper.
func loadConfig() (*config.Config, error) {
	return config.FromViper(viper.GetViper())
}
