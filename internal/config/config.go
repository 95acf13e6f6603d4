// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

// Package config loads Mosaic configuration with the standard
// precedence: flags > environment (MOSAIC_) > config file > defaults.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/mosaic-dev/mosaic/internal/db"
	mosaicerr "github.com/mosaic-dev/mosaic/pkg/errors"
)

// Config is the top-level Mosaic configuration.
type Config struct {
	Storage db.Config `mapstructure:"storage"`
	Verbose bool      `mapstructure:"verbose"`
}

// SetDefaults installs default values on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", "mosaic.db")
	v.SetDefault("verbose", false)
}

// SetupEnv binds MOSAIC_-prefixed environment variables, with dots
// mapped to underscores (storage.backend -> MOSAIC_STORAGE_BACKEND).
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("MOSAIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// FromViper unmarshals and validates the effective configuration.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, mosaicerr.Wrap(err, mosaicerr.CodeConfigParseInvalidFormat, "unmarshalling config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, mosaicerr.Wrap(err, mosaicerr.CodeConfigLoadReadFailure, "reading config file")
		}
	}

	return FromViper(v)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", "sqlite", "memory":
	default:
		return mosaicerr.New(mosaicerr.CodeConfigValidateInvalidValue,
			"storage.backend must be \"sqlite\" or \"memory\"",
			mosaicerr.FieldBackend(c.Storage.Backend),
		)
	}
	if c.Storage.Backend != "memory" && c.Storage.Path == "" {
		return mosaicerr.New(mosaicerr.CodeConfigValidateInvalidValue,
			"storage.path is required for the sqlite backend")
	}
	return nil
}
