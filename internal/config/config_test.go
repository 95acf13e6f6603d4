// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaic-dev/mosaic/internal/config"
	mosaicerr "github.com/mosaic-dev/mosaic/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "mosaic.db", cfg.Storage.Path)
	assert.False(t, cfg.Verbose)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mosaic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"storage:\n  backend: memory\nverbose: true\n",
	), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.True(t, cfg.Verbose)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mosaic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"storage:\n  backend: sqlite\n  path: from-file.db\n",
	), 0o600))

	t.Setenv("MOSAIC_STORAGE_PATH", "from-env.db")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Storage.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, mosaicerr.HasCode(err, mosaicerr.CodeConfigLoadReadFailure))
}

func TestValidate_RejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mosaic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"storage:\n  backend: postgres\n",
	), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
	assert.True(t, mosaicerr.HasCode(err, mosaicerr.CodeConfigValidateInvalidValue))
}

func TestValidate_RequiresPathForSQLite(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Backend = "sqlite"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, mosaicerr.HasCode(err, mosaicerr.CodeConfigValidateInvalidValue))

	cfg.Storage.Backend = "memory"
	assert.NoError(t, cfg.Validate())
}

func TestBootstrapConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	written := config.BootstrapConfig()
	want := filepath.Join(home, ".config", "mosaic", "mosaic.yaml")
	require.Equal(t, want, written)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfigYAML, data)

	// Second call is a no-op: the file already exists.
	assert.Empty(t, config.BootstrapConfig())

	// The bootstrapped config must parse and validate cleanly.
	cfg, err := config.Load(want)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
}

func TestFromViper_UnmarshalsNested(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("storage.backend", "memory")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}
