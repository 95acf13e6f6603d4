// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sandbox isolates a test from the real home directory and working
// directory so config auto-discovery and bootstrap stay contained.
func sandbox(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

// runCommand executes the root command with the given args against a
// fresh global viper and returns the combined output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	sandbox(t)

	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mosaic dev")
}

func TestMigrateCommand_MemoryBackend(t *testing.T) {
	sandbox(t)

	out, err := runCommand(t, "migrate", "--backend", "memory")
	require.NoError(t, err)
	assert.Contains(t, out, `database "memory" is at version 4 (5 migrations applied)`)
}

func TestStatusCommand_FreshMemoryBackend(t *testing.T) {
	sandbox(t)

	// A fresh in-memory database has no history to show.
	out, err := runCommand(t, "status", "--backend", "memory")
	require.NoError(t, err)
	assert.Contains(t, out, "no migrations applied")
}

func TestMigrateThenStatus_SQLite(t *testing.T) {
	sandbox(t)
	dbPath := filepath.Join(t.TempDir(), "mosaic.db")

	_, err := runCommand(t, "migrate", "--db", dbPath)
	require.NoError(t, err)

	out, err := runCommand(t, "status", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "VERSION")
	assert.Contains(t, out, "create notes table")
	assert.Contains(t, out, "create audit log table")
}

func TestExecCommand_SQLite(t *testing.T) {
	sandbox(t)
	dbPath := filepath.Join(t.TempDir(), "mosaic.db")

	_, err := runCommand(t, "migrate", "--db", dbPath)
	require.NoError(t, err)

	out, err := runCommand(t, "exec", "--db", dbPath,
		`INSERT INTO notes (id, title, created_at, updated_at) VALUES (?, ?, '', '')`, "n1", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "ok (1 rows affected)")

	out, err = runCommand(t, "exec", "--db", dbPath,
		`SELECT id, title FROM notes WHERE id = ?`, "n1")
	require.NoError(t, err)
	assert.Contains(t, out, "id")
	assert.Contains(t, out, "hello")
}

func TestRootCommand_RejectsUnknownBackend(t *testing.T) {
	sandbox(t)

	_, err := runCommand(t, "status", "--backend", "postgres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.backend")
}

func TestRootCommand_ReadsConfigFlag(t *testing.T) {
	sandbox(t)

	cfgPath := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("storage:\n  backend: memory\n"), 0o600))

	out, err := runCommand(t, "migrate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, `database "memory"`)
}

func TestRootCommand_MissingConfigFlagIsFatal(t *testing.T) {
	sandbox(t)

	_, err := runCommand(t, "status", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
