// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaic-dev/mosaic/internal/db"
)

// stubClient is a minimal Client for factory tests.
type stubClient struct {
	closed bool
}

func (s *stubClient) Execute(context.Context, db.Statement) (*db.Result, error) {
	return db.EmptyResult(), nil
}

func (s *stubClient) Batch(context.Context, []db.Statement) ([]*db.Result, error) {
	return nil, nil
}

func (s *stubClient) Close() error { s.closed = true; return nil }
func (s *stubClient) Closed() bool { return s.closed }

func TestOpen_ResolvesRegisteredBackend(t *testing.T) {
	stub := &stubClient{}
	db.RegisterBackend("stub", func(cfg *db.Config) (db.Client, error) {
		assert.Equal(t, "stub.db", cfg.Path)
		return stub, nil
	})

	client, err := db.Open(&db.Config{Backend: "stub", Path: "stub.db"})
	require.NoError(t, err)
	assert.Same(t, stub, client.(*stubClient))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := db.Open(&db.Config{Backend: "no-such-backend"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-backend")
}
