// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

// Package memory implements the uniform db.Client contract with an
// in-memory statement interpreter: a small SQL dialect (single-table
// INSERT/SELECT/UPDATE/DELETE, equality/AND WHERE, ORDER BY, LIMIT,
// COUNT(*), INSERT OR REPLACE upsert) executed against an owned arena
// of named tables. It exists so application code written against the
// relational API can run without a native engine present, e.g. for
// browser-only development. State is ephemeral and single-process.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mosaic-dev/mosaic/internal/db"
)

// Compile-time interface check.
var _ db.Client = (*Client)(nil)

// Client is the in-memory statement interpreter. It owns its table
// store exclusively; the store is discarded on Close. The arena is not
// locked — callers must not issue overlapping writes (the same
// single-writer discipline the real engine's connection gets).
type Client struct {
	store  *tableStore
	logger *slog.Logger
	now    func() time.Time
	closed atomic.Bool
}

// Option configures a Client.
type Option func(*Client)

// WithTables replaces the default table set.
func WithTables(names ...string) Option {
	return func(c *Client) {
		c.store = newTableStore(names)
	}
}

// WithLogger sets the logger used for fail-open warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock overrides the timestamp source. Tests use this to get
// deterministic created_at/updated_at values.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates an interpreter over the default application table set.
func New(opts ...Option) *Client {
	c := &Client{
		store:  newTableStore(DefaultTables),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs one parameterized statement against the table store.
//
// Statement shapes outside the dialect subset fail open: they are
// logged and produce an empty successful Result, matching the mock's
// permissive contract. WHERE shapes outside the equality/AND subset are
// a hard db.ErrUnsupportedPredicate instead — matching all rows on an
// unreadable predicate would corrupt data on UPDATE and DELETE.
func (c *Client) Execute(ctx context.Context, stmt db.Statement) (*db.Result, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("executing statement: %w", db.ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parsed, err := parse(stmt.SQL)
	if err != nil {
		return c.failOpen(stmt, err)
	}

	res, err := c.exec(parsed, stmt.Args)
	if err != nil {
		return c.failOpen(stmt, err)
	}
	return res, nil
}

// failOpen converts unsupported-statement errors into a logged empty
// result; everything else propagates.
func (c *Client) failOpen(stmt db.Statement, err error) (*db.Result, error) {
	if errors.Is(err, db.ErrUnsupportedStatement) {
		c.logger.Warn("unsupported statement, returning empty result",
			slog.String("sql", stmt.SQL),
			slog.String("reason", err.Error()),
		)
		return db.EmptyResult(), nil
	}
	return nil, err
}

// Batch executes statements strictly in order, stopping at the first
// error. There is no atomicity: effects of earlier statements remain.
func (c *Client) Batch(ctx context.Context, stmts []db.Statement) ([]*db.Result, error) {
	results := make([]*db.Result, 0, len(stmts))
	for i, stmt := range stmts {
		res, err := c.Execute(ctx, stmt)
		if err != nil {
			return results, fmt.Errorf("batch statement %d: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Close discards the table store. Subsequent Execute calls fail with
// db.ErrClosed.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.store = newTableStore(nil)
	return nil
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	return c.closed.Load()
}
