// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

// Package sqlite implements the uniform db.Client contract on a real
// SQLite database via database/sql and mattn/go-sqlite3.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mosaic-dev/mosaic/internal/db"
)

// Compile-time interface check.
var _ db.Client = (*Client)(nil)

// Client is the real-engine adapter. Unlike the interpreter it
// enforces whatever schema constraints the DDL declared.
type Client struct {
	dbh    *sql.DB
	closed atomic.Bool
}

// NewClient opens (or creates) a SQLite database at path with WAL
// journaling, a busy timeout, and foreign keys on.
func NewClient(path string) (*Client, error) {
	dbh, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	if err := dbh.Ping(); err != nil {
		_ = dbh.Close()
		return nil, fmt.Errorf("pinging database %s: %w", path, err)
	}

	return &Client{dbh: dbh}, nil
}

// NewClientWithDB wraps an already-open handle. The client takes
// ownership and closes it.
func NewClientWithDB(dbh *sql.DB) *Client {
	return &Client{dbh: dbh}
}

// Execute runs one parameterized statement. Row-returning statements
// go through Query and surface rows, column names, and column types;
// everything else goes through Exec and surfaces rows affected and the
// last insert rowid.
func (c *Client) Execute(ctx context.Context, stmt db.Statement) (*db.Result, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("executing statement: %w", db.ErrClosed)
	}

	if returnsRows(stmt.SQL) {
		return c.query(ctx, stmt)
	}
	return c.exec(ctx, stmt)
}

func (c *Client) query(ctx context.Context, stmt db.Statement) (*db.Result, error) {
	rows, err := c.dbh.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	defer rows.Close() //nolint:errcheck // error on read-path close is not actionable

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	columnTypes := make([]string, 0, len(columns))
	if types, err := rows.ColumnTypes(); err == nil {
		for _, t := range types {
			columnTypes = append(columnTypes, t.DatabaseTypeName())
		}
	}

	result := &db.Result{Columns: columns, ColumnTypes: columnTypes}
	for rows.Next() {
		values := make([]any, len(columns))
		scan := make([]any, len(columns))
		for i := range values {
			scan[i] = &values[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		rowValues := make(map[string]any, len(columns))
		for i, col := range columns {
			// Normalize []byte to string: TEXT columns round-trip as
			// byte slices through database/sql.
			if b, ok := values[i].([]byte); ok {
				rowValues[col] = string(b)
			} else {
				rowValues[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, db.NewRow(columns, rowValues))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return result, nil
}

func (c *Client) exec(ctx context.Context, stmt db.Statement) (*db.Result, error) {
	res, err := c.dbh.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("executing: %w", err)
	}

	result := &db.Result{}
	if n, err := res.RowsAffected(); err == nil {
		result.RowsAffected = n
	}
	if id, err := res.LastInsertId(); err == nil {
		result.LastInsertID = id
	}
	return result, nil
}

// Batch executes statements strictly in order, stopping at the first
// error. There is no transaction wrapping: effects of earlier
// statements remain.
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

// Close closes the underlying database connection. Closing twice is a
// no-op.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.dbh.Close()
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	return c.closed.Load()
}

// returnsRows reports whether a statement produces a row set.
func returnsRows(sqlText string) bool {
	head := strings.ToUpper(strings.TrimSpace(sqlText))
	return strings.HasPrefix(head, "SELECT") ||
		strings.HasPrefix(head, "PRAGMA") ||
		strings.HasPrefix(head, "WITH") ||
		strings.HasPrefix(head, "EXPLAIN")
}
