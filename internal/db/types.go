// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

// Package db defines the uniform database client contract shared by the
// real SQLite backend and the in-memory statement interpreter. The rest
// of the application only ever sees this package's types, so either
// backend can serve it unchanged.
package db

import "context"

// TimeFormat is the layout for timestamps stored in TEXT columns. It is
// fixed-width — unlike RFC3339Nano it never trims trailing zeros — so
// lexicographic ordering of stored values matches chronological
// ordering, and ORDER BY on a timestamp column behaves the same on
// both backends.
const TimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Statement is a parameterized SQL statement with positional `?`
// placeholders bound left-to-right from Args.
type Statement struct {
	SQL  string
	Args []any
}

// SQL is a terse constructor for Statement.
func SQL(sql string, args ...any) Statement {
	return Statement{SQL: sql, Args: args}
}

// Row is a single result row supporting both named-column and
// positional access. Column order matches the Result's Columns slice.
type Row struct {
	columns []string
	values  map[string]any
}

// NewRow builds a Row over the given column order and values. The
// columns slice is shared, not copied; callers must not mutate it.
func NewRow(columns []string, values map[string]any) Row {
	return Row{columns: columns, values: values}
}

// Get returns the value for a named column and whether it was present.
func (r Row) Get(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Value returns the value for a named column, or nil if absent.
func (r Row) Value(column string) any {
	return r.values[column]
}

// Index returns the value at the given column position, or nil if the
// position is out of range.
func (r Row) Index(i int) any {
	if i < 0 || i >= len(r.columns) {
		return nil
	}
	return r.values[r.columns[i]]
}

// Columns returns the ordered column names for this row.
func (r Row) Columns() []string {
	return r.columns
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.columns)
}

// Result is the uniform return shape of any statement execution.
// Columns is derived from the first returned row, not from a schema.
// LastInsertID and ColumnTypes are populated by the real engine only;
// the interpreter supplies zero values for structural compatibility.
type Result struct {
	Rows         []Row
	Columns      []string
	RowsAffected int64
	LastInsertID int64
	ColumnTypes  []string
}

// EmptyResult returns a successful result carrying no rows.
func EmptyResult() *Result {
	return &Result{}
}

// Client is the uniform execute/batch/close contract shared by the
// real and mock backing engines.
//
// Batch executes its statements strictly in order and is not atomic: a
// failure partway leaves prior statements' effects intact. Neither
// backend serializes concurrent writers internally; callers must not
// issue overlapping writes, and migrations must run before any other
// component touches the client.
type Client interface {
	// Execute runs one parameterized statement. After Close it fails
	// with ErrClosed.
	Execute(ctx context.Context, stmt Statement) (*Result, error)

	// Batch runs statements sequentially, stopping at the first error.
	Batch(ctx context.Context, stmts []Statement) ([]*Result, error)

	// Close releases the backend. Closing twice is a no-op.
	Close() error

	// Closed reports whether Close has been called.
	Closed() bool
}
