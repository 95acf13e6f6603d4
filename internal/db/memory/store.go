// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package memory

// DefaultTables is the application schema the interpreter serves when
// no explicit table set is given. It mirrors the tables the migration
// scripts create against the real engine.
var DefaultTables = []string{
	"notes",
	"entities",
	"edges",
	"audit_log",
	"schema_migrations",
}

// trackingTable records applied migrations. It is exempt from
// created_at/updated_at stamping: its rows carry applied_at instead.
const trackingTable = "schema_migrations"

// appendOnlyTables never receive an updated_at stamp; their rows are
// written once and never modified.
var appendOnlyTables = map[string]bool{
	"edges":     true,
	"audit_log": true,
}

// table is an ordered, schemaless collection of rows. columns is the
// union of column names in encounter order and fixes the column order
// reported in results; rows tolerate heterogeneous shapes.
type table struct {
	columns []string
	rows    []map[string]any
}

// noteColumns extends the column order with any names not yet seen.
func (t *table) noteColumns(names []string) {
	for _, name := range names {
		known := false
		for _, existing := range t.columns {
			if existing == name {
				known = true
				break
			}
		}
		if !known {
			t.columns = append(t.columns, name)
		}
	}
}

// tableStore is the arena of named tables owned by one client for its
// lifetime. It is deliberately unsynchronized: the interpreter serves a
// single-process development mode with a documented single-writer
// assumption, matching the real engine's connection discipline.
type tableStore struct {
	tables map[string]*table
}

func newTableStore(names []string) *tableStore {
	ts := &tableStore{tables: make(map[string]*table, len(names))}
	for _, name := range names {
		ts.tables[name] = &table{}
	}
	return ts
}

// get returns the named table, or nil if it is outside the fixed set.
func (ts *tableStore) get(name string) *table {
	return ts.tables[name]
}
