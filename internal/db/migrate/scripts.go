// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package migrate

// Migrations returns the application schema as an ordered migration
// list. Version 0 creates the tracking table and must stay idempotent;
// it is re-executed on every run.
//
// All DDL uses IF NOT EXISTS and TEXT timestamps. The in-memory
// interpreter executes these as no-ops (its table set is fixed at
// construction), so the same list runs against either backend.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     0,
			Description: "create migration tracking table",
			Script:      trackingDDL,
		},
		{
			Version:     1,
			Description: "create notes table",
			Script: `
CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	folder_id  TEXT,
	is_pinned  INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_folder ON notes(folder_id);
CREATE INDEX IF NOT EXISTS idx_notes_updated ON notes(updated_at);
`,
		},
		{
			Version:     2,
			Description: "create entities table",
			Script: `
CREATE TABLE IF NOT EXISTS entities (
	id         TEXT PRIMARY KEY,
	label      TEXT NOT NULL,
	kind       TEXT NOT NULL,
	subtype    TEXT,
	aliases    TEXT NOT NULL DEFAULT '[]',
	attributes TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entities_label ON entities(label);
CREATE INDEX IF NOT EXISTS idx_entities_kind  ON entities(kind);
`,
		},
		{
			Version:     3,
			Description: "create edges table",
			Script: `
CREATE TABLE IF NOT EXISTS edges (
	id            TEXT PRIMARY KEY,
	source_id     TEXT NOT NULL,
	target_id     TEXT NOT NULL,
	rel_type      TEXT NOT NULL,
	confidence    REAL NOT NULL DEFAULT 1.0,
	bidirectional INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);
`,
		},
		{
			Version:     4,
			Description: "create audit log table",
			Script: `
CREATE TABLE IF NOT EXISTS audit_log (
	id         TEXT PRIMARY KEY,
	action     TEXT NOT NULL DEFAULT '',
	actor      TEXT NOT NULL DEFAULT '',
	details    TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
`,
		},
	}
}
