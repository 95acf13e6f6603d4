// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

// Package migrate applies an ordered, versioned set of schema-change
// scripts exactly once each, tracking progress in a schema_migrations
// table. It works against any db.Client, so the same scripts run on
// the real engine and the in-memory interpreter.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mosaic-dev/mosaic/internal/db"
	mosaicerr "github.com/mosaic-dev/mosaic/pkg/errors"
)

// TrackingTable is where applied migrations are recorded.
const TrackingTable = "schema_migrations"

// trackingDDL creates the tracking table. It must stay idempotent: the
// version-0 script is re-executed on every run.
const trackingDDL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version     INTEGER PRIMARY KEY,
	description TEXT NOT NULL DEFAULT '',
	applied_at  TEXT NOT NULL
);`

// Migration is an immutable versioned schema-change script. Versions
// order migrations globally, ascending; each is applied at most once.
type Migration struct {
	Version     int
	Description string
	Script      string
}

// Record is one row of the tracking table.
type Record struct {
	Version     int
	Description string
	AppliedAt   time.Time
}

// Runner sequences and tracks migration application. It borrows the
// client — it does not own or close it — and is stateless between calls
// except for what it reads back from the tracking table. Callers must
// run it once, before any other component touches the store.
type Runner struct {
	client     db.Client
	migrations []Migration
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithClock overrides the applied_at timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a runner over the given migrations, sorted by
// version ascending.
func NewRunner(client db.Client, migrations []Migration, opts ...Option) *Runner {
	sorted := append([]Migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})

	r := &Runner{
		client:     client,
		migrations: sorted,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run applies every pending migration in ascending version order.
//
// The version-0 script (or the built-in tracking DDL when the list has
// no version 0) is always re-executed first so the tracking table
// exists before it is read. A missing or empty tracking table reads as
// version -1, distinguishing a fresh database from one where version 0
// is genuinely applied.
//
// A failing statement propagates fatally: no tracking row is written
// for the failed migration, earlier tracked migrations stay applied,
// and the caller is expected to abort startup. Partial schema is unsafe
// to run against.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.ensureTrackingTable(ctx); err != nil {
		return err
	}

	current := r.currentVersion(ctx)

	for _, m := range r.migrations {
		if m.Version <= current {
			continue
		}

		r.logger.Info("applying migration",
			slog.Int("version", m.Version),
			slog.String("description", m.Description),
		)

		for _, stmtText := range SplitStatements(m.Script) {
			if _, err := r.client.Execute(ctx, db.SQL(stmtText)); err != nil {
				return mosaicerr.Wrap(err, mosaicerr.CodeMigrateApplyFailure,
					fmt.Sprintf("applying migration %d (%s)", m.Version, m.Description),
					mosaicerr.FieldVersion(m.Version),
				)
			}
		}

		// Record only after every statement in the migration succeeded.
		if _, err := r.client.Execute(ctx, db.SQL(
			`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
			m.Version, m.Description, r.now().UTC().Format(db.TimeFormat),
		)); err != nil {
			return mosaicerr.Wrap(err, mosaicerr.CodeMigrateTrackingFailure,
				fmt.Sprintf("recording migration %d", m.Version),
				mosaicerr.FieldVersion(m.Version),
			)
		}
	}

	return nil
}

// History returns the tracking table contents ordered by version
// ascending. It fails open: if the table cannot be read the history is
// simply empty.
func (r *Runner) History(ctx context.Context) []Record {
	res, err := r.client.Execute(ctx, db.SQL(
		`SELECT version, description, applied_at FROM schema_migrations ORDER BY version ASC`,
	))
	if err != nil || res == nil {
		r.logger.Debug("migration history unavailable", slog.Any("error", err))
		return nil
	}

	records := make([]Record, 0, len(res.Rows))
	for _, row := range res.Rows {
		version, ok := asInt(row.Value("version"))
		if !ok {
			continue
		}
		rec := Record{Version: version}
		if desc, ok := row.Get("description"); ok {
			rec.Description, _ = desc.(string)
		}
		if raw, ok := row.Get("applied_at"); ok {
			if s, ok := raw.(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
					rec.AppliedAt = t
				}
			}
		}
		records = append(records, rec)
	}
	return records
}

// ensureTrackingTable re-executes the idempotent version-0 script, or
// the built-in tracking DDL when no version 0 is present.
func (r *Runner) ensureTrackingTable(ctx context.Context) error {
	script := trackingDDL
	for _, m := range r.migrations {
		if m.Version == 0 {
			script = m.Script
			break
		}
	}

	for _, stmtText := range SplitStatements(script) {
		if _, err := r.client.Execute(ctx, db.SQL(stmtText)); err != nil {
			return mosaicerr.Wrap(err, mosaicerr.CodeMigrateTrackingFailure, "creating tracking table")
		}
	}
	return nil
}

// currentVersion reads the highest recorded version. Errors and an
// empty tracking table both read as -1 (nothing applied yet).
func (r *Runner) currentVersion(ctx context.Context) int {
	res, err := r.client.Execute(ctx, db.SQL(
		`SELECT version FROM schema_migrations ORDER BY version DESC LIMIT ?`, 1,
	))
	if err != nil || res == nil || len(res.Rows) == 0 {
		return -1
	}
	version, ok := asInt(res.Rows[0].Value("version"))
	if !ok {
		return -1
	}
	return version
}

// SplitStatements divides a script into individual statements on `;`
// boundaries, discarding empty and whitespace-only fragments. The scan
// is quote-aware: a terminator inside a single-quoted string literal
// does not end a statement.
func SplitStatements(script string) []string {
	var out []string
	var sb strings.Builder
	inQuote := false
	for i := 0; i < len(script); i++ {
		c := script[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			sb.WriteByte(c)
		case c == ';' && !inQuote:
			if stmt := strings.TrimSpace(sb.String()); stmt != "" {
				out = append(out, stmt)
			}
			sb.Reset()
		default:
			sb.WriteByte(c)
		}
	}
	if stmt := strings.TrimSpace(sb.String()); stmt != "" {
		out = append(out, stmt)
	}
	return out
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
