// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaic-dev/mosaic/internal/db"
	"github.com/mosaic-dev/mosaic/internal/db/memory"
)

var testClock = func() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func TestClient_InsertAppendsDuplicates(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithTables("widgets"))

	for i := 0; i < 2; i++ {
		res, err := c.Execute(ctx, db.SQL(
			`INSERT INTO widgets (id, x) VALUES (?, ?)`, "w1", i,
		))
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.RowsAffected)
	}

	res, err := c.Execute(ctx, db.SQL(`SELECT * FROM widgets`))
	require.NoError(t, err)
	// Plain INSERT never dedups: same id twice means two rows.
	assert.Len(t, res.Rows, 2)
}

func TestClient_UpsertReplacesByID(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithTables("widgets"))

	for _, x := range []int{1, 2} {
		_, err := c.Execute(ctx, db.SQL(
			`INSERT OR REPLACE INTO widgets (id, x) VALUES (?, ?)`, "w1", x,
		))
		require.NoError(t, err)
	}

	res, err := c.Execute(ctx, db.SQL(`SELECT * FROM widgets`))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 2, res.Rows[0].Value("x"))
}

func TestClient_UpsertKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	now := testClock()
	clock := func() time.Time { return now }
	c := memory.New(memory.WithTables("widgets"), memory.WithClock(func() time.Time { return clock() }))

	_, err := c.Execute(ctx, db.SQL(`INSERT OR REPLACE INTO widgets (id, x) VALUES (?, ?)`, "w1", 1))
	require.NoError(t, err)

	created := now.UTC().Format(db.TimeFormat)

	now = now.Add(time.Hour)
	_, err = c.Execute(ctx, db.SQL(`INSERT OR REPLACE INTO widgets (id, x) VALUES (?, ?)`, "w1", 2))
	require.NoError(t, err)

	res, err := c.Execute(ctx, db.SQL(`SELECT * FROM widgets`))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, created, res.Rows[0].Value("created_at"))
	assert.Equal(t, now.UTC().Format(db.TimeFormat), res.Rows[0].Value("updated_at"))
}

func TestClient_SelectWhereEquality(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithTables("widgets"))

	_, err := c.Execute(ctx, db.SQL(`INSERT INTO widgets (id, n) VALUES (?, ?)`, "a", 1))
	require.NoError(t, err)
	_, err = c.Execute(ctx, db.SQL(`INSERT INTO widgets (id, n) VALUES (?, ?)`, "b", 2))
	require.NoError(t, err)

	res, err := c.Execute(ctx, db.SQL(`SELECT * FROM widgets WHERE id = ?`, "b"))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "b", res.Rows[0].Value("id"))
	assert.Equal(t, 2, res.Rows[0].Value("n"))
}

func TestClient_SelectWhereConjunction(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithTables("widgets"))

	rows := []struct {
		id   string
		kind string
		n    int
	}{
		{"a", "gear", 1},
		{"b", "gear", 2},
		{"c", "lever", 2},
	}
	for _, r := range rows {
		_, err := c.Execute(ctx, db.SQL(
			`INSERT INTO widgets (id, kind, n) VALUES (?, ?, ?)`, r.id, r.kind, r.n,
		))
		require.NoError(t, err)
	}

	res, err := c.Execute(ctx, db.SQL(
		`SELECT * FROM widgets WHERE kind = ? AND n = ?`, "gear", 2,
	))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "b", res.Rows[0].Value("id"))
}

func TestClient_SelectCount(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithTables("widgets"))

	for _, n := range []int{1, 2, 2} {
		_, err := c.Execute(ctx, db.SQL(`INSERT INTO widgets (id, n) VALUES (?, ?)`, "w", n))
		require.NoError(t, err)
	}

	res, err := c.Execute(ctx, db.SQL(`SELECT COUNT(*) FROM widgets WHERE n = ?`, 2))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []string{"count"}, res.Columns)
	assert.Equal(t, int64(2), res.Rows[0].Value("count"))
}

func TestClient_SelectOrderByLimit(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithTables("widgets"))

	for _, n := range []int{3, 1, 2} {
		_, err := c.Execute(ctx, db.SQL(`INSERT INTO widgets (id, n) VALUES (?, ?)`, "w", n))
		require.NoError(t, err)
	}

	res, err := c.Execute(ctx, db.SQL(`SELECT * FROM widgets ORDER BY n LIMIT ?`, 1))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 1, res.Rows[0].Value("n"))

	res, err = c.Execute(ctx, db.SQL(`SELECT * FROM widgets ORDER BY n DESC LIMIT ?`, 2))
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 3, res.Rows[0].Value("n"))
	assert.Equal(t, 2, res.Rows[1].Value("n"))
}

func TestClient_SelectOrderByStableTies(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithTables("widgets"))

	for _, id := range []string{"first", "second", "third"} {
		_, err := c.Execute(ctx, db.SQL(`INSERT INTO widgets (id, n) VALUES (?, ?)`, id, 7))
		require.NoError(t, err)
	}

	res, err := c.Execute(ctx, db.SQL(`SELECT * FROM widgets ORDER BY n ASC`))
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, "first", res.Rows[0].Value("id"))
	assert.Equal(t, "third", res.Rows[2].Value("id"))
}

func TestClient_UpdateStampsAndCounts(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithTables("widgets"), memory.WithClock(testClock))

	for _, id := range []string{"a", "b"} {
		_, err := c.Execute(ctx, db.SQL(`INSERT INTO widgets (id, kind) VALUES (?, ?)`, id, "gear"))
		require.NoError(t, err)
	}

	res, err := c.Execute(ctx, db.SQL(
		`UPDATE widgets SET kind = ?, label = 'renamed' WHERE id = ?`, "lever", "a",
	))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)
	assert.Empty(t, res.Rows)

	got, err := c.Execute(ctx, db.SQL(`SELECT * FROM widgets WHERE id = ?`, "a"))
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "lever", got.Rows[0].Value("kind"))
	assert.Equal(t, "renamed", got.Rows[0].Value("label"))
	assert.Equal(t, testClock().Format(db.TimeFormat), got.Rows[0].Value("updated_at"))
}

func TestClient_UpdateWithoutWhereTouchesAllRows(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithTables("widgets"))

	for _, id := range []string{"a", "b", "c"} {
		_, err := c.Execute(ctx, db.SQL(`INSERT INTO widgets (id) VALUES (?)`, id))
		require.NoError(t, err)
	}

	res, err := c.Execute(ctx, db.SQL(`UPDATE widgets SET kind = ?`, "gear"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.RowsAffected)
}

func TestClient_DeleteCountsExactly(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithTables("widgets"))

	for _, id := range []string{"a", "b"} {
		_, err := c.Execute(ctx, db.SQL(`INSERT INTO widgets (id) VALUES (?)`, id))
		require.NoError(t, err)
	}

	res, err := c.Execute(ctx, db.SQL(`DELETE FROM widgets WHERE id = ?`, "a"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	// Second identical delete matches nothing.
	res, err = c.Execute(ctx, db.SQL(`DELETE FROM widgets WHERE id = ?`, "a"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.RowsAffected)

	got, err := c.Execute(ctx, db.SQL(`SELECT * FROM widgets`))
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "b", got.Rows[0].Value("id"))
}

func TestClient_CreateStatementsAreNoOps(t *testing.T) {
	ctx := context.Background()
	c := memory.New()

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS notes (id TEXT PRIMARY KEY)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_folder ON notes(folder_id)`,
	} {
		res, err := c.Execute(ctx, db.SQL(stmt))
		require.NoError(t, err)
		assert.Empty(t, res.Rows)
		assert.Equal(t, int64(0), res.RowsAffected)
	}
}

func TestClient_UnsupportedStatementFailsOpen(t *testing.T) {
	ctx := context.Background()
	c := memory.New()

	for _, stmt := range []string{
		`DROP TABLE notes`,
		`INSERT INTO notes VALUES (?, ?)`, // no column list
		`ALTER TABLE notes ADD COLUMN color TEXT`,
		`SELECT * FROM no_such_table`,
	} {
		res, err := c.Execute(ctx, db.SQL(stmt, "a", "b"))
		require.NoError(t, err, "statement %q should fail open", stmt)
		assert.Empty(t, res.Rows)
		assert.Equal(t, int64(0), res.RowsAffected)
	}
}

func TestClient_UnsupportedPredicateIsRejected(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithTables("widgets"))

	_, err := c.Execute(ctx, db.SQL(`INSERT INTO widgets (id, n) VALUES (?, ?)`, "a", 1))
	require.NoError(t, err)

	for _, stmt := range []string{
		`SELECT * FROM widgets WHERE n > ?`,
		`SELECT * FROM widgets WHERE id = ? OR n = ?`,
		`DELETE FROM widgets WHERE id LIKE ?`,
		`UPDATE widgets SET n = ? WHERE n != ?`,
	} {
		_, err := c.Execute(ctx, db.SQL(stmt, 1, 2))
		require.Error(t, err, "statement %q should be rejected", stmt)
		assert.ErrorIs(t, err, db.ErrUnsupportedPredicate)
	}

	// Nothing was deleted or updated by the rejected statements.
	res, err := c.Execute(ctx, db.SQL(`SELECT COUNT(*) FROM widgets`))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Rows[0].Value("count"))
}

func TestClient_ClosedGuard(t *testing.T) {
	ctx := context.Background()
	c := memory.New()

	require.False(t, c.Closed())
	require.NoError(t, c.Close())
	require.True(t, c.Closed())
	require.NoError(t, c.Close()) // double close is a no-op

	_, err := c.Execute(ctx, db.SQL(`SELECT * FROM notes`))
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrClosed)
}

func TestClient_BatchSequentialNotAtomic(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithTables("widgets"))

	stmts := []db.Statement{
		db.SQL(`INSERT INTO widgets (id) VALUES (?)`, "a"),
		db.SQL(`SELECT * FROM widgets WHERE id > ?`, "a"), // rejected predicate
		db.SQL(`INSERT INTO widgets (id) VALUES (?)`, "b"),
	}

	results, err := c.Batch(ctx, stmts)
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrUnsupportedPredicate)
	assert.Len(t, results, 1)

	// The first insert's effect remains; the third never ran.
	res, err := c.Execute(ctx, db.SQL(`SELECT * FROM widgets`))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "a", res.Rows[0].Value("id"))
}

func TestClient_InsertArityMismatch(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithTables("widgets"))

	_, err := c.Execute(ctx, db.SQL(`INSERT INTO widgets (id, n) VALUES (?, ?)`, "only-one"))
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrInvalidInput)
}

func TestClient_TrackingTableSkipsTimestampStamping(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithClock(testClock))

	_, err := c.Execute(ctx, db.SQL(
		`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
		0, "init", "2026-03-14T00:00:00Z",
	))
	require.NoError(t, err)

	res, err := c.Execute(ctx, db.SQL(`SELECT * FROM schema_migrations`))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	_, hasCreated := res.Rows[0].Get("created_at")
	_, hasUpdated := res.Rows[0].Get("updated_at")
	assert.False(t, hasCreated)
	assert.False(t, hasUpdated)
}

func TestClient_AppendOnlyTableSkipsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithClock(testClock))

	_, err := c.Execute(ctx, db.SQL(
		`INSERT INTO edges (id, source_id, target_id, rel_type) VALUES (?, ?, ?, ?)`,
		"e1", "a", "b", "mentions",
	))
	require.NoError(t, err)

	res, err := c.Execute(ctx, db.SQL(`SELECT * FROM edges`))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	_, hasCreated := res.Rows[0].Get("created_at")
	_, hasUpdated := res.Rows[0].Get("updated_at")
	assert.True(t, hasCreated)
	assert.False(t, hasUpdated)
}

func TestClient_ContextCancellation(t *testing.T) {
	c := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Execute(ctx, db.SQL(`SELECT * FROM notes`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_SelectCopiesRows(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithTables("widgets"))

	_, err := c.Execute(ctx, db.SQL(`INSERT INTO widgets (id, n) VALUES (?, ?)`, "a", 1))
	require.NoError(t, err)

	first, err := c.Execute(ctx, db.SQL(`SELECT * FROM widgets`))
	require.NoError(t, err)

	_, err = c.Execute(ctx, db.SQL(`UPDATE widgets SET n = ? WHERE id = ?`, 99, "a"))
	require.NoError(t, err)

	// The earlier result is a snapshot, not a live view.
	assert.Equal(t, 1, first.Rows[0].Value("n"))
}

func TestClient_WhereTypedEquality(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithTables("widgets"))

	_, err := c.Execute(ctx, db.SQL(`INSERT INTO widgets (id, n) VALUES (?, ?)`, "a", 1))
	require.NoError(t, err)

	// Numeric equality holds across integer widths and floats.
	res, err := c.Execute(ctx, db.SQL(`SELECT * FROM widgets WHERE n = ?`, int64(1)))
	require.NoError(t, err)
	assert.Len(t, res.Rows, 1)

	res, err = c.Execute(ctx, db.SQL(`SELECT * FROM widgets WHERE n = ?`, 1.0))
	require.NoError(t, err)
	assert.Len(t, res.Rows, 1)

	// No string/number coercion.
	res, err = c.Execute(ctx, db.SQL(`SELECT * FROM widgets WHERE n = ?`, "1"))
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func TestClient_MissingWhereArgument(t *testing.T) {
	ctx := context.Background()
	c := memory.New(memory.WithTables("widgets"))

	_, err := c.Execute(ctx, db.SQL(`SELECT * FROM widgets WHERE id = ?`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, db.ErrInvalidInput))
}
