// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mosaic-dev/mosaic/internal/db"
)

func TestRow_NamedAndPositionalAccess(t *testing.T) {
	row := db.NewRow([]string{"id", "n"}, map[string]any{"id": "a", "n": 1})

	v, ok := row.Get("id")
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = row.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, row.Value("missing"))

	assert.Equal(t, "a", row.Index(0))
	assert.Equal(t, 1, row.Index(1))
	assert.Nil(t, row.Index(2))
	assert.Nil(t, row.Index(-1))

	assert.Equal(t, []string{"id", "n"}, row.Columns())
	assert.Equal(t, 2, row.Len())
}

func TestSQL_BindsArgs(t *testing.T) {
	stmt := db.SQL(`SELECT * FROM t WHERE id = ?`, "a")
	assert.Equal(t, `SELECT * FROM t WHERE id = ?`, stmt.SQL)
	assert.Equal(t, []any{"a"}, stmt.Args)

	bare := db.SQL(`SELECT 1`)
	assert.Empty(t, bare.Args)
}
