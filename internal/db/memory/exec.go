// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package memory

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/mosaic-dev/mosaic/internal/db"
)

func (c *Client) exec(stmt statement, args []any) (*db.Result, error) {
	switch s := stmt.(type) {
	case *createStmt:
		// Schema is implicit in the store's fixed table set.
		return db.EmptyResult(), nil
	case *insertStmt:
		return c.execInsert(s, args)
	case *selectStmt:
		return c.execSelect(s, args)
	case *updateStmt:
		return c.execUpdate(s, args)
	case *deleteStmt:
		return c.execDelete(s, args)
	default:
		return nil, fmt.Errorf("statement %T: %w", s, db.ErrUnsupportedStatement)
	}
}

func (c *Client) execInsert(s *insertStmt, args []any) (*db.Result, error) {
	tbl := c.store.get(s.Table)
	if tbl == nil {
		return nil, fmt.Errorf("table %q: %w", s.Table, db.ErrUnsupportedStatement)
	}

	values, _, err := bindValues(s.Values, args)
	if err != nil {
		return nil, fmt.Errorf("INSERT into %s: %w", s.Table, err)
	}

	row := make(map[string]any, len(s.Columns)+2)
	for i, col := range s.Columns {
		row[col] = values[i]
	}
	now := c.timestamp()

	if s.Replace {
		if id, ok := row["id"]; ok {
			for _, existing := range tbl.rows {
				if valuesEqual(existing["id"], id) {
					// Merge the new fields; the original created_at is
					// kept, updated_at is refreshed.
					for k, v := range row {
						existing[k] = v
					}
					if c.stampsUpdatedAt(s.Table) {
						existing["updated_at"] = now
					}
					tbl.noteColumns(s.Columns)
					return &db.Result{RowsAffected: 1}, nil
				}
			}
		}
	}

	cols := append([]string(nil), s.Columns...)
	if s.Table != trackingTable {
		if _, ok := row["created_at"]; !ok {
			row["created_at"] = now
			cols = append(cols, "created_at")
		}
	}
	if c.stampsUpdatedAt(s.Table) {
		if _, ok := row["updated_at"]; !ok {
			row["updated_at"] = now
			cols = append(cols, "updated_at")
		}
	}

	tbl.noteColumns(cols)
	tbl.rows = append(tbl.rows, row)
	return &db.Result{RowsAffected: 1}, nil
}

func (c *Client) execSelect(s *selectStmt, args []any) (*db.Result, error) {
	tbl := c.store.get(s.Table)
	if tbl == nil {
		return nil, fmt.Errorf("table %q: %w", s.Table, db.ErrUnsupportedStatement)
	}

	whereVals, err := whereArgs(s.Where, args)
	if err != nil {
		return nil, fmt.Errorf("SELECT from %s: %w", s.Table, err)
	}

	var matched []map[string]any
	for _, row := range tbl.rows {
		if matchRow(row, s.Where, whereVals) {
			matched = append(matched, row)
		}
	}

	if s.Count {
		columns := []string{"count"}
		return &db.Result{
			Rows:    []db.Row{db.NewRow(columns, map[string]any{"count": int64(len(matched))})},
			Columns: columns,
		}, nil
	}

	if s.OrderBy != "" {
		// Stable sort: ties keep insertion order.
		col := s.OrderBy
		sort.SliceStable(matched, func(i, j int) bool {
			cmp := compareValues(matched[i][col], matched[j][col])
			if s.Desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if s.Limit != nil {
		// LIMIT's placeholder is bound to the final positional argument.
		var raw any
		if s.Limit.Placeholder {
			if len(args) == 0 {
				return nil, fmt.Errorf("SELECT from %s: no argument for LIMIT: %w", s.Table, db.ErrInvalidInput)
			}
			raw = args[len(args)-1]
		} else {
			raw = s.Limit.Literal
		}
		n, ok := toInt(raw)
		if !ok {
			return nil, fmt.Errorf("SELECT from %s: non-numeric LIMIT %v: %w", s.Table, raw, db.ErrInvalidInput)
		}
		if n < 0 {
			n = 0
		}
		if n < len(matched) {
			matched = matched[:n]
		}
	}

	if len(matched) == 0 {
		return db.EmptyResult(), nil
	}

	// Column names come from the first returned row, not a schema;
	// order follows first-seen column order for the table.
	columns := make([]string, 0, len(matched[0]))
	for _, col := range tbl.columns {
		if _, ok := matched[0][col]; ok {
			columns = append(columns, col)
		}
	}

	rows := make([]db.Row, 0, len(matched))
	for _, row := range matched {
		rows = append(rows, db.NewRow(columns, copyRow(row)))
	}

	return &db.Result{Rows: rows, Columns: columns}, nil
}

func (c *Client) execUpdate(s *updateStmt, args []any) (*db.Result, error) {
	tbl := c.store.get(s.Table)
	if tbl == nil {
		return nil, fmt.Errorf("table %q: %w", s.Table, db.ErrUnsupportedStatement)
	}

	exprs := make([]valueExpr, 0, len(s.Sets))
	for _, set := range s.Sets {
		exprs = append(exprs, set.Value)
	}
	setVals, used, err := bindValues(exprs, args)
	if err != nil {
		return nil, fmt.Errorf("UPDATE %s: %w", s.Table, err)
	}

	// WHERE consumes the arguments remaining after SET.
	whereVals, err := whereArgs(s.Where, args[used:])
	if err != nil {
		return nil, fmt.Errorf("UPDATE %s: %w", s.Table, err)
	}

	now := c.timestamp()
	var affected int64
	cols := make([]string, 0, len(s.Sets)+1)
	for _, set := range s.Sets {
		cols = append(cols, set.Column)
	}
	if c.stampsUpdatedAt(s.Table) {
		cols = append(cols, "updated_at")
	}

	for _, row := range tbl.rows {
		if !matchRow(row, s.Where, whereVals) {
			continue
		}
		for i, set := range s.Sets {
			row[set.Column] = setVals[i]
		}
		if c.stampsUpdatedAt(s.Table) {
			row["updated_at"] = now
		}
		affected++
	}
	if affected > 0 {
		tbl.noteColumns(cols)
	}

	return &db.Result{RowsAffected: affected}, nil
}

func (c *Client) execDelete(s *deleteStmt, args []any) (*db.Result, error) {
	tbl := c.store.get(s.Table)
	if tbl == nil {
		return nil, fmt.Errorf("table %q: %w", s.Table, db.ErrUnsupportedStatement)
	}

	whereVals, err := whereArgs(s.Where, args)
	if err != nil {
		return nil, fmt.Errorf("DELETE from %s: %w", s.Table, err)
	}

	kept := tbl.rows[:0]
	var removed int64
	for _, row := range tbl.rows {
		if matchRow(row, s.Where, whereVals) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	tbl.rows = kept

	return &db.Result{RowsAffected: removed}, nil
}

// stampsUpdatedAt reports whether a table receives automatic
// updated_at stamps. The tracking table and append-only log tables do
// not.
func (c *Client) stampsUpdatedAt(tableName string) bool {
	return tableName != trackingTable && !appendOnlyTables[tableName]
}

// bindValues resolves placeholders against args left-to-right and
// returns the resolved values plus the number of arguments consumed.
func bindValues(exprs []valueExpr, args []any) ([]any, int, error) {
	values := make([]any, len(exprs))
	used := 0
	for i, expr := range exprs {
		if !expr.Placeholder {
			values[i] = expr.Literal
			continue
		}
		if used >= len(args) {
			return nil, 0, fmt.Errorf("%d placeholders but %d arguments: %w",
				countPlaceholders(exprs), len(args), db.ErrInvalidInput)
		}
		values[i] = args[used]
		used++
	}
	return values, used, nil
}

func countPlaceholders(exprs []valueExpr) int {
	n := 0
	for _, expr := range exprs {
		if expr.Placeholder {
			n++
		}
	}
	return n
}

// whereArgs binds one argument per condition in left-to-right order.
func whereArgs(conds []condition, args []any) ([]any, error) {
	if len(args) < len(conds) {
		return nil, fmt.Errorf("WHERE needs %d arguments, got %d: %w",
			len(conds), len(args), db.ErrInvalidInput)
	}
	return args[:len(conds)], nil
}

func matchRow(row map[string]any, conds []condition, vals []any) bool {
	for i, cond := range conds {
		if !valuesEqual(row[cond.Column], vals[i]) {
			return false
		}
	}
	return true
}

func copyRow(row map[string]any) map[string]any {
	dup := make(map[string]any, len(row))
	for k, v := range row {
		dup[k] = v
	}
	return dup
}

// valuesEqual is the interpreter's typed equality rule: numeric values
// compare numerically across integer and float representations,
// everything else requires matching types. There is no string/number
// coercion.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return reflect.DeepEqual(a, b)
	}
}

// compareValues is the interpreter's ordering rule for ORDER BY:
// nil < bool (false < true) < numbers < strings < everything else, with
// numeric and lexicographic comparison inside a rank. Ties report 0 and
// keep insertion order under the stable sort.
func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case rankNil:
		return 0
	case rankBool:
		av, bv := a.(bool), b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case rankNumber:
		av, _ := toFloat(a)
		bv, _ := toFloat(b)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case rankString:
		av, bv := a.(string), b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

const (
	rankNil = iota
	rankBool
	rankNumber
	rankString
	rankOther
)

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return rankNil
	case bool:
		return rankBool
	case string:
		return rankString
	default:
		if _, ok := toFloat(v); ok {
			return rankNumber
		}
		return rankOther
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		if f, ok := toFloat(v); ok {
			return int(f), true
		}
		return 0, false
	}
}

func (c *Client) timestamp() string {
	return c.now().UTC().Format(db.TimeFormat)
}
