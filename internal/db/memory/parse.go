// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package memory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mosaic-dev/mosaic/internal/db"
)

// parse parses a single parameterized statement into its AST variant.
// Statement shapes outside the dialect subset return
// db.ErrUnsupportedStatement; WHERE shapes outside the equality/AND
// subset return db.ErrUnsupportedPredicate.
func parse(sqlText string) (statement, error) {
	q := strings.TrimSpace(sqlText)
	q = strings.TrimSuffix(q, ";")
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("empty statement: %w", db.ErrUnsupportedStatement)
	}

	upper := strings.ToUpper(q)

	switch {
	case strings.HasPrefix(upper, "CREATE TABLE"),
		strings.HasPrefix(upper, "CREATE INDEX"),
		strings.HasPrefix(upper, "CREATE UNIQUE INDEX"):
		return &createStmt{}, nil
	case strings.HasPrefix(upper, "INSERT "):
		return parseInsert(q, upper)
	case strings.HasPrefix(upper, "SELECT ") || strings.HasPrefix(upper, "SELECT\n"):
		return parseSelect(q, upper)
	case strings.HasPrefix(upper, "UPDATE "):
		return parseUpdate(q, upper)
	case strings.HasPrefix(upper, "DELETE "):
		return parseDelete(q, upper)
	}

	return nil, fmt.Errorf("statement %q: %w", firstWord(q), db.ErrUnsupportedStatement)
}

func parseInsert(q, upper string) (statement, error) {
	replace := strings.HasPrefix(upper, "INSERT OR REPLACE ")

	idxInto := strings.Index(upper, "INTO ")
	if idxInto == -1 {
		return nil, fmt.Errorf("INSERT without INTO: %w", db.ErrUnsupportedStatement)
	}
	rest := strings.TrimSpace(q[idxInto+len("INTO "):])

	// An explicit column list is required; bare INSERT INTO t VALUES
	// (...) is outside the subset.
	open := strings.Index(rest, "(")
	if open == -1 {
		return nil, fmt.Errorf("INSERT without column list: %w", db.ErrUnsupportedStatement)
	}
	tableName := trimIdent(rest[:open])
	if tableName == "" || strings.ContainsAny(tableName, " \t\n") {
		return nil, fmt.Errorf("INSERT without column list: %w", db.ErrUnsupportedStatement)
	}

	closeIdx := strings.Index(rest, ")")
	if closeIdx == -1 || closeIdx < open {
		return nil, fmt.Errorf("INSERT: unterminated column list: %w", db.ErrUnsupportedStatement)
	}
	var columns []string
	for _, c := range splitTopLevel(rest[open+1 : closeIdx]) {
		columns = append(columns, trimIdent(c))
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("INSERT with empty column list: %w", db.ErrUnsupportedStatement)
	}

	afterCols := rest[closeIdx+1:]
	idxValues := strings.Index(strings.ToUpper(afterCols), "VALUES")
	if idxValues == -1 {
		return nil, fmt.Errorf("INSERT without VALUES: %w", db.ErrUnsupportedStatement)
	}
	valsPart := strings.TrimSpace(afterCols[idxValues+len("VALUES"):])
	if !strings.HasPrefix(valsPart, "(") || !strings.HasSuffix(valsPart, ")") {
		return nil, fmt.Errorf("INSERT: malformed VALUES list: %w", db.ErrUnsupportedStatement)
	}
	inner := valsPart[1 : len(valsPart)-1]
	if indexOutsideQuotes(inner, ")") != -1 {
		// Multi-row VALUES is outside the subset.
		return nil, fmt.Errorf("INSERT with multiple VALUES rows: %w", db.ErrUnsupportedStatement)
	}

	rawVals := splitTopLevel(inner)
	if len(rawVals) != len(columns) {
		return nil, fmt.Errorf("INSERT into %s: %d columns but %d values: %w",
			tableName, len(columns), len(rawVals), db.ErrInvalidInput)
	}

	values := make([]valueExpr, 0, len(rawVals))
	for _, raw := range rawVals {
		expr, err := parseValueExpr(raw)
		if err != nil {
			return nil, fmt.Errorf("INSERT into %s: %w", tableName, err)
		}
		values = append(values, expr)
	}

	return &insertStmt{
		Table:   tableName,
		Columns: columns,
		Values:  values,
		Replace: replace,
	}, nil
}

func parseSelect(q, upper string) (statement, error) {
	idxFrom := strings.Index(upper, " FROM ")
	if idxFrom == -1 {
		return nil, fmt.Errorf("SELECT without FROM: %w", db.ErrUnsupportedStatement)
	}
	selectList := q[len("SELECT"):idxFrom]
	count := strings.Contains(strings.ToUpper(selectList), "COUNT(*)")

	rest := q[idxFrom+len(" FROM "):]
	restUpper := upper[idxFrom+len(" FROM "):]

	idxWhere := indexOutsideQuotes(restUpper, " WHERE ")
	idxOrder := indexOutsideQuotes(restUpper, " ORDER BY ")
	idxLimit := indexOutsideQuotes(restUpper, " LIMIT ")

	tableEnd := len(rest)
	for _, idx := range []int{idxWhere, idxOrder, idxLimit} {
		if idx != -1 && idx < tableEnd {
			tableEnd = idx
		}
	}
	tableName := trimIdent(rest[:tableEnd])
	if tableName == "" || strings.ContainsAny(tableName, " \t\n,") {
		// Joins, subqueries, and multi-table FROM are outside the subset.
		return nil, fmt.Errorf("SELECT with unsupported FROM clause: %w", db.ErrUnsupportedStatement)
	}

	stmt := &selectStmt{Table: tableName, Count: count}

	if idxWhere != -1 {
		whereEnd := len(rest)
		for _, idx := range []int{idxOrder, idxLimit} {
			if idx != -1 && idx > idxWhere && idx < whereEnd {
				whereEnd = idx
			}
		}
		where, err := parseWhere(rest[idxWhere+len(" WHERE ") : whereEnd])
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if idxOrder != -1 {
		orderEnd := len(rest)
		if idxLimit != -1 && idxLimit > idxOrder {
			orderEnd = idxLimit
		}
		col, desc, err := parseOrderBy(rest[idxOrder+len(" ORDER BY ") : orderEnd])
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = col
		stmt.Desc = desc
	}

	if idxLimit != -1 {
		raw := strings.TrimSpace(rest[idxLimit+len(" LIMIT "):])
		expr, err := parseValueExpr(raw)
		if err != nil {
			return nil, fmt.Errorf("SELECT from %s: malformed LIMIT: %w", tableName, db.ErrUnsupportedStatement)
		}
		stmt.Limit = &expr
	}

	return stmt, nil
}

func parseUpdate(q, upper string) (statement, error) {
	idxSet := indexOutsideQuotes(upper, " SET ")
	if idxSet == -1 {
		return nil, fmt.Errorf("UPDATE without SET: %w", db.ErrUnsupportedStatement)
	}
	tableName := trimIdent(q[len("UPDATE"):idxSet])
	if tableName == "" || strings.ContainsAny(tableName, " \t\n") {
		return nil, fmt.Errorf("UPDATE with unsupported table clause: %w", db.ErrUnsupportedStatement)
	}

	rest := q[idxSet+len(" SET "):]
	restUpper := upper[idxSet+len(" SET "):]

	idxWhere := indexOutsideQuotes(restUpper, " WHERE ")
	setPart := rest
	if idxWhere != -1 {
		setPart = rest[:idxWhere]
	}

	var sets []assignment
	for _, raw := range splitTopLevel(setPart) {
		eq := indexOutsideQuotes(raw, "=")
		if eq == -1 {
			return nil, fmt.Errorf("UPDATE %s: malformed SET entry %q: %w", tableName, raw, db.ErrUnsupportedStatement)
		}
		col := trimIdent(raw[:eq])
		expr, err := parseValueExpr(raw[eq+1:])
		if err != nil {
			return nil, fmt.Errorf("UPDATE %s: %w", tableName, err)
		}
		sets = append(sets, assignment{Column: col, Value: expr})
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("UPDATE %s with empty SET: %w", tableName, db.ErrUnsupportedStatement)
	}

	stmt := &updateStmt{Table: tableName, Sets: sets}

	if idxWhere != -1 {
		where, err := parseWhere(rest[idxWhere+len(" WHERE "):])
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	return stmt, nil
}

func parseDelete(q, upper string) (statement, error) {
	if !strings.HasPrefix(upper, "DELETE FROM ") {
		return nil, fmt.Errorf("DELETE without FROM: %w", db.ErrUnsupportedStatement)
	}
	rest := q[len("DELETE FROM "):]
	restUpper := upper[len("DELETE FROM "):]

	idxWhere := indexOutsideQuotes(restUpper, " WHERE ")
	tableEnd := len(rest)
	if idxWhere != -1 {
		tableEnd = idxWhere
	}
	tableName := trimIdent(rest[:tableEnd])
	if tableName == "" || strings.ContainsAny(tableName, " \t\n") {
		return nil, fmt.Errorf("DELETE with unsupported table clause: %w", db.ErrUnsupportedStatement)
	}

	stmt := &deleteStmt{Table: tableName}

	if idxWhere != -1 {
		where, err := parseWhere(rest[idxWhere+len(" WHERE "):])
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	return stmt, nil
}

// parseWhere parses a conjunction of `column = ?` equality tests. Any
// other predicate shape (OR, inequality, LIKE, IN, parens, literal
// right-hand sides) is db.ErrUnsupportedPredicate: silently matching
// every row on a clause the interpreter cannot read would turn a filter
// bug into data loss on UPDATE or DELETE.
func parseWhere(clause string) ([]condition, error) {
	// Pad '=' so "id=?" and "id = ?" tokenize identically. This also
	// breaks ">=", "<=", "!=" into token sequences the grammar below
	// rejects, which is exactly what we want.
	padded := strings.ReplaceAll(clause, "=", " = ")
	tokens := strings.Fields(padded)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty WHERE clause: %w", db.ErrUnsupportedPredicate)
	}

	var conds []condition
	for i := 0; i < len(tokens); {
		if len(tokens)-i < 3 {
			return nil, fmt.Errorf("WHERE clause %q: %w", clause, db.ErrUnsupportedPredicate)
		}
		col := trimIdent(tokens[i])
		if !isIdent(col) || tokens[i+1] != "=" || tokens[i+2] != "?" {
			return nil, fmt.Errorf("WHERE clause %q: %w", clause, db.ErrUnsupportedPredicate)
		}
		conds = append(conds, condition{Column: col})
		i += 3
		if i == len(tokens) {
			break
		}
		if !strings.EqualFold(tokens[i], "AND") {
			return nil, fmt.Errorf("WHERE clause %q: %w", clause, db.ErrUnsupportedPredicate)
		}
		i++
	}

	return conds, nil
}

func parseOrderBy(clause string) (col string, desc bool, err error) {
	tokens := strings.Fields(clause)
	switch len(tokens) {
	case 1:
		return trimIdent(tokens[0]), false, nil
	case 2:
		switch strings.ToUpper(tokens[1]) {
		case "ASC":
			return trimIdent(tokens[0]), false, nil
		case "DESC":
			return trimIdent(tokens[0]), true, nil
		}
	}
	return "", false, fmt.Errorf("unsupported ORDER BY clause %q: %w", clause, db.ErrUnsupportedStatement)
}

// parseValueExpr parses a single value position: a `?` placeholder or
// an inline literal (single-quoted string with '' escapes, integer,
// float, TRUE/FALSE, NULL).
func parseValueExpr(raw string) (valueExpr, error) {
	s := strings.TrimSpace(raw)
	if s == "?" {
		return valueExpr{Placeholder: true}, nil
	}

	lit, err := parseLiteral(s)
	if err != nil {
		return valueExpr{}, err
	}
	return valueExpr{Literal: lit}, nil
}

func parseLiteral(s string) (any, error) {
	if s == "" {
		return nil, fmt.Errorf("empty literal: %w", db.ErrUnsupportedStatement)
	}

	switch strings.ToUpper(s) {
	case "NULL":
		return nil, nil
	case "TRUE":
		return true, nil
	case "FALSE":
		return false, nil
	}

	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'"), nil
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}

	return nil, fmt.Errorf("unparseable literal %q: %w", s, db.ErrUnsupportedStatement)
}

// splitTopLevel splits on commas outside single-quoted strings,
// trimming whitespace and discarding empty fragments.
func splitTopLevel(s string) []string {
	var out []string
	var sb strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			sb.WriteByte(c)
		case c == ',' && !inQuote:
			if part := strings.TrimSpace(sb.String()); part != "" {
				out = append(out, part)
			}
			sb.Reset()
		default:
			sb.WriteByte(c)
		}
	}
	if part := strings.TrimSpace(sb.String()); part != "" {
		out = append(out, part)
	}
	return out
}

// indexOutsideQuotes returns the first index of substr in s that is not
// inside a single-quoted string, or -1.
func indexOutsideQuotes(s, substr string) int {
	inQuote := false
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i] == '\'' {
			inQuote = !inQuote
			continue
		}
		if !inQuote && s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

// trimIdent strips surrounding whitespace and identifier quoting
// (double quotes, backticks, brackets) from an identifier.
func trimIdent(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"`[]")
	return s
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		ok := r == '_' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9')
		if !ok {
			return false
		}
	}
	return true
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
