// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package memory

// statement is the common interface for all parsed statements. The
// dialect subset is a closed set of variants; anything the parser
// cannot produce one of these for is an unsupported statement.
type statement interface {
	stmtNode()
}

// createStmt represents CREATE TABLE / CREATE INDEX. Both are
// recognized and executed as no-ops: the store's table set is fixed at
// construction time, so schema statements have nothing to do.
type createStmt struct{}

func (*createStmt) stmtNode() {}

// insertStmt represents INSERT [OR REPLACE] INTO t (cols...) VALUES (...).
// An explicit column list is required; values are positional
// placeholders or literals, matched to columns by position.
type insertStmt struct {
	Table   string
	Columns []string
	Values  []valueExpr
	Replace bool
}

func (*insertStmt) stmtNode() {}

// selectStmt represents SELECT ... FROM t with the supported clauses.
// The select list itself is ignored: the interpreter returns whole rows
// (the application only ever selects * or COUNT(*)), except that a
// COUNT(*) query returns a single synthetic {count} row.
type selectStmt struct {
	Table   string
	Count   bool
	Where   []condition
	OrderBy string
	Desc    bool
	Limit   *valueExpr
}

func (*selectStmt) stmtNode() {}

// updateStmt represents UPDATE t SET col = ?, col = 'lit' [WHERE ...].
// SET placeholders consume arguments left-to-right; WHERE consumes the
// remainder.
type updateStmt struct {
	Table string
	Sets  []assignment
	Where []condition
}

func (*updateStmt) stmtNode() {}

// deleteStmt represents DELETE FROM t [WHERE ...].
type deleteStmt struct {
	Table string
	Where []condition
}

func (*deleteStmt) stmtNode() {}

// condition is a single `column = ?` equality test. WHERE clauses are
// conjunctions of these; each consumes one positional argument in
// left-to-right order.
type condition struct {
	Column string
}

// assignment is one SET clause entry.
type assignment struct {
	Column string
	Value  valueExpr
}

// valueExpr is either a positional placeholder or an inline literal.
type valueExpr struct {
	Placeholder bool
	Literal     any
}
