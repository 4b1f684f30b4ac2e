// Package parser turns one semicolon-terminated SQL statement of
// spec.md §6.3's grammar into a Statement AST: a prefix-dispatch,
// recursive-descent parser with one node type per statement kind.
package parser

import "github.com/dvdb/davisbase/internal/column"

// Statement is the root interface for every statement kind the REPL
// grammar accepts.
type Statement interface {
	stmtNode()
}

type ShowTablesStmt struct{}

func (*ShowTablesStmt) stmtNode() {}

// CreateTableStmt's Columns are full column.ColumnDefinition values —
// a `col_def` is exactly a name, type, and modifier set, so there is no
// separate AST-level column type.
type CreateTableStmt struct {
	TableName string
	Columns   []column.ColumnDefinition
}

func (*CreateTableStmt) stmtNode() {}

type DropTableStmt struct {
	TableName string
}

func (*DropTableStmt) stmtNode() {}

// InsertStmt is `INSERT INTO name [(col, ...)] VALUES (lit, ...)`.
// Columns is nil when the statement omitted the column list, meaning
// Values must line up positionally with the table's own column order.
type InsertStmt struct {
	TableName string
	Columns   []string
	Values    []*LiteralExpr
}

func (*InsertStmt) stmtNode() {}

// SelectStmt is `SELECT (* | col, ...) FROM name [WHERE col op lit]`.
// Columns is nil for `SELECT *`.
type SelectStmt struct {
	TableName string
	Columns   []string
	Where     *WhereClause
}

func (*SelectStmt) stmtNode() {}

type DeleteStmt struct {
	TableName string
	Where     *WhereClause
}

func (*DeleteStmt) stmtNode() {}

type Assignment struct {
	Column string
	Value  *LiteralExpr
}

type UpdateStmt struct {
	TableName  string
	Assignment Assignment
	Where      *WhereClause
}

func (*UpdateStmt) stmtNode() {}

// CreateIndexStmt is `CREATE [UNIQUE] INDEX ON name (col)`. Unique is
// carried through but has no effect on the engine beyond documentation
// — any CREATE INDEX, unique or not, enforces and records distinctness
// per spec.md §4.5.6.
type CreateIndexStmt struct {
	TableName  string
	ColumnName string
	Unique     bool
}

func (*CreateIndexStmt) stmtNode() {}

type ExitStmt struct{}

func (*ExitStmt) stmtNode() {}

// WhereClause is `col op lit`, the only predicate shape spec.md §6.3
// allows: one comparison, no AND/OR.
type WhereClause struct {
	Column string
	Op     column.Op
	Value  *LiteralExpr
}

// LiteralExpr holds a parsed literal's raw Go value: nil (NULL), string,
// int64, or float64, matching column.FromLiteral's input domain.
type LiteralExpr struct {
	Value any
}
