// Package executor runs a parsed Statement against a catalog.Database:
// SHOW TABLES, CREATE/DROP TABLE, INSERT, SELECT, DELETE, UPDATE, and
// CREATE [UNIQUE] INDEX, per spec.md §4.6. There is no intervening
// planner stage — with no joins, sub-queries, or aggregates, a parsed
// statement already names everything a dispatch needs to know.
package executor

import (
	"fmt"
	"log/slog"

	"github.com/dvdb/davisbase/internal/catalog"
	"github.com/dvdb/davisbase/internal/column"
	"github.com/dvdb/davisbase/internal/sql/parser"
	"github.com/dvdb/davisbase/internal/table"
)

// Executor runs statements against one open Database.
type Executor struct {
	db  *catalog.Database
	log *slog.Logger
}

func New(db *catalog.Database) *Executor {
	return &Executor{db: db, log: slog.Default()}
}

// ExecSQL parses sql and runs it. EXIT parses fine but is never run
// against the database; callers see ErrExit and decide what to do
// (the REPL leaves the loop without printing an [ERROR] line).
func (e *Executor) ExecSQL(sql string) (*Result, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	return e.Exec(stmt)
}

// Exec runs an already-parsed statement.
func (e *Executor) Exec(stmt parser.Statement) (*Result, error) {
	switch s := stmt.(type) {
	case *parser.ShowTablesStmt:
		return e.execShowTables()
	case *parser.CreateTableStmt:
		return e.execCreateTable(s)
	case *parser.DropTableStmt:
		return e.execDropTable(s)
	case *parser.InsertStmt:
		return e.execInsert(s)
	case *parser.SelectStmt:
		return e.execSelect(s)
	case *parser.DeleteStmt:
		return e.execDelete(s)
	case *parser.UpdateStmt:
		return e.execUpdate(s)
	case *parser.CreateIndexStmt:
		return e.execCreateIndex(s)
	case *parser.ExitStmt:
		return nil, ErrExit
	default:
		return nil, fmt.Errorf("executor: unsupported statement %T", stmt)
	}
}

// execShowTables prints every davisbase_tables row's name, including
// the two schema tables' own rows — spec.md §4.6.
func (e *Executor) execShowTables() (*Result, error) {
	names, err := e.db.ListTables()
	if err != nil {
		return nil, err
	}
	res := &Result{}
	for _, name := range names {
		res.Rows = append(res.Rows, []column.Value{{Type: column.Text, Text: name}})
	}
	return res, nil
}

func (e *Executor) execCreateTable(s *parser.CreateTableStmt) (*Result, error) {
	if _, err := e.db.CreateTable(s.TableName, s.Columns); err != nil {
		return nil, err
	}
	e.log.Debug("executor.CreateTable", "table", s.TableName, "columns", len(s.Columns))
	return &Result{AffectedRows: 0}, nil
}

func (e *Executor) execDropTable(s *parser.DropTableStmt) (*Result, error) {
	if err := e.db.RemoveTable(s.TableName); err != nil {
		return nil, err
	}
	e.log.Debug("executor.DropTable", "table", s.TableName)
	return &Result{AffectedRows: 0}, nil
}

// colIndex returns cols' zero-based index of name, or -1.
func colIndex(cols []column.ColumnDefinition, name string) int {
	for i, c := range cols {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// execInsert implements spec.md §4.6's INSERT: a named column list
// fills everything else with NULL and assigns supplied positions by
// name; an omitted column list requires the value count to match the
// table's column count exactly, positionally.
func (e *Executor) execInsert(s *parser.InsertStmt) (*Result, error) {
	handle, err := e.db.GetTable(s.TableName)
	if err != nil {
		return nil, err
	}

	literals := make([]any, len(handle.Columns))
	if s.Columns != nil {
		if len(s.Columns) != len(s.Values) {
			return nil, ErrColumnCountMismatch
		}
		for i, name := range s.Columns {
			idx := colIndex(handle.Columns, name)
			if idx < 0 {
				return nil, fmt.Errorf("%w: %s", catalog.ErrColumnNotFound, name)
			}
			literals[idx] = s.Values[i].Value
		}
	} else {
		if len(s.Values) != len(handle.Columns) {
			return nil, ErrColumnCountMismatch
		}
		for i, v := range s.Values {
			literals[i] = v.Value
		}
	}

	values := make([]column.Value, len(handle.Columns))
	for i, col := range handle.Columns {
		v, err := column.FromLiteral(col.Type, literals[i], col.Modifiers.IsNullable)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	for i, col := range handle.Columns {
		if !col.Modifiers.Unique && !col.Modifiers.PrimaryKey {
			continue
		}
		if values[i].IsNull() {
			continue
		}
		conflict, err := columnHasValue(handle.Table, i, values[i])
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, fmt.Errorf("%w: column %s", ErrUniqueViolation, col.Name)
		}
	}

	payload, err := column.EncodeRow(values)
	if err != nil {
		return nil, err
	}
	if _, err := handle.Table.AppendRecord(payload); err != nil {
		return nil, err
	}
	if err := handle.Sync(); err != nil {
		return nil, err
	}
	return &Result{AffectedRows: 1}, nil
}

// columnHasValue scans tbl for any live row whose value at colIdx
// equals want.
func columnHasValue(tbl *table.Table, colIdx int, want column.Value) (bool, error) {
	found := false
	var scanErr error
	err := tbl.MapOverRecords(func(pageNo, index int, cell table.LeafCell) table.ScanAction {
		row, err := column.DecodeRow(cell.Payload)
		if err != nil {
			scanErr = err
			return table.Stop()
		}
		eq, err := column.Compare(row[colIdx], column.OpEqual, want)
		if err != nil {
			scanErr = err
			return table.Stop()
		}
		if eq {
			found = true
			return table.Stop()
		}
		return table.Continue()
	})
	if err != nil {
		return false, err
	}
	return found, scanErr
}

// execSelect implements spec.md §4.6/§6.4's SELECT: a projection (or
// every column), an optional single WHERE predicate, no ordering.
func (e *Executor) execSelect(s *parser.SelectStmt) (*Result, error) {
	handle, err := e.db.GetTable(s.TableName)
	if err != nil {
		return nil, err
	}

	projIdx, header, err := resolveProjection(handle.Columns, s.Columns)
	if err != nil {
		return nil, err
	}

	whereIdx, whereOp, whereVal, hasWhere, err := resolveWhere(handle.Columns, s.Where)
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: header}
	var scanErr error
	err = handle.Table.MapOverRecords(func(pageNo, index int, cell table.LeafCell) table.ScanAction {
		row, err := column.DecodeRow(cell.Payload)
		if err != nil {
			scanErr = err
			return table.Stop()
		}
		if hasWhere {
			ok, err := column.Compare(row[whereIdx], whereOp, whereVal)
			if err != nil {
				scanErr = err
				return table.Stop()
			}
			if !ok {
				return table.Continue()
			}
		}
		projected := make([]column.Value, len(projIdx))
		for i, idx := range projIdx {
			projected[i] = row[idx]
		}
		res.RowIDs = append(res.RowIDs, cell.RowID)
		res.Rows = append(res.Rows, projected)
		return table.Continue()
	})
	if err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}
	res.AffectedRows = int64(len(res.Rows))
	return res, nil
}

func resolveProjection(cols []column.ColumnDefinition, names []string) ([]int, []string, error) {
	if names == nil {
		idx := make([]int, len(cols))
		header := make([]string, len(cols))
		for i, c := range cols {
			idx[i] = i
			header[i] = c.Name
		}
		return idx, header, nil
	}
	idx := make([]int, len(names))
	for i, name := range names {
		p := colIndex(cols, name)
		if p < 0 {
			return nil, nil, fmt.Errorf("%w: %s", catalog.ErrColumnNotFound, name)
		}
		idx[i] = p
	}
	return idx, names, nil
}

// resolveWhere resolves a parsed WhereClause against cols, returning
// the column index, operator, and Value it compares against. hasWhere
// is false when where is nil.
func resolveWhere(cols []column.ColumnDefinition, where *parser.WhereClause) (idx int, op column.Op, val column.Value, hasWhere bool, err error) {
	if where == nil {
		return 0, 0, column.Value{}, false, nil
	}
	idx = colIndex(cols, where.Column)
	if idx < 0 {
		return 0, 0, column.Value{}, false, fmt.Errorf("%w: %s", catalog.ErrColumnNotFound, where.Column)
	}
	val, err = column.FromLiteral(cols[idx].Type, where.Value.Value, true)
	if err != nil {
		return 0, 0, column.Value{}, false, err
	}
	return idx, where.Op, val, true, nil
}

// execDelete implements spec.md §4.6's DELETE: the engine requires a
// WHERE clause (the REPL grammar allows omitting it, but the engine
// rejects that here with WhereRequired). Matching rows are removed
// with the Goto(index-1) re-scan protocol.
func (e *Executor) execDelete(s *parser.DeleteStmt) (*Result, error) {
	if s.Where == nil {
		return nil, ErrWhereRequired
	}
	handle, err := e.db.GetTable(s.TableName)
	if err != nil {
		return nil, err
	}

	whereIdx, whereOp, whereVal, _, err := resolveWhere(handle.Columns, s.Where)
	if err != nil {
		return nil, err
	}

	var affected int64
	var scanErr error
	err = handle.Table.MapOverRecords(func(pageNo, index int, cell table.LeafCell) table.ScanAction {
		row, err := column.DecodeRow(cell.Payload)
		if err != nil {
			scanErr = err
			return table.Stop()
		}
		ok, err := column.Compare(row[whereIdx], whereOp, whereVal)
		if err != nil {
			scanErr = err
			return table.Stop()
		}
		if !ok {
			return table.Continue()
		}
		if err := handle.Table.DeleteCellAt(pageNo, index); err != nil {
			scanErr = err
			return table.Stop()
		}
		affected++
		return table.Goto(index - 1)
	})
	if err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}
	if err := handle.Sync(); err != nil {
		return nil, err
	}
	return &Result{AffectedRows: affected}, nil
}

// execUpdate implements spec.md §4.6's UPDATE: a single `col = lit`
// assignment and an optional WHERE. If the assigned column is
// unique/primary_key, a pre-scan rejects the whole statement before
// any row is mutated if the new value already exists anywhere in the
// table.
func (e *Executor) execUpdate(s *parser.UpdateStmt) (*Result, error) {
	handle, err := e.db.GetTable(s.TableName)
	if err != nil {
		return nil, err
	}

	targetIdx := colIndex(handle.Columns, s.Assignment.Column)
	if targetIdx < 0 {
		return nil, fmt.Errorf("%w: %s", catalog.ErrColumnNotFound, s.Assignment.Column)
	}
	targetCol := handle.Columns[targetIdx]
	newVal, err := column.FromLiteral(targetCol.Type, s.Assignment.Value.Value, targetCol.Modifiers.IsNullable)
	if err != nil {
		return nil, err
	}

	if (targetCol.Modifiers.Unique || targetCol.Modifiers.PrimaryKey) && !newVal.IsNull() {
		conflict, err := columnHasValue(handle.Table, targetIdx, newVal)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, fmt.Errorf("%w: column %s", ErrUniqueViolation, targetCol.Name)
		}
	}

	var whereIdx int
	var whereOp column.Op
	var whereVal column.Value
	var hasWhere bool
	if s.Where != nil {
		whereIdx, whereOp, whereVal, hasWhere, err = resolveWhere(handle.Columns, s.Where)
		if err != nil {
			return nil, err
		}
	}

	var affected int64
	var scanErr error
	err = handle.Table.MapOverRecords(func(pageNo, index int, cell table.LeafCell) table.ScanAction {
		row, err := column.DecodeRow(cell.Payload)
		if err != nil {
			scanErr = err
			return table.Stop()
		}
		if hasWhere {
			ok, err := column.Compare(row[whereIdx], whereOp, whereVal)
			if err != nil {
				scanErr = err
				return table.Stop()
			}
			if !ok {
				return table.Continue()
			}
		}
		row[targetIdx] = newVal
		payload, err := column.EncodeRow(row)
		if err != nil {
			scanErr = err
			return table.Stop()
		}
		if err := handle.Table.UpdateCellAt(pageNo, index, cell.RowID, payload); err != nil {
			scanErr = err
			return table.Stop()
		}
		affected++
		return table.Continue()
	})
	if err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}
	if err := handle.Sync(); err != nil {
		return nil, err
	}
	return &Result{AffectedRows: affected}, nil
}

// execCreateIndex implements spec.md §4.5.6/§4.6's CREATE [UNIQUE]
// INDEX: verify the column's current values are all pairwise distinct
// (NULLs excluded — a NULL is never a duplicate of anything, including
// another NULL, matching ordinary SQL UNIQUE semantics), then flip
// is_unique. No physical index is ever built.
func (e *Executor) execCreateIndex(s *parser.CreateIndexStmt) (*Result, error) {
	handle, err := e.db.GetTable(s.TableName)
	if err != nil {
		return nil, err
	}
	idx := colIndex(handle.Columns, s.ColumnName)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", catalog.ErrColumnNotFound, s.ColumnName)
	}

	var seen []column.Value
	var scanErr error
	err = handle.Table.MapOverRecords(func(pageNo, index int, cell table.LeafCell) table.ScanAction {
		row, err := column.DecodeRow(cell.Payload)
		if err != nil {
			scanErr = err
			return table.Stop()
		}
		v := row[idx]
		if v.IsNull() {
			return table.Continue()
		}
		for _, prior := range seen {
			eq, err := column.Compare(v, column.OpEqual, prior)
			if err != nil {
				scanErr = err
				return table.Stop()
			}
			if eq {
				scanErr = fmt.Errorf("%w: column %s", ErrUniqueViolation, s.ColumnName)
				return table.Stop()
			}
		}
		seen = append(seen, v)
		return table.Continue()
	})
	if err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}

	if err := e.db.MakeColumnUnique(s.TableName, s.ColumnName); err != nil {
		return nil, err
	}
	e.log.Debug("executor.CreateIndex", "table", s.TableName, "column", s.ColumnName, "unique", s.Unique)
	return &Result{AffectedRows: 0}, nil
}
