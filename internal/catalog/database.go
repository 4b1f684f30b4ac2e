// Package catalog owns a DavisBase data directory: the default page
// length, and the two self-describing schema tables (davisbase_tables,
// davisbase_columns) that record every other table's on-disk location
// and column layout. It is the only thing in the module that knows how
// to turn a bare table name into an open internal/table.Table.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dvdb/davisbase/internal/column"
	"github.com/dvdb/davisbase/internal/storage"
	"github.com/dvdb/davisbase/internal/table"
)

// Database is a single open data directory. Not safe for concurrent
// use from multiple goroutines beyond the locking this type itself
// does — spec.md §5 rules out concurrent access to a directory from
// more than one process or thread in the first place.
type Database struct {
	dir               string
	defaultPageLength int
	bootstrapping     bool

	tablesPager  *storage.Pager
	columnsPager *storage.Pager
	tables       *table.Table
	columns      *table.Table

	mu  sync.Mutex
	log *slog.Logger
}

// TableHandle is an opened user table plus its column definitions and a
// borrowed reference back to the Database that owns its schema rows.
// Callers sync page-count/next-row-id changes back to davisbase_tables
// explicitly via Sync after a mutation, rather than the Database
// auto-tracking every table's internals.
type TableHandle struct {
	Name    string
	Table   *table.Table
	Columns []column.ColumnDefinition

	db *Database
}

// Sync rewrites this table's davisbase_tables row with its current
// root page, page count, and next row-id. Call it after AppendRecord,
// UpdateRecord, or DeleteRecord changes those values.
func (h *TableHandle) Sync() error { return h.db.syncTableMeta(h.Name, h.Table) }

func tablePathIn(dir, name string) string { return filepath.Join(dir, name+tableFileExt) }

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Open opens directory as a DavisBase data directory, bootstrapping the
// schema tables on first use or loading their existing metadata
// otherwise.
func Open(directory string, defaultPageLength int) (*Database, error) {
	info, err := os.Stat(directory)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, directory)
	}

	db := &Database{
		dir:               directory,
		defaultPageLength: defaultPageLength,
		log:               slog.Default(),
	}
	if err := db.initializeSchema(); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *Database) tablePath(name string) string { return tablePathIn(db.dir, name) }

// initializeSchema either loads the two existing schema table files or
// creates them fresh, mirroring the "chicken-and-egg" bootstrap of
// spec.md §4.5: the schema tables describe every table including
// themselves, so their own first two rows have to be patched in after
// they're already on disk.
func (db *Database) initializeSchema() error {
	tablesPath := db.tablePath(tablesSchemaName)
	columnsPath := db.tablePath(columnsSchemaName)

	if fileExists(tablesPath) && fileExists(columnsPath) {
		return db.loadSchema(tablesPath, columnsPath)
	}
	return db.bootstrapSchema(tablesPath, columnsPath)
}

func (db *Database) loadSchema(tablesPath, columnsPath string) error {
	tablesPager, err := storage.OpenPager(tablesPath, db.defaultPageLength)
	if err != nil {
		return err
	}
	columnsPager, err := storage.OpenPager(columnsPath, db.defaultPageLength)
	if err != nil {
		return err
	}

	// Provisional views at root page 0 — every table's root page is 0
	// for at least as long as it fits on a single page, which covers
	// these two schema tables for any reasonably sized database.
	provisionalTables := table.OpenTable(tablesPager, db.defaultPageLength, 0, table.InitialRowID)

	tablesMeta, err := scanTableMetaRow(provisionalTables, tablesSchemaName)
	if err != nil {
		return err
	}
	tables := table.OpenTable(tablesPager, db.defaultPageLength, int(tablesMeta.rootPageNo), tablesMeta.nextRowID)

	columnsMeta, err := scanTableMetaRow(tables, columnsSchemaName)
	if err != nil {
		return err
	}
	columns := table.OpenTable(columnsPager, db.defaultPageLength, int(columnsMeta.rootPageNo), columnsMeta.nextRowID)

	db.tablesPager, db.columnsPager = tablesPager, columnsPager
	db.tables, db.columns = tables, columns
	return nil
}

func (db *Database) bootstrapSchema(tablesPath, columnsPath string) error {
	db.bootstrapping = true
	defer func() { db.bootstrapping = false }()

	tablesPager, err := storage.OpenPager(tablesPath, db.defaultPageLength)
	if err != nil {
		return err
	}
	columnsPager, err := storage.OpenPager(columnsPath, db.defaultPageLength)
	if err != nil {
		return err
	}
	tables, err := table.CreateTable(tablesPager, db.defaultPageLength)
	if err != nil {
		return err
	}
	columns, err := table.CreateTable(columnsPager, db.defaultPageLength)
	if err != nil {
		return err
	}
	db.tablesPager, db.columnsPager = tablesPager, columnsPager
	db.tables, db.columns = tables, columns

	// Placeholder rows first (root/page_count/next_row_id are patched
	// in below, once the two tables have actually been written to and
	// their real values are known).
	for _, name := range [...]string{tablesSchemaName, columnsSchemaName} {
		payload, err := encodeTableMetaRow(tableMetaRow{name: name, pageLength: int16(db.defaultPageLength)})
		if err != nil {
			return err
		}
		if _, err := db.tables.AppendRecord(payload); err != nil {
			return err
		}
	}

	if err := db.appendColumnRows(tablesSchemaName, tablesSchemaColumns()); err != nil {
		return err
	}
	if err := db.appendColumnRows(columnsSchemaName, columnsSchemaColumns()); err != nil {
		return err
	}

	if err := db.rewriteTableMetaRow(tablesSchemaName, db.tables); err != nil {
		return err
	}
	if err := db.rewriteTableMetaRow(columnsSchemaName, db.columns); err != nil {
		return err
	}
	db.log.Debug("catalog.bootstrapSchema", "dir", db.dir)
	return nil
}

func (db *Database) appendColumnRows(tableName string, defs []column.ColumnDefinition) error {
	for i, def := range defs {
		payload, err := encodeColumnMetaRow(columnMetaRow{tableName: tableName, def: def, ordinal: i + 1})
		if err != nil {
			return err
		}
		if _, err := db.columns.AppendRecord(payload); err != nil {
			return err
		}
	}
	return nil
}

// scanTableMetaRow finds name's row in tbl (a view over davisbase_tables)
// and decodes it.
func scanTableMetaRow(tbl *table.Table, name string) (tableMetaRow, error) {
	var found tableMetaRow
	var ok bool
	err := tbl.MapOverRecords(func(pageNo, index int, cell table.LeafCell) table.ScanAction {
		row, err := decodeTableMetaRow(cell.Payload)
		if err != nil {
			return table.Stop()
		}
		if row.name == name {
			found, ok = row, true
			return table.Stop()
		}
		return table.Continue()
	})
	if err != nil {
		return tableMetaRow{}, err
	}
	if !ok {
		return tableMetaRow{}, fmt.Errorf("%w: %s", ErrSchemaCorruption, name)
	}
	return found, nil
}

// rewriteTableMetaRow overwrites name's davisbase_tables row with tbl's
// current root page, page count, and next row-id.
func (db *Database) rewriteTableMetaRow(name string, tbl *table.Table) error {
	var rewriteErr error
	err := db.tables.MapOverRecords(func(pageNo, index int, cell table.LeafCell) table.ScanAction {
		row, err := decodeTableMetaRow(cell.Payload)
		if err != nil {
			rewriteErr = err
			return table.Stop()
		}
		if row.name != name {
			return table.Continue()
		}
		row.rootPageNo = int32(tbl.RootPageNo())
		row.pageCount = int32(tbl.PageCount())
		row.nextRowID = tbl.NextRowID()
		payload, err := encodeTableMetaRow(row)
		if err != nil {
			rewriteErr = err
			return table.Stop()
		}
		rewriteErr = db.tables.UpdateCellAt(pageNo, index, cell.RowID, payload)
		return table.Stop()
	})
	if err != nil {
		return err
	}
	return rewriteErr
}

// syncTableMeta is rewriteTableMetaRow gated by the bootstrapping flag:
// while the two schema tables are still being seeded, their own
// davisbase_tables rows are patched directly by bootstrapSchema, not
// through this path.
func (db *Database) syncTableMeta(name string, tbl *table.Table) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.bootstrapping {
		return nil
	}
	return db.rewriteTableMetaRow(name, tbl)
}

// columnsFor scans davisbase_columns for tableName's column definitions
// in ordinal order.
func (db *Database) columnsFor(tableName string) ([]column.ColumnDefinition, error) {
	type ordered struct {
		ordinal int
		def     column.ColumnDefinition
	}
	var rows []ordered
	err := db.columns.MapOverRecords(func(pageNo, index int, cell table.LeafCell) table.ScanAction {
		row, err := decodeColumnMetaRow(cell.Payload)
		if err != nil {
			return table.Stop()
		}
		if row.tableName == tableName {
			rows = append(rows, ordered{ordinal: row.ordinal, def: row.def})
		}
		return table.Continue()
	})
	if err != nil {
		return nil, err
	}
	defs := make([]column.ColumnDefinition, len(rows))
	for _, r := range rows {
		defs[r.ordinal-1] = r.def
	}
	return defs, nil
}

// CreateTable creates a brand-new table file, records its schema rows,
// and returns an opened handle to it.
func (db *Database) CreateTable(name string, columns []column.ColumnDefinition) (*TableHandle, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	path := db.tablePath(name)
	if fileExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrTableExists, name)
	}
	if _, err := scanTableMetaRow(db.tables, name); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrTableExists, name)
	}

	for i := range columns {
		columns[i].NormalizePrimaryKey()
		if err := columns[i].Validate(); err != nil {
			return nil, err
		}
	}

	pager, err := storage.OpenPager(path, db.defaultPageLength)
	if err != nil {
		return nil, err
	}
	tbl, err := table.CreateTable(pager, db.defaultPageLength)
	if err != nil {
		return nil, err
	}

	payload, err := encodeTableMetaRow(tableMetaRow{
		name:       name,
		rootPageNo: int32(tbl.RootPageNo()),
		pageCount:  int32(tbl.PageCount()),
		nextRowID:  tbl.NextRowID(),
		pageLength: int16(db.defaultPageLength),
	})
	if err != nil {
		return nil, err
	}
	if _, err := db.tables.AppendRecord(payload); err != nil {
		return nil, err
	}
	if err := db.rewriteTableMetaRow(tablesSchemaName, db.tables); err != nil {
		return nil, err
	}
	if err := db.appendColumnRows(name, columns); err != nil {
		return nil, err
	}
	if err := db.rewriteTableMetaRow(columnsSchemaName, db.columns); err != nil {
		return nil, err
	}

	db.log.Debug("catalog.CreateTable", "table", name, "columns", len(columns))
	return &TableHandle{Name: name, Table: tbl, Columns: columns, db: db}, nil
}

// GetTable opens an existing table by name.
func (db *Database) GetTable(name string) (*TableHandle, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	meta, err := scanTableMetaRow(db.tables, name)
	if err != nil {
		if errors.Is(err, ErrSchemaCorruption) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
		}
		return nil, err
	}

	path := db.tablePath(name)
	pager, err := storage.OpenPager(path, int(meta.pageLength))
	if err != nil {
		return nil, err
	}
	tbl := table.OpenTable(pager, int(meta.pageLength), int(meta.rootPageNo), meta.nextRowID)

	columns, err := db.columnsFor(name)
	if err != nil {
		return nil, err
	}
	return &TableHandle{Name: name, Table: tbl, Columns: columns, db: db}, nil
}

// ListTables returns every table's name, in davisbase_tables row order.
// The two schema tables have rows of their own there and are listed
// too — SHOW TABLES of spec.md §6.3 iterates davisbase_tables and
// prints every row's name column, itself included.
func (db *Database) ListTables() ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var names []string
	err := db.tables.MapOverRecords(func(pageNo, index int, cell table.LeafCell) table.ScanAction {
		row, err := decodeTableMetaRow(cell.Payload)
		if err != nil {
			return table.Stop()
		}
		names = append(names, row.name)
		return table.Continue()
	})
	return names, err
}

// RemoveTable deletes table name's rows from both schema tables and
// removes its backing file. Deleting from davisbase_columns uses the
// delete-while-scanning Goto(i-1) protocol since a table commonly owns
// more than one column row.
func (db *Database) RemoveTable(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	path := db.tablePath(name)
	if !fileExists(path) {
		return fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	var deleteErr error
	err := db.tables.MapOverRecords(func(pageNo, index int, cell table.LeafCell) table.ScanAction {
		row, err := decodeTableMetaRow(cell.Payload)
		if err != nil {
			deleteErr = err
			return table.Stop()
		}
		if row.name != name {
			return table.Continue()
		}
		if err := db.tables.DeleteCellAt(pageNo, index); err != nil {
			deleteErr = err
			return table.Stop()
		}
		return table.Stop()
	})
	if err != nil {
		return err
	}
	if deleteErr != nil {
		return deleteErr
	}
	if err := db.rewriteTableMetaRow(tablesSchemaName, db.tables); err != nil {
		return err
	}

	err = db.columns.MapOverRecords(func(pageNo, index int, cell table.LeafCell) table.ScanAction {
		row, err := decodeColumnMetaRow(cell.Payload)
		if err != nil {
			deleteErr = err
			return table.Stop()
		}
		if row.tableName != name {
			return table.Continue()
		}
		if err := db.columns.DeleteCellAt(pageNo, index); err != nil {
			deleteErr = err
			return table.Stop()
		}
		return table.Goto(index - 1)
	})
	if err != nil {
		return err
	}
	if deleteErr != nil {
		return deleteErr
	}
	if err := db.rewriteTableMetaRow(columnsSchemaName, db.columns); err != nil {
		return err
	}

	db.log.Debug("catalog.RemoveTable", "table", name)
	return os.Remove(path)
}

// MakeColumnUnique flips the is_unique flag on table.column's
// davisbase_columns row, the only effect CREATE INDEX has per
// spec.md §4.5.6 — no physical index is ever built.
func (db *Database) MakeColumnUnique(tableName, columnName string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var found bool
	var rewriteErr error
	err := db.columns.MapOverRecords(func(pageNo, index int, cell table.LeafCell) table.ScanAction {
		row, err := decodeColumnMetaRow(cell.Payload)
		if err != nil {
			rewriteErr = err
			return table.Stop()
		}
		if row.tableName != tableName || row.def.Name != columnName {
			return table.Continue()
		}
		found = true
		row.def.Modifiers.Unique = true
		payload, err := encodeColumnMetaRow(row)
		if err != nil {
			rewriteErr = err
			return table.Stop()
		}
		rewriteErr = db.columns.UpdateCellAt(pageNo, index, cell.RowID, payload)
		return table.Stop()
	})
	if err != nil {
		return err
	}
	if rewriteErr != nil {
		return rewriteErr
	}
	if !found {
		return fmt.Errorf("%w: %s.%s", ErrColumnNotFound, tableName, columnName)
	}
	return nil
}

// Close closes the underlying schema table files. User table files are
// opened per TableHandle by CreateTable/GetTable and are not closed
// here; neither TableHandle nor table.Table has a Close method.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	err1 := db.tablesPager.Close()
	err2 := db.columnsPager.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
