package catalog

import "github.com/dvdb/davisbase/internal/column"

const (
	tablesSchemaName  = "davisbase_tables"
	columnsSchemaName = "davisbase_columns"
	tableFileExt      = ".tbl"
)

// tablesSchemaColumns is davisbase_tables' own column layout: one row
// per table in the database, carrying the metadata a Table needs to
// reopen its file (spec.md §4.5.2).
func tablesSchemaColumns() []column.ColumnDefinition {
	return []column.ColumnDefinition{
		{Name: "table_name", Type: column.Text},
		{Name: "root_page_no", Type: column.Int},
		{Name: "page_count", Type: column.Int},
		{Name: "next_row_id", Type: column.Int},
		{Name: "page_length", Type: column.SmallInt},
	}
}

// columnsSchemaColumns is davisbase_columns' own column layout: one row
// per (table, column) pair, carrying the column definitions every
// CREATE TABLE persists (spec.md §4.5.3).
func columnsSchemaColumns() []column.ColumnDefinition {
	return []column.ColumnDefinition{
		{Name: "table_name", Type: column.Text},
		{Name: "column_name", Type: column.Text},
		{Name: "data_type", Type: column.TinyInt},
		{Name: "ordinal_position", Type: column.TinyInt},
		{Name: "is_nullable", Type: column.TinyInt},
		{Name: "is_primary", Type: column.TinyInt},
		{Name: "is_unique", Type: column.TinyInt},
	}
}

func boolToTinyInt(b bool) column.Value {
	v := int64(0)
	if b {
		v = 1
	}
	return column.Value{Type: column.TinyInt, I64: v}
}

func tinyIntToBool(v column.Value) bool { return v.I64 != 0 }

// tableMetaRow is the decoded form of one davisbase_tables row.
type tableMetaRow struct {
	name       string
	rootPageNo int32
	pageCount  int32
	nextRowID  int32
	pageLength int16
}

func encodeTableMetaRow(r tableMetaRow) ([]byte, error) {
	values := []column.Value{
		{Type: column.Text, Text: r.name},
		{Type: column.Int, I64: int64(r.rootPageNo)},
		{Type: column.Int, I64: int64(r.pageCount)},
		{Type: column.Int, I64: int64(r.nextRowID)},
		{Type: column.SmallInt, I64: int64(r.pageLength)},
	}
	return column.EncodeRow(values)
}

func decodeTableMetaRow(payload []byte) (tableMetaRow, error) {
	values, err := column.DecodeRow(payload)
	if err != nil {
		return tableMetaRow{}, err
	}
	return tableMetaRow{
		name:       values[0].Text,
		rootPageNo: int32(values[1].I64),
		pageCount:  int32(values[2].I64),
		nextRowID:  int32(values[3].I64),
		pageLength: int16(values[4].I64),
	}, nil
}

// columnMetaRow is the decoded form of one davisbase_columns row.
type columnMetaRow struct {
	tableName string
	def       column.ColumnDefinition
	ordinal   int
}

func encodeColumnMetaRow(r columnMetaRow) ([]byte, error) {
	values := []column.Value{
		{Type: column.Text, Text: r.tableName},
		{Type: column.Text, Text: r.def.Name},
		{Type: column.TinyInt, I64: int64(r.def.Type)},
		{Type: column.TinyInt, I64: int64(r.ordinal)},
		boolToTinyInt(r.def.Modifiers.IsNullable),
		boolToTinyInt(r.def.Modifiers.PrimaryKey),
		boolToTinyInt(r.def.Modifiers.Unique),
	}
	return column.EncodeRow(values)
}

func decodeColumnMetaRow(payload []byte) (columnMetaRow, error) {
	values, err := column.DecodeRow(payload)
	if err != nil {
		return columnMetaRow{}, err
	}
	def := column.ColumnDefinition{
		Name: values[1].Text,
		Type: column.Type(values[2].I64),
		Modifiers: column.Modifiers{
			IsNullable: tinyIntToBool(values[4]),
			PrimaryKey: tinyIntToBool(values[5]),
			Unique:     tinyIntToBool(values[6]),
		},
	}
	return columnMetaRow{
		tableName: values[0].Text,
		def:       def,
		ordinal:   int(values[3].I64),
	}, nil
}
