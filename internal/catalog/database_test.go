package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvdb/davisbase/internal/catalog"
	"github.com/dvdb/davisbase/internal/column"
)

func openTestDB(t *testing.T) *catalog.Database {
	t.Helper()
	db, err := catalog.Open(t.TempDir(), 512)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func idCol() column.ColumnDefinition {
	return column.ColumnDefinition{
		Name:      "id",
		Type:      column.Int,
		Modifiers: column.Modifiers{PrimaryKey: true, Unique: true},
	}
}

func nameCol() column.ColumnDefinition {
	return column.ColumnDefinition{
		Name:      "name",
		Type:      column.Text,
		Modifiers: column.Modifiers{IsNullable: true},
	}
}

func TestOpenBootstrapsSchemaOnFreshDirectory(t *testing.T) {
	db := openTestDB(t)
	names, err := db.ListTables()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"davisbase_tables", "davisbase_columns"}, names)
}

func TestCreateTableThenGetTableRoundTrips(t *testing.T) {
	db := openTestDB(t)
	columns := []column.ColumnDefinition{idCol(), nameCol()}

	handle, err := db.CreateTable("people", columns)
	require.NoError(t, err)
	require.NotNil(t, handle.Table)

	got, err := db.GetTable("people")
	require.NoError(t, err)
	require.Len(t, got.Columns, 2)
	assert.Equal(t, "id", got.Columns[0].Name)
	assert.True(t, got.Columns[0].Modifiers.PrimaryKey)
	assert.True(t, got.Columns[0].Modifiers.NotNull())
	assert.Equal(t, "name", got.Columns[1].Name)
	assert.True(t, got.Columns[1].Modifiers.IsNullable)
}

func TestCreateTableRejectsDuplicateName(t *testing.T) {
	db := openTestDB(t)
	_, err := db.CreateTable("people", []column.ColumnDefinition{idCol()})
	require.NoError(t, err)

	_, err = db.CreateTable("people", []column.ColumnDefinition{idCol()})
	assert.ErrorIs(t, err, catalog.ErrTableExists)
}

func TestGetTableUnknownFails(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetTable("ghost")
	assert.ErrorIs(t, err, catalog.ErrTableNotFound)
}

func TestListTablesIncludesSchemaTables(t *testing.T) {
	db := openTestDB(t)
	_, err := db.CreateTable("people", []column.ColumnDefinition{idCol()})
	require.NoError(t, err)
	_, err = db.CreateTable("orders", []column.ColumnDefinition{idCol()})
	require.NoError(t, err)

	names, err := db.ListTables()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"davisbase_tables", "davisbase_columns", "people", "orders"}, names)
}

func TestSyncPersistsRowCountAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := catalog.Open(dir, 512)
	require.NoError(t, err)

	handle, err := db.CreateTable("people", []column.ColumnDefinition{idCol(), nameCol()})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		payload, err := column.EncodeRow([]column.Value{
			{Type: column.Int, I64: int64(i)},
			{Type: column.Text, Text: "row"},
		})
		require.NoError(t, err)
		_, err = handle.Table.AppendRecord(payload)
		require.NoError(t, err)
	}
	require.NoError(t, handle.Sync())
	require.NoError(t, db.Close())

	reopened, err := catalog.Open(dir, 512)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	got, err := reopened.GetTable("people")
	require.NoError(t, err)
	assert.Equal(t, int32(3)+1, got.Table.NextRowID())
}

func TestSyncPersistsAcrossReopenThenCreateSecondTable(t *testing.T) {
	dir := t.TempDir()
	db, err := catalog.Open(dir, 512)
	require.NoError(t, err)

	_, err = db.CreateTable("people", []column.ColumnDefinition{idCol(), nameCol()})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := catalog.Open(dir, 512)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	_, err = reopened.CreateTable("orders", []column.ColumnDefinition{idCol(), nameCol()})
	require.NoError(t, err)

	names, err := reopened.ListTables()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"davisbase_tables", "davisbase_columns", "people", "orders"}, names)

	handle, err := reopened.GetTable("orders")
	require.NoError(t, err)
	rowID, err := handle.Table.AppendRecord(mustEncodeRow(t, 1, "first"))
	require.NoError(t, err)
	assert.Equal(t, int32(1), rowID)
}

func mustEncodeRow(t *testing.T, id int64, name string) []byte {
	t.Helper()
	payload, err := column.EncodeRow([]column.Value{
		{Type: column.Int, I64: id},
		{Type: column.Text, Text: name},
	})
	require.NoError(t, err)
	return payload
}

func TestRemoveTableDeletesSchemaRowsAndFile(t *testing.T) {
	db := openTestDB(t)
	_, err := db.CreateTable("people", []column.ColumnDefinition{idCol(), nameCol()})
	require.NoError(t, err)

	require.NoError(t, db.RemoveTable("people"))

	_, err = db.GetTable("people")
	assert.ErrorIs(t, err, catalog.ErrTableNotFound)

	names, err := db.ListTables()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"davisbase_tables", "davisbase_columns"}, names)
}

func TestRemoveTableUnknownFails(t *testing.T) {
	db := openTestDB(t)
	err := db.RemoveTable("ghost")
	assert.ErrorIs(t, err, catalog.ErrTableNotFound)
}

func TestMakeColumnUniqueSetsFlag(t *testing.T) {
	db := openTestDB(t)
	_, err := db.CreateTable("people", []column.ColumnDefinition{idCol(), nameCol()})
	require.NoError(t, err)

	require.NoError(t, db.MakeColumnUnique("people", "name"))

	got, err := db.GetTable("people")
	require.NoError(t, err)
	assert.True(t, got.Columns[1].Modifiers.Unique)
}

func TestMakeColumnUniqueUnknownColumnFails(t *testing.T) {
	db := openTestDB(t)
	_, err := db.CreateTable("people", []column.ColumnDefinition{idCol()})
	require.NoError(t, err)

	err = db.MakeColumnUnique("people", "ghost")
	assert.ErrorIs(t, err, catalog.ErrColumnNotFound)
}
