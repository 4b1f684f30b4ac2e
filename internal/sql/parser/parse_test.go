package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvdb/davisbase/internal/column"
)

func TestParse_RequiresSemicolon(t *testing.T) {
	_, err := Parse("SELECT * FROM users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "';'")
}

func TestParse_EmptyStatement(t *testing.T) {
	_, err := Parse(";")
	require.Error(t, err)
	_, err = Parse("   ")
	require.Error(t, err)
}

func TestParse_ShowTables(t *testing.T) {
	stmt, err := Parse("SHOW TABLES;")
	require.NoError(t, err)
	_, ok := stmt.(*ShowTablesStmt)
	assert.True(t, ok, "want *ShowTablesStmt, got %T", stmt)

	stmt, err = Parse("show tables;")
	require.NoError(t, err)
	_, ok = stmt.(*ShowTablesStmt)
	assert.True(t, ok)
}

func TestParse_Exit(t *testing.T) {
	stmt, err := Parse("EXIT;")
	require.NoError(t, err)
	_, ok := stmt.(*ExitStmt)
	assert.True(t, ok, "want *ExitStmt, got %T", stmt)
}

func TestParse_CreateTable_Basic(t *testing.T) {
	stmt, err := Parse("CREATE TABLE people (id INT, name TEXT);")
	require.NoError(t, err)

	s, ok := stmt.(*CreateTableStmt)
	require.True(t, ok, "want *CreateTableStmt, got %T", stmt)
	assert.Equal(t, "people", s.TableName)
	require.Len(t, s.Columns, 2)

	assert.Equal(t, "id", s.Columns[0].Name)
	assert.Equal(t, column.Int, s.Columns[0].Type)
	assert.True(t, s.Columns[0].Modifiers.IsNullable, "default modifier set is nullable")

	assert.Equal(t, "name", s.Columns[1].Name)
	assert.Equal(t, column.Text, s.Columns[1].Type)
}

func TestParse_CreateTable_NotNull(t *testing.T) {
	stmt, err := Parse("CREATE TABLE t (id INT NOT NULL);")
	require.NoError(t, err)
	s := stmt.(*CreateTableStmt)
	assert.False(t, s.Columns[0].Modifiers.IsNullable)
	assert.True(t, s.Columns[0].Modifiers.NotNull())
}

func TestParse_CreateTable_ExplicitNull(t *testing.T) {
	stmt, err := Parse("CREATE TABLE t (id INT NULL);")
	require.NoError(t, err)
	s := stmt.(*CreateTableStmt)
	assert.True(t, s.Columns[0].Modifiers.IsNullable)
}

func TestParse_CreateTable_PrimaryKey(t *testing.T) {
	stmt, err := Parse("CREATE TABLE t (id INT PRIMARY KEY);")
	require.NoError(t, err)
	s := stmt.(*CreateTableStmt)
	mods := s.Columns[0].Modifiers
	assert.True(t, mods.PrimaryKey)
	assert.True(t, mods.Unique)
	assert.False(t, mods.IsNullable)
}

func TestParse_CreateTable_Autoincrement(t *testing.T) {
	stmt, err := Parse("CREATE TABLE t (id INT AUTOINCREMENT);")
	require.NoError(t, err)
	s := stmt.(*CreateTableStmt)
	assert.True(t, s.Columns[0].Modifiers.AutoIncrement)
}

func TestParse_CreateTable_Unique(t *testing.T) {
	stmt, err := Parse("CREATE TABLE t (email TEXT UNIQUE);")
	require.NoError(t, err)
	s := stmt.(*CreateTableStmt)
	assert.True(t, s.Columns[0].Modifiers.Unique)
}

func TestParse_CreateTable_Default(t *testing.T) {
	stmt, err := Parse("CREATE TABLE t (age INT DEFAULT 18);")
	require.NoError(t, err)
	s := stmt.(*CreateTableStmt)
	mods := s.Columns[0].Modifiers
	require.True(t, mods.HasDefault)
	assert.Equal(t, int64(18), mods.Default)
}

func TestParse_CreateTable_DefaultStringLiteral(t *testing.T) {
	stmt, err := Parse("CREATE TABLE t (label TEXT DEFAULT 'a,b');")
	require.NoError(t, err)
	s := stmt.(*CreateTableStmt)
	assert.Equal(t, "a,b", s.Columns[0].Modifiers.Default)
}

func TestParse_CreateTable_CombinedModifiers(t *testing.T) {
	stmt, err := Parse("CREATE TABLE t (id INT NOT NULL UNIQUE, name TEXT DEFAULT 'x' NULL);")
	require.NoError(t, err)
	s := stmt.(*CreateTableStmt)
	require.Len(t, s.Columns, 2)

	id := s.Columns[0].Modifiers
	assert.False(t, id.IsNullable)
	assert.True(t, id.Unique)

	name := s.Columns[1].Modifiers
	assert.True(t, name.HasDefault)
	assert.Equal(t, "x", name.Default)
	assert.True(t, name.IsNullable)
}

func TestParse_CreateTable_PrimaryKeyNormalizesNull(t *testing.T) {
	stmt, err := Parse("CREATE TABLE t (id INT NULL PRIMARY KEY);")
	require.NoError(t, err)
	s := stmt.(*CreateTableStmt)
	assert.False(t, s.Columns[0].Modifiers.IsNullable)
}

func TestParse_CreateTable_UnknownType(t *testing.T) {
	_, err := Parse("CREATE TABLE t (id BOOL);")
	require.Error(t, err)
}

func TestParse_CreateTable_UnknownModifier(t *testing.T) {
	_, err := Parse("CREATE TABLE t (id INT FANCY);")
	require.Error(t, err)
}

func TestParse_CreateTable_InvalidColumnName(t *testing.T) {
	_, err := Parse("CREATE TABLE t (1id INT);")
	require.Error(t, err)
}

func TestParse_CreateTable_EmptyColumnList(t *testing.T) {
	_, err := Parse("CREATE TABLE t ();")
	require.Error(t, err)
}

func TestParse_CreateTable_MissingParens(t *testing.T) {
	_, err := Parse("CREATE TABLE t id INT;")
	require.Error(t, err)
}

func TestParse_DropTable(t *testing.T) {
	stmt, err := Parse("DROP TABLE people;")
	require.NoError(t, err)
	s, ok := stmt.(*DropTableStmt)
	require.True(t, ok, "want *DropTableStmt, got %T", stmt)
	assert.Equal(t, "people", s.TableName)
}

func TestParse_DropTable_InvalidName(t *testing.T) {
	_, err := Parse("DROP TABLE 1people;")
	require.Error(t, err)
}

func TestParse_Insert_WithColumnList(t *testing.T) {
	stmt, err := Parse("INSERT INTO people (id, name) VALUES (1, 'bob');")
	require.NoError(t, err)

	s, ok := stmt.(*InsertStmt)
	require.True(t, ok, "want *InsertStmt, got %T", stmt)
	assert.Equal(t, "people", s.TableName)
	assert.Equal(t, []string{"id", "name"}, s.Columns)
	require.Len(t, s.Values, 2)
	assert.Equal(t, int64(1), s.Values[0].Value)
	assert.Equal(t, "bob", s.Values[1].Value)
}

func TestParse_Insert_WithoutColumnList(t *testing.T) {
	stmt, err := Parse("INSERT INTO people VALUES (1, 'bob', NULL);")
	require.NoError(t, err)

	s, ok := stmt.(*InsertStmt)
	require.True(t, ok, "want *InsertStmt, got %T", stmt)
	assert.Nil(t, s.Columns)
	require.Len(t, s.Values, 3)
	assert.Nil(t, s.Values[2].Value)
}

func TestParse_Insert_ColumnValueCountMismatch(t *testing.T) {
	_, err := Parse("INSERT INTO people (id, name) VALUES (1);")
	require.Error(t, err)
}

func TestParse_Insert_MissingValues(t *testing.T) {
	_, err := Parse("INSERT INTO people (id);")
	require.Error(t, err)
}

func TestParse_Insert_SplitCommaInsideQuotes(t *testing.T) {
	stmt, err := Parse("INSERT INTO t VALUES ('a,b', 2);")
	require.NoError(t, err)
	s := stmt.(*InsertStmt)
	require.Len(t, s.Values, 2)
	assert.Equal(t, "a,b", s.Values[0].Value)
	assert.Equal(t, int64(2), s.Values[1].Value)
}

func TestParse_Insert_EscapedQuoteInLiteral(t *testing.T) {
	stmt, err := Parse(`INSERT INTO t VALUES ('it\'s fine');`)
	require.NoError(t, err)
	s := stmt.(*InsertStmt)
	assert.Equal(t, "it's fine", s.Values[0].Value)
}

func TestParse_Insert_EscapedBackslash(t *testing.T) {
	stmt, err := Parse(`INSERT INTO t VALUES ('a\\b');`)
	require.NoError(t, err)
	s := stmt.(*InsertStmt)
	assert.Equal(t, `a\b`, s.Values[0].Value)
}

func TestParse_Insert_UnterminatedString(t *testing.T) {
	_, err := Parse("INSERT INTO t VALUES ('abc);")
	require.Error(t, err)
}

func TestParse_Select_Star_NoWhere(t *testing.T) {
	stmt, err := Parse("SELECT * FROM people;")
	require.NoError(t, err)
	s, ok := stmt.(*SelectStmt)
	require.True(t, ok, "want *SelectStmt, got %T", stmt)
	assert.Equal(t, "people", s.TableName)
	assert.Nil(t, s.Columns)
	assert.Nil(t, s.Where)
}

func TestParse_Select_ColumnList(t *testing.T) {
	stmt, err := Parse("SELECT id, name FROM people;")
	require.NoError(t, err)
	s := stmt.(*SelectStmt)
	assert.Equal(t, []string{"id", "name"}, s.Columns)
}

func TestParse_Select_WithWhere(t *testing.T) {
	stmt, err := Parse("SELECT * FROM people WHERE id = 10;")
	require.NoError(t, err)
	s := stmt.(*SelectStmt)
	require.NotNil(t, s.Where)
	assert.Equal(t, "id", s.Where.Column)
	assert.Equal(t, column.OpEqual, s.Where.Op)
	assert.Equal(t, int64(10), s.Where.Value.Value)
}

func TestParse_Select_WhereOperators(t *testing.T) {
	cases := []struct {
		clause string
		op     column.Op
	}{
		{"id <= 10", column.OpLessEq},
		{"id >= 10", column.OpGreaterEq},
		{"id < 10", column.OpLess},
		{"id > 10", column.OpGreater},
		{"id = 10", column.OpEqual},
	}
	for _, tc := range cases {
		stmt, err := Parse("SELECT * FROM t WHERE " + tc.clause + ";")
		require.NoError(t, err, tc.clause)
		s := stmt.(*SelectStmt)
		require.NotNil(t, s.Where, tc.clause)
		assert.Equal(t, tc.op, s.Where.Op, tc.clause)
	}
}

func TestParse_Select_WhereStringLiteral(t *testing.T) {
	stmt, err := Parse(`SELECT * FROM t WHERE name = 'bob';`)
	require.NoError(t, err)
	s := stmt.(*SelectStmt)
	assert.Equal(t, "bob", s.Where.Value.Value)
}

func TestParse_Select_MissingFrom(t *testing.T) {
	_, err := Parse("SELECT * people;")
	require.Error(t, err)
}

func TestParse_Select_InvalidColumnList(t *testing.T) {
	_, err := Parse("SELECT 1id FROM t;")
	require.Error(t, err)
}

func TestParse_Delete_WithWhere(t *testing.T) {
	stmt, err := Parse("DELETE FROM people WHERE id = 1;")
	require.NoError(t, err)
	s, ok := stmt.(*DeleteStmt)
	require.True(t, ok, "want *DeleteStmt, got %T", stmt)
	assert.Equal(t, "people", s.TableName)
	require.NotNil(t, s.Where)
	assert.Equal(t, "id", s.Where.Column)
}

func TestParse_Delete_NoWhere(t *testing.T) {
	stmt, err := Parse("DELETE FROM people;")
	require.NoError(t, err)
	s := stmt.(*DeleteStmt)
	assert.Nil(t, s.Where)
}

func TestParse_Update_Basic(t *testing.T) {
	stmt, err := Parse("UPDATE people SET name = 'bob' WHERE id = 1;")
	require.NoError(t, err)
	s, ok := stmt.(*UpdateStmt)
	require.True(t, ok, "want *UpdateStmt, got %T", stmt)
	assert.Equal(t, "people", s.TableName)
	assert.Equal(t, "name", s.Assignment.Column)
	assert.Equal(t, "bob", s.Assignment.Value.Value)
	require.NotNil(t, s.Where)
	assert.Equal(t, "id", s.Where.Column)
}

func TestParse_Update_NoWhere(t *testing.T) {
	stmt, err := Parse("UPDATE people SET name = 'bob';")
	require.NoError(t, err)
	s := stmt.(*UpdateStmt)
	assert.Nil(t, s.Where)
}

func TestParse_Update_MissingSet(t *testing.T) {
	_, err := Parse("UPDATE people WHERE id = 1;")
	require.Error(t, err)
}

func TestParse_Update_InvalidAssignmentColumn(t *testing.T) {
	_, err := Parse("UPDATE people SET 1name = 'x';")
	require.Error(t, err)
}

func TestParse_CreateIndex_Plain(t *testing.T) {
	stmt, err := Parse("CREATE INDEX ON people (email);")
	require.NoError(t, err)
	s, ok := stmt.(*CreateIndexStmt)
	require.True(t, ok, "want *CreateIndexStmt, got %T", stmt)
	assert.Equal(t, "people", s.TableName)
	assert.Equal(t, "email", s.ColumnName)
	assert.False(t, s.Unique)
}

func TestParse_CreateIndex_Unique(t *testing.T) {
	stmt, err := Parse("CREATE UNIQUE INDEX ON people (email);")
	require.NoError(t, err)
	s := stmt.(*CreateIndexStmt)
	assert.True(t, s.Unique)
}

func TestParse_CreateIndex_MissingOn(t *testing.T) {
	_, err := Parse("CREATE INDEX people (email);")
	require.Error(t, err)
}

func TestParse_Unsupported(t *testing.T) {
	_, err := Parse("ALTER TABLE t ADD COLUMN x INT;")
	require.Error(t, err)
}

func TestParseLiteralToken(t *testing.T) {
	cases := []struct {
		in   string
		want any
		ok   bool
	}{
		{"NULL", nil, true},
		{"null", nil, true},
		{"'abc'", "abc", true},
		{"123", int64(123), true},
		{"-7", int64(-7), true},
		{"3.14", float64(3.14), true},
		{"'a,b'", "a,b", true},
		{"abc", nil, false},
		{"'unterminated", nil, false},
	}
	for _, tc := range cases {
		got, err := parseLiteralToken(tc.in)
		if tc.ok {
			require.NoError(t, err, "parseLiteralToken(%q)", tc.in)
			assert.Equal(t, tc.want, got, "parseLiteralToken(%q)", tc.in)
		} else {
			require.Error(t, err, "parseLiteralToken(%q)", tc.in)
		}
	}
}

func TestSplitComma(t *testing.T) {
	got := splitComma("1,'a,b',NULL,'x'")
	assert.Equal(t, []string{"1", "'a,b'", "NULL", "'x'"}, got)
}

func TestSplitComma_NestedParens(t *testing.T) {
	got := splitComma("a(1,2),b")
	assert.Equal(t, []string{"a(1,2)", "b"}, got)
}

func TestSplitKeyword(t *testing.T) {
	left, right := splitKeyword("people WHERE id=1", "WHERE")
	assert.Equal(t, "people", left)
	assert.Equal(t, "id=1", right)

	left, right = splitKeyword("people", "WHERE")
	assert.Equal(t, "people", left)
	assert.Empty(t, right)
}

func TestFindOutsideQuotes_SkipsQuotedMatches(t *testing.T) {
	idx := findOutsideQuotes("name = 'FROM'", "FROM")
	assert.Equal(t, -1, idx)

	idx = findOutsideQuotes("a FROM b", "FROM")
	assert.Equal(t, 2, idx)
}

func TestTokenize_KeepsQuotedSubstringTogether(t *testing.T) {
	got := tokenize(`name TEXT DEFAULT 'a b'`)
	assert.Equal(t, []string{"name", "TEXT", "DEFAULT", "'a b'"}, got)
}
