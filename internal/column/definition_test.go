package column_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dvdb/davisbase/internal/column"
)

func TestNormalizePrimaryKey(t *testing.T) {
	c := column.ColumnDefinition{
		Name:      "id",
		Type:      column.Int,
		Modifiers: column.Modifiers{PrimaryKey: true, IsNullable: true},
	}
	c.NormalizePrimaryKey()
	assert.True(t, c.Modifiers.Unique)
	assert.False(t, c.Modifiers.IsNullable)
	assert.True(t, c.Modifiers.NotNull())
}

func TestValidateRejectsNullablePrimaryKey(t *testing.T) {
	c := column.ColumnDefinition{
		Name:      "id",
		Type:      column.Int,
		Modifiers: column.Modifiers{PrimaryKey: true, IsNullable: true, Unique: true},
	}
	assert.Error(t, c.Validate())
}

func TestValidateAcceptsPlainColumn(t *testing.T) {
	c := column.ColumnDefinition{
		Name:      "name",
		Type:      column.Text,
		Modifiers: column.Modifiers{IsNullable: true},
	}
	assert.NoError(t, c.Validate())
}

func TestNotNullIsNegationOfIsNullable(t *testing.T) {
	c := column.Modifiers{IsNullable: false}
	assert.True(t, c.NotNull())
	c.IsNullable = true
	assert.False(t, c.NotNull())
}
