package column_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dvdb/davisbase/internal/column"
)

func TestCompareNullSemantics(t *testing.T) {
	null := column.NullValue()
	three := column.Value{Type: column.Int, I64: 3}

	eq, err := column.Compare(null, column.OpEqual, null)
	assert.NoError(t, err)
	assert.True(t, eq, "NULL = NULL is true")

	eq, err = column.Compare(null, column.OpEqual, three)
	assert.NoError(t, err)
	assert.False(t, eq, "NULL = 3 is false")

	for _, op := range []column.Op{column.OpLess, column.OpLessEq, column.OpGreater, column.OpGreaterEq} {
		r, err := column.Compare(null, op, null)
		assert.NoError(t, err)
		assert.False(t, r, "NULL op NULL is always false for ordering ops")

		r, err = column.Compare(three, op, null)
		assert.NoError(t, err)
		assert.False(t, r)
	}
}

func TestCompareOrdering(t *testing.T) {
	a := column.Value{Type: column.Int, I64: 1}
	b := column.Value{Type: column.Int, I64: 2}

	lt, err := column.Compare(a, column.OpLess, b)
	assert.NoError(t, err)
	assert.True(t, lt)

	gt, err := column.Compare(b, column.OpGreater, a)
	assert.NoError(t, err)
	assert.True(t, gt)

	eq, err := column.Compare(a, column.OpEqual, a)
	assert.NoError(t, err)
	assert.True(t, eq)
}

func TestCompareTypeMismatch(t *testing.T) {
	a := column.Value{Type: column.Int, I64: 1}
	b := column.Value{Type: column.Text, Text: "1"}
	_, err := column.Compare(a, column.OpEqual, b)
	assert.ErrorIs(t, err, column.ErrIncomparable)
}

func TestCompareText(t *testing.T) {
	a := column.Value{Type: column.Text, Text: "apple"}
	b := column.Value{Type: column.Text, Text: "banana"}
	lt, err := column.Compare(a, column.OpLess, b)
	assert.NoError(t, err)
	assert.True(t, lt)
}

func TestEqualSwallowsTypeMismatch(t *testing.T) {
	a := column.Value{Type: column.Int, I64: 1}
	b := column.Value{Type: column.Text, Text: "1"}
	assert.False(t, column.Equal(a, b))
}
