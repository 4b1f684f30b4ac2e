package column_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvdb/davisbase/internal/column"
)

func TestEncodeDecodeRowRoundTrip(t *testing.T) {
	values := []column.Value{
		{Type: column.TinyInt, I64: -12},
		{Type: column.SmallInt, I64: 1000},
		{Type: column.Int, I64: -70000},
		{Type: column.BigInt, I64: 1 << 40},
		{Type: column.Float, F64: 3.5},
		{Type: column.Year, I64: 26},
		{Type: column.Time, I64: 3600},
		{Type: column.DateTime, U64: 1234567890},
		{Type: column.Date, U64: 20260806},
		{Type: column.Text, Text: "hello"},
		column.NullValue(),
	}

	buf, err := column.EncodeRow(values)
	require.NoError(t, err)
	assert.Equal(t, len(values)+1+0, int(buf[0])+1+0) // num_cols byte matches
	assert.Equal(t, len(values), int(buf[0]))

	decoded, err := column.DecodeRow(buf)
	require.NoError(t, err)
	require.Len(t, decoded, len(values))
	for i, v := range values {
		assert.Equal(t, v, decoded[i], "column %d", i)
	}
}

func TestEncodeRowTextTooLong(t *testing.T) {
	long := make([]byte, column.MaxTextLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := column.EncodeRow([]column.Value{{Type: column.Text, Text: string(long)}})
	assert.ErrorIs(t, err, column.ErrTextTooLong)
}

func TestEncodedSizeMatchesEncodeRow(t *testing.T) {
	values := []column.Value{
		{Type: column.Int, I64: 7},
		{Type: column.Text, Text: "abc"},
		column.NullValue(),
	}
	buf, err := column.EncodeRow(values)
	require.NoError(t, err)
	assert.Equal(t, column.EncodedSize(values), len(buf))
}

func TestDecodeRowUnknownSerialCode(t *testing.T) {
	buf := []byte{1, 0x09} // reserved code, no data bytes
	_, err := column.DecodeRow(buf)
	assert.ErrorIs(t, err, column.ErrUnknownSerialCode)
}

func TestDecodeRowTruncatedPayload(t *testing.T) {
	buf := []byte{1, byte(column.BigInt), 0, 0, 0} // BIGINT needs 8 data bytes, only 3 given
	_, err := column.DecodeRow(buf)
	assert.ErrorIs(t, err, column.ErrUnknownSerialCode)
}
