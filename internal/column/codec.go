package column

import (
	"fmt"

	"github.com/dvdb/davisbase/internal/bx"
)

// EncodedSize returns the total payload length that EncodeRow(values)
// would produce: 1 (num_cols) + num_cols (serial type array) + sum of
// per-column fixed/variable widths. NULL contributes zero data bytes.
func EncodedSize(values []Value) int {
	size := 1 + len(values)
	for _, v := range values {
		size += valueDataWidth(v)
	}
	return size
}

func valueDataWidth(v Value) int {
	if v.Type == Null {
		return 0
	}
	if v.Type == Text {
		return len(v.Text)
	}
	return v.Type.FixedWidth()
}

// EncodeRow serializes values into the self-describing payload of
// spec.md §4.2:
//
//	u8 num_cols
//	u8 type_code[num_cols]
//	u8 data[...]
func EncodeRow(values []Value) ([]byte, error) {
	if len(values) > 0xFF {
		return nil, fmt.Errorf("column: too many columns (%d) for one-byte count", len(values))
	}
	buf := make([]byte, EncodedSize(values))
	buf[0] = byte(len(values))

	typeOff := 1
	dataOff := 1 + len(values)
	for i, v := range values {
		if v.Type == Text && len(v.Text) > MaxTextLen {
			return nil, ErrTextTooLong
		}
		textLen := 0
		if v.Type == Text {
			textLen = len(v.Text)
		}
		buf[typeOff+i] = serialCodeFor(v.Type, textLen)
		dataOff += writeValueData(buf[dataOff:], v)
	}
	return buf, nil
}

// writeValueData writes v's data bytes (not its serial code) to dst and
// returns how many bytes it wrote.
func writeValueData(dst []byte, v Value) int {
	switch v.Type {
	case Null:
		return 0
	case TinyInt:
		bx.PutI8(dst, int8(v.I64))
		return 1
	case Year:
		bx.PutI8(dst, int8(v.I64))
		return 1
	case SmallInt:
		bx.PutI16(dst, int16(v.I64))
		return 2
	case Int, Time:
		bx.PutI32(dst, int32(v.I64))
		return 4
	case BigInt:
		bx.PutI64(dst, v.I64)
		return 8
	case Float:
		bx.PutF64(dst, v.F64)
		return 8
	case DateTime, Date:
		bx.PutU64(dst, v.U64)
		return 8
	case Text:
		copy(dst, v.Text)
		return len(v.Text)
	default:
		return 0
	}
}

// DecodeRow parses a payload produced by EncodeRow back into Values.
func DecodeRow(payload []byte) ([]Value, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("%w: empty payload", ErrUnknownSerialCode)
	}
	numCols := int(payload[0])
	typeOff := 1
	dataOff := 1 + numCols
	if dataOff > len(payload) {
		return nil, fmt.Errorf("%w: type array overruns payload", ErrUnknownSerialCode)
	}

	values := make([]Value, numCols)
	for i := 0; i < numCols; i++ {
		t, textLen, err := typeFromSerialCode(payload[typeOff+i])
		if err != nil {
			return nil, err
		}
		width := textLen
		if t != Text {
			width = t.FixedWidth()
		}
		if dataOff+width > len(payload) {
			return nil, fmt.Errorf("%w: value data overruns payload", ErrUnknownSerialCode)
		}
		v, err := readValueData(t, payload[dataOff:dataOff+width])
		if err != nil {
			return nil, err
		}
		values[i] = v
		dataOff += width
	}
	return values, nil
}

func readValueData(t Type, data []byte) (Value, error) {
	switch t {
	case Null:
		return NullValue(), nil
	case TinyInt:
		return Value{Type: t, I64: int64(bx.I8(data))}, nil
	case Year:
		return Value{Type: t, I64: int64(bx.I8(data))}, nil
	case SmallInt:
		return Value{Type: t, I64: int64(bx.I16(data))}, nil
	case Int, Time:
		return Value{Type: t, I64: int64(bx.I32(data))}, nil
	case BigInt:
		return Value{Type: t, I64: bx.I64(data)}, nil
	case Float:
		return Value{Type: t, F64: bx.F64(data)}, nil
	case DateTime, Date:
		return Value{Type: t, U64: bx.U64(data)}, nil
	case Text:
		return Value{Type: t, Text: string(data)}, nil
	default:
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownSerialCode, t)
	}
}
