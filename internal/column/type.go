// Package column implements DavisBase's typed column values: a tagged
// variant over ten logical types (plus NULL), their on-disk serial type
// codes, cast/compare rules, and the record payload codec that turns a
// row of values into the length-prefixed byte layout a table leaf cell
// stores.
package column

import "fmt"

// Type is a one-byte serial type code family. TEXT is special: its
// on-disk serial code is Text + len(bytes), so Type alone identifies
// every fixed-width type but TEXT needs the value's length as well.
type Type uint8

const (
	Null     Type = 0x00
	TinyInt  Type = 0x01
	SmallInt Type = 0x02
	Int      Type = 0x03
	BigInt   Type = 0x04
	Float    Type = 0x05
	Year     Type = 0x06
	// 0x07 is reserved; DavisBase never allocated it.
	Time Type = 0x08
	// 0x09 is reserved; DavisBase never allocated it.
	DateTime Type = 0x0A
	Date     Type = 0x0B
	Text     Type = 0x0C

	// MaxTextLen is the longest TEXT payload a single serial code can
	// describe: 0xFF - Text.
	MaxTextLen = 0xFF - int(Text)
)

func (t Type) String() string {
	switch t {
	case Null:
		return "NULL"
	case TinyInt:
		return "TINYINT"
	case SmallInt:
		return "SMALLINT"
	case Int:
		return "INT"
	case BigInt:
		return "BIGINT"
	case Float:
		return "FLOAT"
	case Year:
		return "YEAR"
	case Time:
		return "TIME"
	case DateTime:
		return "DATETIME"
	case Date:
		return "DATE"
	case Text:
		return "TEXT"
	default:
		return fmt.Sprintf("Type(0x%02X)", uint8(t))
	}
}

// ParseTypeName maps a SQL type keyword (as the grammar of spec.md §6.3
// produces it) to a Type.
func ParseTypeName(name string) (Type, bool) {
	switch name {
	case "TINYINT":
		return TinyInt, true
	case "SMALLINT":
		return SmallInt, true
	case "INT", "INTEGER":
		return Int, true
	case "BIGINT":
		return BigInt, true
	case "FLOAT", "DOUBLE", "REAL":
		return Float, true
	case "YEAR":
		return Year, true
	case "TIME":
		return Time, true
	case "DATETIME":
		return DateTime, true
	case "DATE":
		return Date, true
	case "TEXT", "VARCHAR", "CHAR":
		return Text, true
	default:
		return Null, false
	}
}

// FixedWidth returns the on-disk byte width for fixed-size types. TEXT
// has no fixed width and is not handled here; see serialCodeFor and
// valueDataWidth.
func (t Type) FixedWidth() int {
	switch t {
	case Null:
		return 0
	case TinyInt, Year:
		return 1
	case SmallInt:
		return 2
	case Int, Time:
		return 4
	case BigInt, Float, DateTime, Date:
		return 8
	default:
		return -1
	}
}

// serialCodeFor returns the one-byte serial type code for a value of
// type t with the given TEXT length (ignored for non-TEXT types).
func serialCodeFor(t Type, textLen int) byte {
	if t == Text {
		return byte(int(Text) + textLen)
	}
	return byte(t)
}

// typeFromSerialCode decodes a serial type code into (Type, textLen).
// textLen is only meaningful when the returned Type is Text.
func typeFromSerialCode(code byte) (t Type, textLen int, err error) {
	switch {
	case code == 0x00:
		return Null, 0, nil
	case code == 0x01, code == 0x02, code == 0x03, code == 0x04,
		code == 0x05, code == 0x06, code == 0x08, code == 0x0A, code == 0x0B:
		return Type(code), 0, nil
	case code >= byte(Text):
		return Text, int(code) - int(Text), nil
	default:
		return Null, 0, fmt.Errorf("%w: serial code 0x%02X", ErrUnknownSerialCode, code)
	}
}
