package table

import "github.com/dvdb/davisbase/internal/bx"

// leafCellHeaderSize is sizeof(payload_length) + sizeof(row_id) in a
// table-leaf cell: u16 + i32, per spec.md §4.4.1.
const leafCellHeaderSize = 6

// interiorCellSize is the fixed width of a table-interior cell:
// i32 left_child_page_no + i32 row_id, per spec.md §4.4.2.
const interiorCellSize = 8

// LeafCell is one row: a row-id and its encoded column payload (the
// bytes internal/column.EncodeRow produced).
type LeafCell struct {
	RowID   int32
	Payload []byte
}

func (c LeafCell) Length() int { return leafCellHeaderSize + len(c.Payload) }

func (c LeafCell) encode() []byte {
	buf := make([]byte, c.Length())
	bx.PutU16At(buf, 0, uint16(len(c.Payload)))
	bx.PutI32At(buf, 2, c.RowID)
	copy(buf[leafCellHeaderSize:], c.Payload)
	return buf
}

func decodeLeafCellHeader(b []byte) (payloadLength int, rowID int32) {
	return int(bx.U16At(b, 0)), bx.I32At(b, 2)
}

// InteriorCell routes row-ids below its RowID boundary to
// LeftChildPageNo; the page holding the cell routes everything else
// to its rightmost-child linkage field.
type InteriorCell struct {
	LeftChildPageNo int32
	RowID           int32
}

func (c InteriorCell) encode() []byte {
	buf := make([]byte, interiorCellSize)
	bx.PutI32At(buf, 0, c.LeftChildPageNo)
	bx.PutI32At(buf, 4, c.RowID)
	return buf
}

func decodeInteriorCell(b []byte) InteriorCell {
	return InteriorCell{
		LeftChildPageNo: bx.I32At(b, 0),
		RowID:           bx.I32At(b, 4),
	}
}
