package storage

import "github.com/dvdb/davisbase/internal/bx"

// Header field offsets within the fixed 9-byte common header.
const (
	offPageType          = 0
	offCellCount         = 1
	offContentAreaOffset = 3
	offLinkage           = 5
)

// Page wraps one fixed-length buffer in the layout of spec.md §4.3:
//
//	+--------------------+ 0
//	| page_type       u8 |
//	| cell_count      u16|
//	| content_area    u16|
//	| linkage         i32|
//	+--------------------+ 9
//	| slot array (u16[])  | <- grows down from offset 9
//	|          ...         |
//	+----------------------+
//	|     free space       |
//	+----------------------+ <- content_area_offset
//	|     cell content      | <- grows up from the end of the page
//	|          ...          |
//	+------------------------+ page length
//
// Slots are bare cell offsets — no length, no flags. A cell's own
// bytes carry whatever length information its format needs (the
// table-leaf cell embeds a payload_length field; the table-interior
// cell is fixed width). Page never interprets cell content.
type Page struct {
	Buf []byte
}

// NewPage allocates a fresh page of the given type in buf, whose
// length becomes this page's length for the rest of its life.
func NewPage(buf []byte, pageType PageType) *Page {
	p := &Page{Buf: buf}
	p.SetType(pageType)
	p.setCellCount(0)
	p.setContentAreaOffset(len(buf))
	p.SetLinkage(NullPageNo)
	return p
}

// WrapPage adopts an existing, previously-initialized buffer (e.g.
// just read off disk) without resetting its header.
func WrapPage(buf []byte) *Page {
	return &Page{Buf: buf}
}

func (p *Page) Length() int { return len(p.Buf) }

func (p *Page) Type() PageType { return PageType(p.Buf[offPageType]) }

func (p *Page) SetType(t PageType) { p.Buf[offPageType] = byte(t) }

func (p *Page) CellCount() int { return int(bx.U16At(p.Buf, offCellCount)) }

func (p *Page) setCellCount(n int) { bx.PutU16At(p.Buf, offCellCount, uint16(n)) }

func (p *Page) ContentAreaOffset() int { return int(bx.U16At(p.Buf, offContentAreaOffset)) }

func (p *Page) setContentAreaOffset(off int) {
	bx.PutU16At(p.Buf, offContentAreaOffset, uint16(off))
}

// Linkage is the rightmost-child page number on an interior page, or
// the right-sibling page number on a leaf page. NullPageNo when unset.
func (p *Page) Linkage() int32 { return bx.I32At(p.Buf, offLinkage) }

func (p *Page) SetLinkage(v int32) { bx.PutI32At(p.Buf, offLinkage, v) }

// HeaderEnd is the byte offset just past the slot array: where a new
// slot would be appended.
func (p *Page) HeaderEnd() int { return HeaderSize + SlotSize*p.CellCount() }

func (p *Page) slotOffsetPos(i int) int { return HeaderSize + SlotSize*i }

// SlotOffset returns the content-area byte offset cell i's bytes start
// at.
func (p *Page) SlotOffset(i int) (int, error) {
	if i < 0 || i >= p.CellCount() {
		return 0, ErrBadSlot
	}
	return int(bx.U16At(p.Buf, p.slotOffsetPos(i))), nil
}

func (p *Page) setSlotOffset(i int, off int) {
	bx.PutU16At(p.Buf, p.slotOffsetPos(i), uint16(off))
}

// Fits reports whether a new cell of length bytes can be appended
// without growing the page, per spec.md §9's intentionally strict `<`
// free-space test (an off-by-one byte of slack is always wasted).
func (p *Page) Fits(length int) bool {
	return p.HeaderEnd()+SlotSize+length < p.ContentAreaOffset()
}

// AppendCell writes data into the content area and appends a new slot
// pointing at it, returning the new cell's index.
func (p *Page) AppendCell(data []byte) (int, error) {
	if !p.Fits(len(data)) {
		return 0, ErrNoSpace
	}
	newOffset := p.ContentAreaOffset() - len(data)
	copy(p.Buf[newOffset:newOffset+len(data)], data)
	p.setContentAreaOffset(newOffset)

	idx := p.CellCount()
	p.setSlotOffset(idx, newOffset)
	p.setCellCount(idx + 1)
	return idx, nil
}

// ReadAt returns a bounds-checked slice of the page's raw bytes. The
// table layer uses this to decode a cell once it knows the cell's
// offset (from SlotOffset) and length (self-describing for leaf cells,
// fixed for interior cells).
func (p *Page) ReadAt(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > len(p.Buf) {
		return nil, ErrCorruption
	}
	return p.Buf[offset : offset+length], nil
}

// WriteAt overwrites length bytes starting at offset with data. Used
// for in-place row updates (spec.md §4.4.3): the caller has already
// checked the new cell is no longer than the old one.
func (p *Page) WriteAt(offset int, data []byte) error {
	if offset < 0 || offset+len(data) > len(p.Buf) {
		return ErrCorruption
	}
	copy(p.Buf[offset:offset+len(data)], data)
	return nil
}

// DeleteSlot removes slot i from the slot array, shifting every
// later slot down by one and decrementing cell_count. The cell's
// bytes in the content area are not reclaimed or compacted — spec.md
// §9 leaves this space permanently wasted until the page is rewritten
// from scratch, which DavisBase-Go never does.
func (p *Page) DeleteSlot(i int) error {
	n := p.CellCount()
	if i < 0 || i >= n {
		return ErrBadSlot
	}
	for j := i; j < n-1; j++ {
		next, err := p.SlotOffset(j + 1)
		if err != nil {
			return err
		}
		p.setSlotOffset(j, next)
	}
	p.setCellCount(n - 1)
	return nil
}
