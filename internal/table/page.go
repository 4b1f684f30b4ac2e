package table

import "github.com/dvdb/davisbase/internal/storage"

// LeafPage is a table-leaf page wrapper: cells are LeafCells in
// ascending row-id order, and the page's linkage field is its right
// sibling (NullPageNo if it is the rightmost leaf).
type LeafPage struct {
	Page   *storage.Page
	PageNo int
}

func newLeafPage(buf []byte, pageNo int) *LeafPage {
	return &LeafPage{Page: storage.NewPage(buf, storage.TableLeaf), PageNo: pageNo}
}

func (lp *LeafPage) CellCount() int { return lp.Page.CellCount() }

func (lp *LeafPage) RightSibling() int32 { return lp.Page.Linkage() }

func (lp *LeafPage) SetRightSibling(pageNo int32) { lp.Page.SetLinkage(pageNo) }

func (lp *LeafPage) HasRightSibling() bool { return lp.RightSibling() != storage.NullPageNo }

func (lp *LeafPage) GetCell(index int) (LeafCell, error) {
	offset, err := lp.Page.SlotOffset(index)
	if err != nil {
		return LeafCell{}, err
	}
	header, err := lp.Page.ReadAt(offset, leafCellHeaderSize)
	if err != nil {
		return LeafCell{}, err
	}
	payloadLength, rowID := decodeLeafCellHeader(header)
	payload, err := lp.Page.ReadAt(offset+leafCellHeaderSize, payloadLength)
	if err != nil {
		return LeafCell{}, err
	}
	out := make([]byte, payloadLength)
	copy(out, payload)
	return LeafCell{RowID: rowID, Payload: out}, nil
}

func (lp *LeafPage) MinRowID() (int32, error) {
	cell, err := lp.GetCell(0)
	return cell.RowID, err
}

func (lp *LeafPage) Fits(cell LeafCell) bool { return lp.Page.Fits(cell.Length()) }

func (lp *LeafPage) AppendCell(cell LeafCell) (int, error) {
	return lp.Page.AppendCell(cell.encode())
}

// UpdateCell overwrites cell index in place. Per spec.md §4.4.3 this is
// only legal when the new cell is no longer than the cell it replaces
// — DavisBase-Go never grows a cell in place, matching the original.
func (lp *LeafPage) UpdateCell(index int, cell LeafCell) error {
	existing, err := lp.GetCell(index)
	if err != nil {
		return err
	}
	if cell.Length() > existing.Length() {
		return ErrCellGrows
	}
	offset, err := lp.Page.SlotOffset(index)
	if err != nil {
		return err
	}
	return lp.Page.WriteAt(offset, cell.encode())
}

func (lp *LeafPage) DeleteCell(index int) error { return lp.Page.DeleteSlot(index) }

// InteriorPage is a table-interior page wrapper: cells route row-ids
// below their boundary to a left child; everything else falls through
// to the page's rightmost-child linkage field.
type InteriorPage struct {
	Page   *storage.Page
	PageNo int
}

func newInteriorPage(buf []byte, pageNo int) *InteriorPage {
	return &InteriorPage{Page: storage.NewPage(buf, storage.TableInterior), PageNo: pageNo}
}

func (ip *InteriorPage) CellCount() int { return ip.Page.CellCount() }

func (ip *InteriorPage) RightmostChild() int32 { return ip.Page.Linkage() }

func (ip *InteriorPage) SetRightmostChild(pageNo int32) { ip.Page.SetLinkage(pageNo) }

func (ip *InteriorPage) GetCell(index int) (InteriorCell, error) {
	offset, err := ip.Page.SlotOffset(index)
	if err != nil {
		return InteriorCell{}, err
	}
	raw, err := ip.Page.ReadAt(offset, interiorCellSize)
	if err != nil {
		return InteriorCell{}, err
	}
	return decodeInteriorCell(raw), nil
}

func (ip *InteriorPage) Fits() bool { return ip.Page.Fits(interiorCellSize) }

func (ip *InteriorPage) AppendCell(cell InteriorCell) (int, error) {
	return ip.Page.AppendCell(cell.encode())
}

// ChildPageNoByRowID finds the first cell whose RowID exceeds rowID
// and returns its left child; if rowID is at or beyond every cell's
// boundary, it falls through to the rightmost child.
func (ip *InteriorPage) ChildPageNoByRowID(rowID int32) (int32, error) {
	count := ip.CellCount()
	for i := 0; i < count; i++ {
		cell, err := ip.GetCell(i)
		if err != nil {
			return 0, err
		}
		if rowID < cell.RowID {
			return cell.LeftChildPageNo, nil
		}
	}
	return ip.RightmostChild(), nil
}
