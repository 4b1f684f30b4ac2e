// Package table implements DavisBase's clustered table storage: a
// single paged B+-tree per table, keyed by a monotonically increasing
// row-id, whose leaves hold rows directly (there is no separate heap
// file). Splits happen only on append, always at the tail, since rows
// are never inserted out of row-id order.
package table

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dvdb/davisbase/internal/storage"
)

// Table is one table's B+-tree: a pager over its backing file plus
// the root page number and next row-id, both of which the catalog
// layer persists across restarts in the davisbase_tables schema row.
type Table struct {
	pager      *storage.Pager
	pageLength int
	rootPageNo int
	nextRowID  int32
	mu         sync.Mutex
	log        *slog.Logger
}

// InitialRowID is the row-id the first row of a freshly created table
// receives.
const InitialRowID int32 = 1

// CreateTable initializes a brand-new one-page table: a single empty
// table-leaf page as the root, row-ids starting at InitialRowID.
func CreateTable(pager *storage.Pager, pageLength int) (*Table, error) {
	pageNo := pager.AllocatePage()
	leaf := newLeafPage(make([]byte, pageLength), pageNo)
	if err := pager.WritePage(pageNo, leaf.Page); err != nil {
		return nil, err
	}
	return &Table{
		pager:      pager,
		pageLength: pageLength,
		rootPageNo: pageNo,
		nextRowID:  InitialRowID,
		log:        slog.Default(),
	}, nil
}

// OpenTable resumes a table whose root page and next row-id were
// already persisted by the catalog.
func OpenTable(pager *storage.Pager, pageLength, rootPageNo int, nextRowID int32) *Table {
	return &Table{
		pager:      pager,
		pageLength: pageLength,
		rootPageNo: rootPageNo,
		nextRowID:  nextRowID,
		log:        slog.Default(),
	}
}

func (t *Table) RootPageNo() int   { return t.rootPageNo }
func (t *Table) NextRowID() int32 { return t.nextRowID }
func (t *Table) PageCount() int   { return t.pager.PageCount() }

func (t *Table) getLeafOrInterior(pageNo int) (leaf *LeafPage, interior *InteriorPage, err error) {
	page, err := t.pager.ReadPage(pageNo)
	if err != nil {
		return nil, nil, err
	}
	switch page.Type() {
	case storage.TableLeaf:
		return &LeafPage{Page: page, PageNo: pageNo}, nil, nil
	case storage.TableInterior:
		return nil, &InteriorPage{Page: page, PageNo: pageNo}, nil
	default:
		return nil, nil, fmt.Errorf("%w: page %d has type 0x%02X", storage.ErrUnknownPageType, pageNo, byte(page.Type()))
	}
}

// minRowIDOf returns the smallest row-id reachable under pageNo. An
// interior cell's own RowID is only the boundary between its left
// child and whatever comes next — not the minimum of the subtree
// rooted at the page as a whole, since that subtree's leftmost child
// can hold rows below every boundary key the interior stores (this is
// exactly what happens right after an interior split: the new
// interior's cell(0) carries the new leaf's minimum as its boundary,
// but cell(0)'s left child is the *old* interior's former rightmost
// subtree, whose rows are smaller still). So for an interior page this
// descends through the leftmost child pointer, recursively, all the
// way down to the leftmost leaf.
func (t *Table) minRowIDOf(pageNo int) (int32, error) {
	leaf, interior, err := t.getLeafOrInterior(pageNo)
	if err != nil {
		return 0, err
	}
	if leaf != nil {
		return leaf.MinRowID()
	}
	cell, err := interior.GetCell(0)
	if err != nil {
		return 0, err
	}
	return t.minRowIDOf(int(cell.LeftChildPageNo))
}

// AppendRecord inserts payload as a new row at the tree's next
// row-id, splitting leaves and interior pages as needed, growing the
// root when the split propagates all the way up. Returns the
// assigned row-id.
func (t *Table) AppendRecord(payload []byte) (int32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rowID := t.nextRowID
	cell := LeafCell{RowID: rowID, Payload: payload}

	splitPageNo, err := t.appendRecursive(t.rootPageNo, cell)
	if err != nil {
		return 0, err
	}
	if splitPageNo != storage.NullPageNo {
		if err := t.growRoot(splitPageNo); err != nil {
			return 0, err
		}
	}
	t.nextRowID++
	t.log.Debug("table.AppendRecord", "row_id", rowID, "root_page_no", t.rootPageNo)
	return rowID, nil
}

func (t *Table) growRoot(splitPageNo int32) error {
	minRowID, err := t.minRowIDOf(int(splitPageNo))
	if err != nil {
		return err
	}
	newRootNo := t.pager.AllocatePage()
	newRoot := newInteriorPage(make([]byte, t.pageLength), newRootNo)
	if _, err := newRoot.AppendCell(InteriorCell{LeftChildPageNo: int32(t.rootPageNo), RowID: minRowID}); err != nil {
		return err
	}
	newRoot.SetRightmostChild(splitPageNo)
	if err := t.pager.WritePage(newRootNo, newRoot.Page); err != nil {
		return err
	}
	t.rootPageNo = newRootNo
	return nil
}

// appendRecursive returns NullPageNo if cell was absorbed without a
// split, or the page number of the newly created sibling that the
// caller must link in (possibly triggering its own split, all the
// way up to the root).
func (t *Table) appendRecursive(pageNo int, cell LeafCell) (int32, error) {
	leaf, interior, err := t.getLeafOrInterior(pageNo)
	if err != nil {
		return 0, err
	}
	if leaf != nil {
		return t.appendToLeaf(leaf, cell)
	}
	return t.appendToInterior(interior, cell)
}

func (t *Table) appendToLeaf(leaf *LeafPage, cell LeafCell) (int32, error) {
	if leaf.CellCount() > 0 {
		last, err := leaf.GetCell(leaf.CellCount() - 1)
		if err != nil {
			return 0, err
		}
		if last.RowID >= cell.RowID {
			return 0, ErrDecreasingRowID
		}
	}

	if leaf.Fits(cell) {
		if _, err := leaf.AppendCell(cell); err != nil {
			return 0, err
		}
		return storage.NullPageNo, t.pager.WritePage(leaf.PageNo, leaf.Page)
	}

	splitPageNo := t.pager.AllocatePage()
	split := newLeafPage(make([]byte, t.pageLength), splitPageNo)
	if !split.Fits(cell) {
		return 0, ErrCellTooLarge
	}
	if _, err := split.AppendCell(cell); err != nil {
		return 0, err
	}
	split.SetRightSibling(storage.NullPageNo)
	leaf.SetRightSibling(int32(splitPageNo))

	if err := t.pager.WritePage(splitPageNo, split.Page); err != nil {
		return 0, err
	}
	if err := t.pager.WritePage(leaf.PageNo, leaf.Page); err != nil {
		return 0, err
	}
	t.log.Debug("table.leaf split", "old_page", leaf.PageNo, "new_page", splitPageNo)
	return int32(splitPageNo), nil
}

func (t *Table) appendToInterior(interior *InteriorPage, leafCell LeafCell) (int32, error) {
	childPageNo, err := interior.ChildPageNoByRowID(leafCell.RowID)
	if err != nil {
		return 0, err
	}
	childSplitPageNo, err := t.appendRecursive(int(childPageNo), leafCell)
	if err != nil {
		return 0, err
	}
	if childSplitPageNo == storage.NullPageNo {
		return storage.NullPageNo, nil
	}

	minRowID, err := t.minRowIDOf(int(childSplitPageNo))
	if err != nil {
		return 0, err
	}
	boundaryCell := InteriorCell{LeftChildPageNo: interior.RightmostChild(), RowID: minRowID}

	if interior.Fits() {
		if _, err := interior.AppendCell(boundaryCell); err != nil {
			return 0, err
		}
		interior.SetRightmostChild(childSplitPageNo)
		return storage.NullPageNo, t.pager.WritePage(interior.PageNo, interior.Page)
	}

	splitPageNo := t.pager.AllocatePage()
	split := newInteriorPage(make([]byte, t.pageLength), splitPageNo)
	if _, err := split.AppendCell(boundaryCell); err != nil {
		return 0, err
	}
	split.SetRightmostChild(childSplitPageNo)
	interior.SetRightmostChild(storage.NullPageNo)

	if err := t.pager.WritePage(splitPageNo, split.Page); err != nil {
		return 0, err
	}
	if err := t.pager.WritePage(interior.PageNo, interior.Page); err != nil {
		return 0, err
	}
	t.log.Debug("table.interior split", "old_page", interior.PageNo, "new_page", splitPageNo)
	return int32(splitPageNo), nil
}

func (t *Table) leftmostLeafPageNo() (int, error) {
	pageNo := t.rootPageNo
	for {
		leaf, interior, err := t.getLeafOrInterior(pageNo)
		if err != nil {
			return 0, err
		}
		if leaf != nil {
			return pageNo, nil
		}
		cell, err := interior.GetCell(0)
		if err != nil {
			return 0, err
		}
		pageNo = int(cell.LeftChildPageNo)
	}
}

func (t *Table) leafPageNoByRowID(rowID int32) (int, error) {
	pageNo := t.rootPageNo
	for {
		leaf, interior, err := t.getLeafOrInterior(pageNo)
		if err != nil {
			return 0, err
		}
		if leaf != nil {
			return pageNo, nil
		}
		childPageNo, err := interior.ChildPageNoByRowID(rowID)
		if err != nil {
			return 0, err
		}
		pageNo = int(childPageNo)
	}
}

// UpdateRecord overwrites row rowID's payload in place. It fails with
// ErrCellGrows if payload is longer than the row's current stored
// bytes — DavisBase-Go never relocates a row on update.
func (t *Table) UpdateRecord(rowID int32, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	pageNo, err := t.leafPageNoByRowID(rowID)
	if err != nil {
		return err
	}
	page, err := t.pager.ReadPage(pageNo)
	if err != nil {
		return err
	}
	leaf := &LeafPage{Page: page, PageNo: pageNo}
	for i := 0; i < leaf.CellCount(); i++ {
		cell, err := leaf.GetCell(i)
		if err != nil {
			return err
		}
		if cell.RowID == rowID {
			if err := leaf.UpdateCell(i, LeafCell{RowID: rowID, Payload: payload}); err != nil {
				return err
			}
			return t.pager.WritePage(pageNo, page)
		}
	}
	return ErrNoSuchRow
}

// DeleteRecord removes row rowID.
func (t *Table) DeleteRecord(rowID int32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	pageNo, err := t.leafPageNoByRowID(rowID)
	if err != nil {
		return err
	}
	page, err := t.pager.ReadPage(pageNo)
	if err != nil {
		return err
	}
	leaf := &LeafPage{Page: page, PageNo: pageNo}
	for i := 0; i < leaf.CellCount(); i++ {
		cell, err := leaf.GetCell(i)
		if err != nil {
			return err
		}
		if cell.RowID == rowID {
			if err := leaf.DeleteCell(i); err != nil {
				return err
			}
			return t.pager.WritePage(pageNo, page)
		}
	}
	return ErrNoSuchRow
}

// DeleteCellAt removes cell index on page pageNo directly, without a
// row-id lookup. Used by the executor's scan-and-delete loop, which
// already holds (pageNo, index) from MapOverRecords.
func (t *Table) DeleteCellAt(pageNo, index int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	page, err := t.pager.ReadPage(pageNo)
	if err != nil {
		return err
	}
	leaf := &LeafPage{Page: page, PageNo: pageNo}
	if err := leaf.DeleteCell(index); err != nil {
		return err
	}
	return t.pager.WritePage(pageNo, page)
}

// UpdateCellAt overwrites cell index on page pageNo directly. Used by
// the executor's scan-and-update loop.
func (t *Table) UpdateCellAt(pageNo, index int, rowID int32, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	page, err := t.pager.ReadPage(pageNo)
	if err != nil {
		return err
	}
	leaf := &LeafPage{Page: page, PageNo: pageNo}
	if err := leaf.UpdateCell(index, LeafCell{RowID: rowID, Payload: payload}); err != nil {
		return err
	}
	return t.pager.WritePage(pageNo, page)
}
