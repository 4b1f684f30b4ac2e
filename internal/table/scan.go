package table

import "github.com/dvdb/davisbase/internal/storage"

// actionKind is the visitor's instruction to the scan driver after
// seeing one cell — Go's analogue of the original mapOverRecords'
// void/bool/CellIndex return-type overload set.
type actionKind int

const (
	actionContinue actionKind = iota
	actionStop
	actionGoto
)

// ScanAction is what a Visitor returns to steer MapOverRecords: move
// to the next cell (Continue), stop scanning entirely (Stop), or
// resume at a specific cell index on the current page (Goto).
//
// Goto exists for DELETE: deleting cell i compacts the slot array, so
// the cell that used to be at i+1 is now at i. A visitor that just
// deleted cell i returns Goto(i-1) so the driver's unconditional i++
// lands back on i.
type ScanAction struct {
	kind actionKind
	idx  int
}

func Continue() ScanAction  { return ScanAction{kind: actionContinue} }
func Stop() ScanAction      { return ScanAction{kind: actionStop} }
func Goto(i int) ScanAction { return ScanAction{kind: actionGoto, idx: i} }

// Visitor is called once per row during a full table scan. pageNo and
// index identify the cell's physical location, for callers (DELETE,
// UPDATE) that need to mutate the page the row lives on.
type Visitor func(pageNo, index int, cell LeafCell) ScanAction

// MapOverRecords walks every leaf page from leftmost to rightmost via
// right-sibling links, calling visit once per cell in slot order. The
// page is re-read from disk before every single cell, not once per
// page: DeleteCellAt/UpdateCellAt mutate a page by reading their own
// fresh copy from the pager, compacting or rewriting it, and writing
// it straight back, so the only way the driver's view stays correct
// after a visitor mutates the current row is to never hold a page
// across a call to visit — it must look again afterward. Without
// this, a visitor that deletes cell i and returns Goto(i-1) would
// have the driver revisit a slot i in its own stale copy that still
// holds the cell compaction already removed, deleting the row that
// shifted into i's place a second time.
func (t *Table) MapOverRecords(visit Visitor) error {
	pageNo, err := t.leftmostLeafPageNo()
	if err != nil {
		return err
	}

	i := 0
	for {
		page, err := t.pager.ReadPage(pageNo)
		if err != nil {
			return err
		}
		leaf := &LeafPage{Page: page, PageNo: pageNo}

		if i >= leaf.CellCount() {
			rightSibling := leaf.RightSibling()
			if rightSibling == storage.NullPageNo {
				return nil
			}
			pageNo = int(rightSibling)
			i = 0
			continue
		}

		cell, err := leaf.GetCell(i)
		if err != nil {
			return err
		}
		action := visit(pageNo, i, cell)
		switch action.kind {
		case actionStop:
			return nil
		case actionGoto:
			// Same as the default advance, just from a caller-chosen
			// index: a visitor that deleted cell i (shifting i+1 down
			// into i) returns Goto(i-1) so the +1 here lands back on i,
			// now re-read fresh from disk on the next loop iteration.
			i = action.idx + 1
		default:
			i++
		}
	}
}
