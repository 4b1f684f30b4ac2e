package table

import "errors"

var (
	ErrNoSuchRow    = errors.New("table: no row with that row id")
	ErrCellTooLarge = errors.New("table: record too large to fit in an empty page")
	ErrCellGrows    = errors.New("table: update would grow the stored cell")
	ErrDecreasingRowID = errors.New("table: row-id must increase monotonically on append")
)
