package executor

import "github.com/dvdb/davisbase/internal/column"

// Result is what ExecSQL returns for one statement. Which fields are
// meaningful depends on the statement kind: SHOW TABLES and SELECT
// populate Rows (and RowIDs, for SELECT); every other statement only
// sets AffectedRows.
type Result struct {
	Columns []string
	RowIDs  []int32
	Rows    [][]column.Value

	AffectedRows int64
}
