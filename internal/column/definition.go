package column

import "fmt"

// Modifiers are the column constraint flags spec.md §6.3's grammar
// recognizes: NULL, NOT NULL, PRIMARY KEY, AUTOINCREMENT, UNIQUE,
// DEFAULT lit.
//
// On disk only IsNullable is actually persisted (davisbase_columns has
// an is_nullable column, not a not_null one); NotNull() is always its
// logical negation, reconstructed on read. This asymmetry is
// intentional — see spec.md §9 and DESIGN.md.
type Modifiers struct {
	IsNullable    bool
	PrimaryKey    bool
	AutoIncrement bool
	Unique        bool
	HasDefault    bool
	Default       any // raw literal (nil/string/int64/float64); never applied, see spec.md §9
}

func (m Modifiers) NotNull() bool { return !m.IsNullable }

// ColumnDefinition describes one column of a table: its name, logical
// type, and constraint modifiers.
type ColumnDefinition struct {
	Name      string
	Type      Type
	Modifiers Modifiers
}

// Validate enforces the cross-modifier rule of spec.md §3:
// primary_key implies unique and not_null.
func (c ColumnDefinition) Validate() error {
	if c.Modifiers.PrimaryKey && (c.Modifiers.IsNullable || !c.Modifiers.Unique) {
		return fmt.Errorf("column %s: PRIMARY KEY requires UNIQUE and NOT NULL", c.Name)
	}
	return nil
}

// NormalizePrimaryKey forces PRIMARY KEY columns to carry the UNIQUE
// and NOT NULL modifiers they imply, so callers (e.g. the parser) don't
// have to set all three explicitly.
func (c *ColumnDefinition) NormalizePrimaryKey() {
	if c.Modifiers.PrimaryKey {
		c.Modifiers.Unique = true
		c.Modifiers.IsNullable = false
	}
}
