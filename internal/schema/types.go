package schema

import "github.com/tordrt/schemagen/internal/schemaerr"

// Cardinalities used by Relation
const (
	OneToOne  = "1:1"
	OneToMany = "1:N"
)

// SubtableKind tells why a subordinate table was derived
type SubtableKind string

const (
	// SubtableNested is derived from an object property with its own properties.
	SubtableNested SubtableKind = "nested"
	// SubtableItems is derived from an array property whose items are objects.
	SubtableItems SubtableKind = "items"
)

// Schema is the set of table definitions derived from one schema document
type Schema struct {
	Root     *Table
	Warnings []schemaerr.UnknownTypeWarning
}

// Table represents one derived table.
//
// Members keep declaration order: a nested object contributes its key column
// followed by its subtable, an array of objects contributes only a subtable.
type Table struct {
	Name      string
	Members   []Member
	Relations []Relation
}

// Member is either a column or a subordinate table, never both
type Member struct {
	Column   *Column
	Subtable *Subtable
}

// Column represents a table column
type Column struct {
	Name string
	Type string
	// LogicalType is the schema type the column was mapped from.
	LogicalType string
	// ForeignKey marks the key column pointing at a nested table.
	ForeignKey bool
}

// Subtable is a table derived from a single property of its parent
type Subtable struct {
	Kind     SubtableKind
	Property string
	Table    *Table
}

// Relation represents a relationship declared by a table.
//
// A 1:1 relation is a foreign key from SourceColumn to TargetTable.TargetColumn.
// A 1:N relation is only a note: TargetTable holds a parent_id column that
// points back at the declaring table.
type Relation struct {
	Property     string
	SourceColumn string
	TargetTable  string
	TargetColumn string
	Cardinality  string
}

// Columns returns the table's physical columns in order.
func (t *Table) Columns() []Column {
	var cols []Column
	for _, m := range t.Members {
		if m.Column != nil {
			cols = append(cols, *m.Column)
		}
	}
	return cols
}

// Subtables returns the table's direct subordinate tables in order.
func (t *Table) Subtables() []Subtable {
	var subs []Subtable
	for _, m := range t.Members {
		if m.Subtable != nil {
			subs = append(subs, *m.Subtable)
		}
	}
	return subs
}

// HasColumn reports whether the table has a physical column with the given name.
func (t *Table) HasColumn(name string) bool {
	for _, m := range t.Members {
		if m.Column != nil && m.Column.Name == name {
			return true
		}
	}
	return false
}

// Tables flattens the derived tables, each parent before its subtables.
func (s *Schema) Tables() []*Table {
	if s == nil || s.Root == nil {
		return nil
	}
	var out []*Table
	var walk func(t *Table)
	walk = func(t *Table) {
		out = append(out, t)
		for _, m := range t.Members {
			if m.Subtable != nil {
				walk(m.Subtable.Table)
			}
		}
	}
	walk(s.Root)
	return out
}

// ParentOf returns the table that declares t as a subtable, or nil.
func (s *Schema) ParentOf(t *Table) *Table {
	for _, candidate := range s.Tables() {
		for _, m := range candidate.Members {
			if m.Subtable != nil && m.Subtable.Table == t {
				return candidate
			}
		}
	}
	return nil
}
