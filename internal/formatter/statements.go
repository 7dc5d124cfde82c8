package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemagen/internal/ddl"
	"github.com/tordrt/schemagen/internal/schema"
)

// Statement is one standalone CREATE TABLE statement
type Statement struct {
	Table string
	SQL   string
	Def   *schema.Table
}

// StatementsFormatter writes one executable statement per derived table, in
// an order where every referenced table is created first.
type StatementsFormatter struct {
	writer  io.Writer
	dialect ddl.Dialect
}

// NewStatementsFormatter creates a new statements formatter
func NewStatementsFormatter(w io.Writer, dialect ddl.Dialect) *StatementsFormatter {
	return &StatementsFormatter{writer: w, dialect: dialect}
}

// Format writes the statements separated by blank lines
func (f *StatementsFormatter) Format(s *schema.Schema) error {
	for i, stmt := range Statements(s, f.dialect) {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer)
		}
		if _, err := fmt.Fprintln(f.writer, stmt.SQL); err != nil {
			return err
		}
	}
	return nil
}

// Statements orders the derived tables so that nested-object tables precede
// the table referencing them and item tables follow their parent.
//
// Every table gets a surrogate id primary key unless it declares its own id
// column, which then becomes the primary key. Key columns take the type of
// the id they reference, and item tables get a foreign key from parent_id to
// their parent.
func Statements(s *schema.Schema, dialect ddl.Dialect) []Statement {
	if s == nil || s.Root == nil {
		return nil
	}
	var out []Statement
	var walk func(t *schema.Table)
	walk = func(t *schema.Table) {
		for _, sub := range t.Subtables() {
			if sub.Kind == schema.SubtableNested {
				walk(sub.Table)
			}
		}
		out = append(out, Statement{Table: t.Name, SQL: renderStatement(t, s.ParentOf(t), dialect), Def: t})
		for _, sub := range t.Subtables() {
			if sub.Kind == schema.SubtableItems {
				walk(sub.Table)
			}
		}
	}
	walk(s.Root)
	return out
}

// renderStatement renders t; parent is set only for item tables.
func renderStatement(t *schema.Table, parent *schema.Table, dialect ddl.Dialect) string {
	if parent != nil && !isItemsOf(parent, t) {
		parent = nil
	}

	var lines []string
	if !t.HasColumn("id") {
		lines = append(lines, "  id "+dialect.PrimaryKey())
	}
	for _, col := range t.Columns() {
		typ := col.Type
		switch {
		case col.Name == "id":
			typ += " PRIMARY KEY"
		case col.ForeignKey:
			if target := nestedTarget(t, col.Name); target != nil {
				typ = idType(target, dialect)
			}
		case parent != nil && col.Name == ddl.ParentColumn:
			typ = idType(parent, dialect)
		}
		lines = append(lines, fmt.Sprintf("  %s %s", col.Name, typ))
	}
	for _, rel := range t.Relations {
		if rel.Cardinality == schema.OneToOne {
			lines = append(lines, fmt.Sprintf("  FOREIGN KEY (%s) REFERENCES %s(%s)", rel.SourceColumn, rel.TargetTable, rel.TargetColumn))
		}
	}
	if parent != nil && t.HasColumn(ddl.ParentColumn) {
		lines = append(lines, fmt.Sprintf("  FOREIGN KEY (%s) REFERENCES %s(id)", ddl.ParentColumn, parent.Name))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n);", t.Name, strings.Join(lines, ",\n"))
}

// idType is the column type of t's primary key.
func idType(t *schema.Table, dialect ddl.Dialect) string {
	for _, col := range t.Columns() {
		if col.Name == "id" {
			return col.Type
		}
	}
	return dialect.KeyType()
}

// nestedTarget returns the nested table that key column refers to.
func nestedTarget(t *schema.Table, column string) *schema.Table {
	for _, rel := range t.Relations {
		if rel.Cardinality != schema.OneToOne || rel.SourceColumn != column {
			continue
		}
		for _, sub := range t.Subtables() {
			if sub.Kind == schema.SubtableNested && sub.Property == rel.Property {
				return sub.Table
			}
		}
	}
	return nil
}

func isItemsOf(parent, t *schema.Table) bool {
	for _, sub := range parent.Subtables() {
		if sub.Table == t {
			return sub.Kind == schema.SubtableItems
		}
	}
	return false
}
