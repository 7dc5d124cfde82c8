package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemagen/internal/schema"
)

// Output formats
const (
	FormatSQL        = "sql"
	FormatStatements = "statements"
	FormatText       = "text"
	FormatMarkdown   = "markdown"
)

// Formatter writes a derived schema somewhere
type Formatter interface {
	Format(s *schema.Schema) error
}

// SQLFormatter writes the root table as one CREATE TABLE statement with every
// subtable spliced in next to the property it was derived from.
type SQLFormatter struct {
	writer io.Writer
}

// NewSQLFormatter creates a new spliced SQL formatter
func NewSQLFormatter(w io.Writer) *SQLFormatter {
	return &SQLFormatter{writer: w}
}

// Format writes the spliced DDL of the root table
func (f *SQLFormatter) Format(s *schema.Schema) error {
	if s == nil || s.Root == nil {
		return fmt.Errorf("no table to format")
	}
	_, err := io.WriteString(f.writer, RenderSpliced(s.Root))
	return err
}

// RenderSpliced renders t and its subtables as a single DDL text.
func RenderSpliced(t *schema.Table) string {
	var columns strings.Builder
	for _, m := range t.Members {
		switch {
		case m.Column != nil:
			fmt.Fprintf(&columns, "%s %s,\n", m.Column.Name, m.Column.Type)
		case m.Subtable != nil:
			fmt.Fprintf(&columns, "\n-- %s %s\n%s\n",
				subtableLabel(m.Subtable.Kind),
				m.Subtable.Property,
				RenderSpliced(m.Subtable.Table))
		}
	}

	relations := make([]string, 0, len(t.Relations))
	for _, rel := range t.Relations {
		relations = append(relations, renderRelation(rel))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n%s%s\n);", t.Name, columns.String(), strings.Join(relations, ",\n"))
}

func subtableLabel(kind schema.SubtableKind) string {
	if kind == schema.SubtableItems {
		return "Items table for"
	}
	return "Nested table for"
}

func renderRelation(rel schema.Relation) string {
	if rel.Cardinality == schema.OneToMany {
		return fmt.Sprintf("-- One-to-Many relationship: Create a separate table for %s with a foreign key to this table", rel.Property)
	}
	return fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)", rel.SourceColumn, rel.TargetTable, rel.TargetColumn)
}
