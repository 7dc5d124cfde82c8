package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemagen/internal/schema"
)

// TextFormatter formats derived tables as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes every derived table in compact text format
func (f *TextFormatter) Format(s *schema.Schema) error {
	for i, table := range s.Tables() {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}

		if err := f.formatTable(table); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) formatTable(table *schema.Table) error {
	if _, err := fmt.Fprintf(f.writer, "TABLE %s\n", table.Name); err != nil {
		return err
	}

	for _, col := range table.Columns() {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", f.formatColumn(col))
	}

	if len(table.Relations) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  RELATIONS:")
		for _, rel := range table.Relations {
			_, _ = fmt.Fprintf(f.writer, "    → %s.%s (%s)\n", rel.TargetTable, rel.TargetColumn, rel.Cardinality)
		}
	}

	return nil
}

func (f *TextFormatter) formatColumn(col schema.Column) string {
	parts := []string{col.Name + ":", col.Type}

	if col.ForeignKey {
		parts = append(parts, "FK")
	}

	return strings.Join(parts, " ")
}
