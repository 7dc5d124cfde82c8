package formatter

import (
	"fmt"
	"io"

	"github.com/tordrt/schemagen/internal/schema"
)

// MarkdownFormatter formats derived tables as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes every derived table in markdown format
func (f *MarkdownFormatter) Format(s *schema.Schema) error {
	_, _ = fmt.Fprintln(f.writer, "# Database Schema")
	_, _ = fmt.Fprintln(f.writer)

	for _, table := range s.Tables() {
		if err := f.FormatTable(table); err != nil {
			return err
		}
	}
	return nil
}

// FormatTable formats a single table (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatTable(table *schema.Table) error {
	if _, err := fmt.Fprintf(f.writer, "## %s\n\n", table.Name); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)
	for _, col := range table.Columns() {
		_, _ = fmt.Fprintf(f.writer, "- **%s:** %s%s\n", col.Name, col.Type, f.formatOrigin(col))
	}
	_, _ = fmt.Fprintln(f.writer)

	if len(table.Relations) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### References")
		_, _ = fmt.Fprintln(f.writer)
		for _, rel := range table.Relations {
			source := rel.SourceColumn
			if source == "" {
				source = rel.Property
			}
			_, _ = fmt.Fprintf(f.writer, "- %s → %s.%s (%s)\n",
				source,
				rel.TargetTable,
				rel.TargetColumn,
				rel.Cardinality)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	return nil
}

func (f *MarkdownFormatter) formatOrigin(col schema.Column) string {
	switch {
	case col.ForeignKey:
		return ", FK"
	case col.LogicalType != "":
		return fmt.Sprintf(" (%s)", col.LogicalType)
	default:
		return ""
	}
}
