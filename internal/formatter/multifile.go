package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/schemagen/internal/ddl"
	"github.com/tordrt/schemagen/internal/schema"
)

// New returns the single-writer formatter for the named format.
func New(format string, w io.Writer, dialect ddl.Dialect) (Formatter, error) {
	switch format {
	case FormatSQL:
		return NewSQLFormatter(w), nil
	case FormatStatements:
		return NewStatementsFormatter(w, dialect), nil
	case FormatText:
		return NewTextFormatter(w), nil
	case FormatMarkdown:
		return NewMarkdownFormatter(w), nil
	default:
		return nil, fmt.Errorf("invalid format: %s (must be 'sql', 'statements', 'text' or 'markdown')", format)
	}
}

// MultiFileFormatter writes derived tables to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string
	Dialect      ddl.Dialect
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string, dialect ddl.Dialect) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
		Dialect:      dialect,
	}
}

// Format writes an overview file plus one file per derived table
func (f *MultiFileFormatter) Format(s *schema.Schema) error {
	if _, err := New(f.OutputFormat, io.Discard, f.Dialect); err != nil {
		return err
	}

	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(s); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	statements := make(map[*schema.Table]string)
	if f.OutputFormat == FormatStatements {
		for _, stmt := range Statements(s, f.Dialect) {
			statements[stmt.Def] = stmt.SQL
		}
	}

	for _, table := range s.Tables() {
		if err := f.writeTableFile(table, s, statements[table]); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeOverview(s *schema.Schema) error {
	filename := filepath.Join(f.OutputDir, "_overview"+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	sortedTables := s.Tables()
	sort.SliceStable(sortedTables, func(i, j int) bool {
		return sortedTables[i].Name < sortedTables[j].Name
	})

	switch f.OutputFormat {
	case FormatMarkdown:
		_, _ = fmt.Fprintf(file, "# Schema Overview\n\n")
		_, _ = fmt.Fprintf(file, "Each table has a corresponding file: `<table_name>%s`\n\n", f.getFileExtension())
		_, _ = fmt.Fprintf(file, "## Tables\n\n")
		for _, table := range sortedTables {
			_, _ = fmt.Fprintf(file, "- **%s**%s\n", table.Name, referenceList(table, ", "))
		}
	case FormatSQL, FormatStatements:
		_, _ = fmt.Fprintf(file, "-- SCHEMA OVERVIEW (%s)\n", f.Dialect)
		_, _ = fmt.Fprintf(file, "-- Each table has a file: <table_name>%s\n", f.getFileExtension())
		for _, table := range sortedTables {
			_, _ = fmt.Fprintf(file, "-- %s%s\n", table.Name, referenceList(table, ","))
		}
	default:
		_, _ = fmt.Fprintf(file, "SCHEMA OVERVIEW\n")
		_, _ = fmt.Fprintf(file, "Each table has a file: <table_name>%s\n\n", f.getFileExtension())
		for _, table := range sortedTables {
			_, _ = fmt.Fprintf(file, "%s%s\n", table.Name, referenceList(table, ","))
		}
	}

	return nil
}

func referenceList(table *schema.Table, sep string) string {
	if len(table.Relations) == 0 {
		return ""
	}
	targets := []string{}
	for _, rel := range table.Relations {
		targets = append(targets, rel.TargetTable)
	}
	return fmt.Sprintf(" (references: %s)", strings.Join(targets, sep))
}

// writeTableFile writes a single table to its own file
func (f *MultiFileFormatter) writeTableFile(table *schema.Table, s *schema.Schema, statement string) error {
	filename := filepath.Join(f.OutputDir, table.Name+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	switch f.OutputFormat {
	case FormatSQL:
		_, err = fmt.Fprintln(file, RenderSpliced(table))
		return err
	case FormatStatements:
		_, err = fmt.Fprintln(file, statement)
		return err
	case FormatText:
		return NewTextFormatter(file).formatTable(table)
	}

	if err := NewMarkdownFormatter(file).FormatTable(table); err != nil {
		return err
	}

	incomingRels := f.findIncomingRelations(table.Name, s)
	if len(incomingRels) > 0 {
		_, _ = fmt.Fprintf(file, "### Referenced by\n\n")
		for _, rel := range incomingRels {
			_, _ = fmt.Fprintf(file, "- %s.%s → %s (%s)\n",
				rel.SourceTable, rel.SourceColumn,
				rel.TargetColumn,
				rel.Cardinality)
		}
		_, _ = fmt.Fprintln(file)
	}

	return nil
}

// IncomingRelation represents a relationship pointing to this table
type IncomingRelation struct {
	SourceTable  string
	SourceColumn string
	TargetTable  string
	TargetColumn string
	Cardinality  string
}

// findIncomingRelations finds all relations pointing to this table
func (f *MultiFileFormatter) findIncomingRelations(tableName string, s *schema.Schema) []IncomingRelation {
	var incoming []IncomingRelation

	for _, table := range s.Tables() {
		for _, rel := range table.Relations {
			if rel.TargetTable == tableName {
				source := rel.SourceColumn
				if source == "" {
					source = rel.Property
				}
				incoming = append(incoming, IncomingRelation{
					SourceTable:  table.Name,
					SourceColumn: source,
					TargetTable:  rel.TargetTable,
					TargetColumn: rel.TargetColumn,
					Cardinality:  rel.Cardinality,
				})
			}
		}
	}

	return incoming
}

func (f *MultiFileFormatter) getFileExtension() string {
	switch f.OutputFormat {
	case FormatMarkdown:
		return ".md"
	case FormatSQL, FormatStatements:
		return ".sql"
	default:
		return ".txt"
	}
}
