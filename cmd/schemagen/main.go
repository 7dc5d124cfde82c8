package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/tordrt/schemagen/internal/db"
	"github.com/tordrt/schemagen/internal/ddl"
	"github.com/tordrt/schemagen/internal/field"
	"github.com/tordrt/schemagen/internal/formatter"
	"github.com/tordrt/schemagen/internal/jsonschema"
	"github.com/tordrt/schemagen/internal/schema"
	"github.com/tordrt/schemagen/internal/yamlconv"
)

var (
	maxDepth   int
	outputFile string
	outputDir  string
	docFormat  string
	ddlFormat  string
	dialect    string
	title      string
	dbURL      string
	mysqlURL   string
	sqlitePath string
	verify     bool
)

var rootCmd = &cobra.Command{
	Use:   "schemagen",
	Short: "Generate JSON Schema and SQL DDL from a field tree",
	Long: `schemagen converts a tree of typed fields into a JSON Schema document and derives
CREATE TABLE statements for PostgreSQL, MySQL, or SQLite from that document.`,
	SilenceUsage: true,
}

var schemaCmd = &cobra.Command{
	Use:   "schema [fields-file]",
	Short: "Generate a JSON Schema document from a field tree",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSchema,
}

var importCmd = &cobra.Command{
	Use:   "import [schema-file]",
	Short: "Convert a JSON Schema document back into a field tree",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runImport,
}

var ddlCmd = &cobra.Command{
	Use:   "ddl [schema-file]",
	Short: "Generate CREATE TABLE statements from a JSON Schema document",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDDL,
}

var applyCmd = &cobra.Command{
	Use:   "apply [schema-file]",
	Short: "Create the tables derived from a JSON Schema document in a live database",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runApply,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "Maximum nesting depth (default: 32)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	schemaCmd.Flags().StringVar(&title, "title", "", "Document title, used as the root table name")
	schemaCmd.Flags().StringVarP(&docFormat, "format", "f", "json", "Output format: json or yaml")

	importCmd.Flags().StringVarP(&docFormat, "format", "f", "json", "Output format: json or yaml")

	ddlCmd.Flags().StringVarP(&dialect, "dialect", "D", "postgresql", "SQL dialect: "+ddl.DialectList())
	ddlCmd.Flags().StringVarP(&ddlFormat, "format", "f", formatter.FormatSQL, "Output format: sql, statements, text, or markdown")
	ddlCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for one file per table")
	ddlCmd.Flags().StringVar(&title, "title", "", "Root table name (overrides the document title)")

	applyCmd.Flags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection string")
	applyCmd.Flags().StringVar(&mysqlURL, "mysql-url", "", "MySQL connection string")
	applyCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite database file path")
	applyCmd.Flags().StringVar(&title, "title", "", "Root table name (overrides the document title)")
	applyCmd.Flags().BoolVar(&verify, "verify", false, "Check that every table exists after applying")

	rootCmd.AddCommand(schemaCmd, importCmd, ddlCmd, applyCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	var fields []field.Node
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to decode field tree: %w", err)
	}
	if err := field.Validate(fields); err != nil {
		return fmt.Errorf("invalid field tree: %w", err)
	}

	doc, err := jsonschema.Generate(fields, jsonschema.Options{Title: title, MaxDepth: maxDepth})
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	out, err := jsonschema.Encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	return writeDocument(cmd, out)
}

func runImport(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(cmd, args)
	if err != nil {
		return err
	}

	fields, err := jsonschema.Parse(doc, jsonschema.Options{MaxDepth: maxDepth})
	if err != nil {
		return fmt.Errorf("failed to import schema: %w", err)
	}

	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode field tree: %w", err)
	}
	return writeDocument(cmd, out)
}

func runDDL(cmd *cobra.Command, args []string) error {
	d, err := ddl.ParseDialect(dialect)
	if err != nil {
		return err
	}
	if outputDir != "" && outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	tables, err := buildTables(cmd, args, d)
	if err != nil {
		return err
	}

	// Multi-file output
	if outputDir != "" {
		multiFormatter := formatter.NewMultiFileFormatter(outputDir, ddlFormat, d)
		if err := multiFormatter.Format(tables); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return nil
	}

	return withOutput(cmd, func(w io.Writer) error {
		f, err := formatter.New(ddlFormat, w, d)
		if err != nil {
			return err
		}
		if err := f.Format(tables); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		if ddlFormat == formatter.FormatSQL {
			_, _ = fmt.Fprintln(w)
		}
		return nil
	})
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Validate database flags
	dbCount := 0
	if dbURL != "" {
		dbCount++
	}
	if mysqlURL != "" {
		dbCount++
	}
	if sqlitePath != "" {
		dbCount++
	}
	if dbCount == 0 {
		return fmt.Errorf("one of --db-url, --mysql-url, or --sqlite must be specified")
	}
	if dbCount > 1 {
		return fmt.Errorf("only one of --db-url, --mysql-url, or --sqlite can be specified")
	}

	var (
		d       ddl.Dialect
		connStr string
	)
	switch {
	case sqlitePath != "":
		d, connStr = ddl.SQLite, sqlitePath
	case mysqlURL != "":
		d, connStr = ddl.MySQL, strings.TrimPrefix(mysqlURL, "mysql://")
	default:
		d, connStr = ddl.Postgres, dbURL
	}

	tables, err := buildTables(cmd, args, d)
	if err != nil {
		return err
	}
	statements := formatter.Statements(tables, d)

	if err := db.Run(ctx, d, connStr, statements, verify); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "created %d tables\n", len(statements))
	return nil
}

func buildTables(cmd *cobra.Command, args []string, d ddl.Dialect) (*schema.Schema, error) {
	doc, err := readDocument(cmd, args)
	if err != nil {
		return nil, err
	}
	if title != "" {
		doc.Title = title
	}

	tables, err := ddl.NewGenerator(d, maxDepth).Generate(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to generate DDL: %w", err)
	}
	for _, w := range tables.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	return tables, nil
}

func readDocument(cmd *cobra.Command, args []string) (*jsonschema.Document, error) {
	data, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	return doc, nil
}

// readInput reads the named file, or stdin when no file or "-" is given.
// YAML files are converted to JSON with key order preserved.
func readInput(stdin io.Reader, args []string) ([]byte, error) {
	var (
		data []byte
		err  error
		name string
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		name = args[0]
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return yamlconv.ToJSON(data)
	}
	return data, nil
}

func writeDocument(cmd *cobra.Command, data []byte) error {
	switch docFormat {
	case "json":
	case "yaml":
		converted, err := yamlconv.FromJSON(data)
		if err != nil {
			return fmt.Errorf("failed to convert output to YAML: %w", err)
		}
		data = converted
	default:
		return fmt.Errorf("invalid format: %s (must be 'json' or 'yaml')", docFormat)
	}

	return withOutput(cmd, func(w io.Writer) error {
		if _, err := w.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			_, _ = fmt.Fprintln(w)
		}
		return nil
	})
}

func withOutput(cmd *cobra.Command, fn func(w io.Writer) error) error {
	if outputFile == "" {
		return fn(cmd.OutOrStdout())
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
		}
	}()
	return fn(f)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
