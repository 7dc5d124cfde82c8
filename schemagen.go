// Package schemagen turns a tree of typed fields into a JSON Schema document
// and into CREATE TABLE statements for PostgreSQL, MySQL, and SQLite.
//
// The field tree is the only stateful input. Schema documents and DDL are
// projections recomputed from it on every call, so they never go stale.
//
// # Quick Start
//
//	doc, err := schemagen.GenerateSchema(fields, &schemagen.Options{Title: "person"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	sql, err := schemagen.GenerateDDL(doc, schemagen.Postgres, nil)
//
// Importing goes the other way:
//
//	fields, err := schemagen.ParseSchemaJSON(data, nil)
//
// # Round Trip
//
// ParseSchema(GenerateSchema(F)) reproduces the name, type, required flag,
// and validation attributes of every field in F, except that an array's item
// template is always renamed to "items".
//
// # Nested Data
//
// Object properties with their own properties become separate tables linked
// by a "<name>_id" foreign key. Arrays of objects become "<name>_items"
// tables with a parent_id column. The legacy text form splices these tables
// into their parent's statement; FormatStatements renders them as separate,
// executable statements instead.
package schemagen

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tordrt/schemagen/internal/db"
	"github.com/tordrt/schemagen/internal/ddl"
	"github.com/tordrt/schemagen/internal/field"
	"github.com/tordrt/schemagen/internal/formatter"
	"github.com/tordrt/schemagen/internal/jsonschema"
	"github.com/tordrt/schemagen/internal/schema"
	"github.com/tordrt/schemagen/internal/schemaerr"
)

// Re-exported types so callers never import internal packages.
type (
	FieldNode  = field.Node
	FieldType  = field.Type
	Document   = jsonschema.Document
	Property   = jsonschema.Property
	Properties = jsonschema.Properties
	Dialect    = ddl.Dialect
	Tables     = schema.Schema

	InvalidSchemaError = schemaerr.InvalidSchemaError
	DepthExceededError = schemaerr.DepthExceededError
	UnknownTypeWarning = schemaerr.UnknownTypeWarning
)

// Supported dialects
const (
	Postgres = ddl.Postgres
	MySQL    = ddl.MySQL
	SQLite   = ddl.SQLite
)

// Field types
const (
	TypeString  = field.TypeString
	TypeNumber  = field.TypeNumber
	TypeBoolean = field.TypeBoolean
	TypeObject  = field.TypeObject
	TypeArray   = field.TypeArray
)

// DefaultMaxDepth is the nesting limit used when Options.MaxDepth is zero.
const DefaultMaxDepth = schemaerr.DefaultMaxDepth

// Options configures generation and parsing.
//
// All fields are optional. If not specified:
//   - Title: generated documents carry no title and DDL uses "table_name"
//   - MaxDepth: DefaultMaxDepth (32)
type Options struct {
	// Title is written to generated documents and names the root table.
	Title string

	// MaxDepth bounds the nesting depth of fields and properties. Exceeding
	// it fails the call with a *DepthExceededError.
	MaxDepth int

	// Format selects the DDL text rendering used by GenerateDDL:
	// "sql" (default, nested tables spliced inline), "statements",
	// "text", or "markdown".
	Format string
}

func (o *Options) orDefault() *Options {
	if o == nil {
		return &Options{}
	}
	return o
}

func (o *Options) codec() jsonschema.Options {
	return jsonschema.Options{Title: o.Title, MaxDepth: o.MaxDepth}
}

// ParseDialect resolves a dialect name such as "postgres" or "sqlite3".
func ParseDialect(name string) (Dialect, error) {
	return ddl.ParseDialect(name)
}

// GenerateSchema projects an ordered field tree onto a schema document.
//
// The document's required list holds exactly the names of fields marked
// required, in field order. Optional attributes are emitted only when set.
//
// Returns a *DepthExceededError if the tree nests deeper than MaxDepth.
func GenerateSchema(fields []FieldNode, opts *Options) (*Document, error) {
	return jsonschema.Generate(fields, opts.orDefault().codec())
}

// ParseSchema rebuilds the field tree described by doc.
//
// Returns a *InvalidSchemaError if the root is not object-typed and a
// *DepthExceededError if properties nest deeper than MaxDepth. No fields are
// returned on error.
func ParseSchema(doc *Document, opts *Options) ([]FieldNode, error) {
	return jsonschema.Parse(doc, opts.orDefault().codec())
}

// ParseSchemaJSON decodes JSON text and parses the resulting document.
//
// The text is assumed to be valid JSON; syntax errors are returned unwrapped
// from the decoder. A value of the wrong shape yields *InvalidSchemaError.
func ParseSchemaJSON(data []byte, opts *Options) ([]FieldNode, error) {
	doc, err := jsonschema.Decode(data)
	if err != nil {
		return nil, err
	}
	return ParseSchema(doc, opts)
}

// EncodeSchema renders a document as JSON indented with two spaces, the form
// used for display and clipboard export.
func EncodeSchema(doc *Document) ([]byte, error) {
	return jsonschema.Encode(doc)
}

// BuildTables derives the structured table definitions of doc for dialect.
//
// Unrecognized property types are mapped to TEXT and reported in the
// result's Warnings.
func BuildTables(doc *Document, dialect Dialect, opts *Options) (*Tables, error) {
	opts = opts.orDefault()
	return ddl.NewGenerator(dialect, opts.MaxDepth).Generate(doc)
}

// GenerateDDL renders the DDL text of doc for dialect.
//
// With the default format the result is a single CREATE TABLE statement named
// after the document title (or "table_name"), with subordinate tables spliced
// in as adjacent text. Nothing is returned on error.
func GenerateDDL(doc *Document, dialect Dialect, opts *Options) (string, error) {
	opts = opts.orDefault()
	tables, err := BuildTables(doc, dialect, opts)
	if err != nil {
		return "", err
	}

	format := opts.Format
	if format == "" {
		format = formatter.FormatSQL
	}

	var buf bytes.Buffer
	f, err := formatter.New(format, &buf, dialect)
	if err != nil {
		return "", err
	}
	if err := f.Format(tables); err != nil {
		return "", fmt.Errorf("failed to format DDL: %w", err)
	}
	return buf.String(), nil
}

// Apply creates every table derived from doc in a live database.
//
// The dialect is taken from the URL scheme (postgres://, mysql://, sqlite://).
// Tables are created one statement at a time in dependency order; the first
// failure stops the run and earlier tables are left in place.
func Apply(ctx context.Context, databaseURL string, doc *Document, opts *Options) error {
	dialect, connStr, err := db.ParseDatabaseURL(databaseURL)
	if err != nil {
		return err
	}

	tables, err := BuildTables(doc, dialect, opts)
	if err != nil {
		return err
	}
	return db.Run(ctx, dialect, connStr, formatter.Statements(tables, dialect), true)
}
