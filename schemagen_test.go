package schemagen

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func ptr[T any](v T) *T { return &v }

func TestGenerateDDLPerson(t *testing.T) {
	fields := []FieldNode{
		{Name: "name", Type: TypeString, Required: true},
		{Name: "age", Type: "integer"},
	}

	doc, err := GenerateSchema(fields, &Options{Title: "person"})
	if err != nil {
		t.Fatalf("GenerateSchema() error = %v", err)
	}

	got, err := GenerateDDL(doc, Postgres, nil)
	if err != nil {
		t.Fatalf("GenerateDDL() error = %v", err)
	}

	want := "CREATE TABLE person (\nname TEXT,\nage INTEGER,\n\n);"
	if got != want {
		t.Errorf("GenerateDDL() = %q, want %q", got, want)
	}
	if strings.Contains(got, "FOREIGN KEY") {
		t.Error("Expected no foreign key section")
	}
}

func TestGenerateDDLNestedAddress(t *testing.T) {
	fields := []FieldNode{
		{Name: "address", Type: TypeObject, Children: []FieldNode{{Name: "city", Type: TypeString}}},
	}
	doc, err := GenerateSchema(fields, &Options{Title: "person"})
	if err != nil {
		t.Fatalf("GenerateSchema() error = %v", err)
	}

	got, err := GenerateDDL(doc, Postgres, nil)
	if err != nil {
		t.Fatalf("GenerateDDL() error = %v", err)
	}

	for _, want := range []string{
		"address_id INTEGER,",
		"FOREIGN KEY (address_id) REFERENCES address(id)",
		"CREATE TABLE address (\ncity TEXT,",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected DDL to contain %q, got:\n%s", want, got)
		}
	}
}

func TestGenerateDDLScalarArray(t *testing.T) {
	fields := []FieldNode{
		{Name: "tags", Type: TypeArray, Children: []FieldNode{{Name: "tag", Type: TypeString}}},
	}
	doc, err := GenerateSchema(fields, nil)
	if err != nil {
		t.Fatalf("GenerateSchema() error = %v", err)
	}

	tables, err := BuildTables(doc, Postgres, nil)
	if err != nil {
		t.Fatalf("BuildTables() error = %v", err)
	}
	if n := len(tables.Tables()); n != 1 {
		t.Errorf("BuildTables() derived %d tables, want 1", n)
	}

	got, err := GenerateDDL(doc, Postgres, nil)
	if err != nil {
		t.Fatalf("GenerateDDL() error = %v", err)
	}
	if want := "CREATE TABLE table_name (\ntags TEXT,\n\n);"; got != want {
		t.Errorf("GenerateDDL() = %q, want %q", got, want)
	}
}

func TestGenerateDDLDialects(t *testing.T) {
	fields := []FieldNode{
		{Name: "name", Type: TypeString},
		{Name: "profile", Type: TypeObject, Children: []FieldNode{{Name: "bio", Type: TypeString}}},
	}
	doc, err := GenerateSchema(fields, &Options{Title: "user"})
	if err != nil {
		t.Fatalf("GenerateSchema() error = %v", err)
	}

	mysql, err := GenerateDDL(doc, MySQL, nil)
	if err != nil {
		t.Fatalf("GenerateDDL(mysql) error = %v", err)
	}
	sqlite, err := GenerateDDL(doc, SQLite, nil)
	if err != nil {
		t.Fatalf("GenerateDDL(sqlite) error = %v", err)
	}

	if !strings.Contains(mysql, "name VARCHAR(255),") || !strings.Contains(sqlite, "name TEXT,") {
		t.Errorf("string columns differ unexpectedly:\n%s\n---\n%s", mysql, sqlite)
	}
	if !strings.Contains(mysql, "profile_id INT,") || !strings.Contains(sqlite, "profile_id INTEGER,") {
		t.Errorf("key columns differ unexpectedly:\n%s\n---\n%s", mysql, sqlite)
	}

	// Same structure once the type keywords are normalized.
	normalize := strings.NewReplacer("VARCHAR(255)", "T", "TEXT", "T", "INTEGER", "I", "INT", "I")
	if diff := cmp.Diff(normalize.Replace(mysql), normalize.Replace(sqlite)); diff != "" {
		t.Errorf("structure mismatch (-mysql +sqlite):\n%s", diff)
	}
}

func TestGenerateDDLStatementsFormat(t *testing.T) {
	doc, err := GenerateSchema([]FieldNode{{Name: "name", Type: TypeString}}, &Options{Title: "person"})
	if err != nil {
		t.Fatalf("GenerateSchema() error = %v", err)
	}

	got, err := GenerateDDL(doc, SQLite, &Options{Format: "statements"})
	if err != nil {
		t.Fatalf("GenerateDDL() error = %v", err)
	}
	want := "CREATE TABLE person (\n  id INTEGER PRIMARY KEY,\n  name TEXT\n);\n"
	if got != want {
		t.Errorf("GenerateDDL() = %q, want %q", got, want)
	}

	if _, err := GenerateDDL(doc, SQLite, &Options{Format: "pdf"}); err == nil {
		t.Error("GenerateDDL() with unknown format succeeded, want error")
	}
}

func TestParseSchemaJSONInvalidRoot(t *testing.T) {
	fields, err := ParseSchemaJSON([]byte(`{"type":"string"}`), nil)
	var invalid *InvalidSchemaError
	if !errors.As(err, &invalid) {
		t.Fatalf("ParseSchemaJSON() error = %v, want InvalidSchemaError", err)
	}
	if len(fields) != 0 {
		t.Errorf("ParseSchemaJSON() returned %d fields, want 0", len(fields))
	}
}

func TestRoundTrip(t *testing.T) {
	fields := []FieldNode{
		{Name: "email", Type: TypeString, Required: true, Format: "email", Pattern: ptr(".+@.+")},
		{Name: "score", Type: TypeNumber, Minimum: ptr(0.0), Maximum: ptr(10.0)},
		{Name: "tags", Type: TypeArray, UniqueItems: ptr(true), Children: []FieldNode{
			{Name: "tag", Type: TypeString, Enum: []any{"a", "b"}},
		}},
		{Name: "owner", Type: TypeObject, Required: true, Children: []FieldNode{
			{Name: "id", Type: TypeNumber, Required: true},
		}},
	}

	doc, err := GenerateSchema(fields, nil)
	if err != nil {
		t.Fatalf("GenerateSchema() error = %v", err)
	}
	data, err := EncodeSchema(doc)
	if err != nil {
		t.Fatalf("EncodeSchema() error = %v", err)
	}
	parsed, err := ParseSchemaJSON(data, nil)
	if err != nil {
		t.Fatalf("ParseSchemaJSON() error = %v", err)
	}

	want := make([]FieldNode, len(fields))
	copy(want, fields)
	want[2].Children = []FieldNode{{Name: "items", Type: TypeString, Enum: []any{"a", "b"}}}

	if diff := cmp.Diff(want, parsed, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDepthExceeded(t *testing.T) {
	node := FieldNode{Name: "leaf", Type: TypeString}
	for i := 0; i < 3; i++ {
		node = FieldNode{Name: "n", Type: TypeObject, Children: []FieldNode{node}}
	}

	_, err := GenerateSchema([]FieldNode{node}, &Options{MaxDepth: 3})
	var depthErr *DepthExceededError
	if !errors.As(err, &depthErr) {
		t.Fatalf("GenerateSchema() error = %v, want DepthExceededError", err)
	}

	doc, err := GenerateSchema([]FieldNode{node}, nil)
	if err != nil {
		t.Fatalf("GenerateSchema() error = %v", err)
	}
	if _, err := GenerateDDL(doc, Postgres, &Options{MaxDepth: 3}); !errors.As(err, &depthErr) {
		t.Errorf("GenerateDDL() error = %v, want DepthExceededError", err)
	}
	if _, err := ParseSchema(doc, &Options{MaxDepth: 3}); !errors.As(err, &depthErr) {
		t.Errorf("ParseSchema() error = %v, want DepthExceededError", err)
	}
}

func TestBuildTablesUnknownType(t *testing.T) {
	doc, err := GenerateSchema([]FieldNode{{Name: "blob", Type: "binary"}}, &Options{Title: "files"})
	if err != nil {
		t.Fatalf("GenerateSchema() error = %v", err)
	}

	tables, err := BuildTables(doc, MySQL, nil)
	if err != nil {
		t.Fatalf("BuildTables() error = %v", err)
	}
	want := []UnknownTypeWarning{{Table: "files", Column: "blob", Type: "binary"}}
	if diff := cmp.Diff(want, tables.Warnings); diff != "" {
		t.Errorf("Warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("postgres")
	if err != nil || d != Postgres {
		t.Errorf("ParseDialect(postgres) = %v, %v", d, err)
	}
	if _, err := ParseDialect("mssql"); err == nil {
		t.Error("ParseDialect(mssql) succeeded, want error")
	}
}
