//go:build integration
// +build integration

package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tordrt/schemagen/internal/ddl"
	"github.com/tordrt/schemagen/internal/formatter"
	"github.com/tordrt/schemagen/internal/jsonschema"
)

func TestSQLiteApply(t *testing.T) {
	ctx := context.Background()

	client, err := NewSQLiteClient(ctx, filepath.Join(t.TempDir(), "apply.db"))
	if err != nil {
		t.Fatalf("Failed to connect to SQLite: %v", err)
	}
	defer client.Close(ctx)

	doc, err := jsonschema.Decode([]byte(`{
		"title": "person",
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"address": {"type": "object", "properties": {"city": {"type": "string"}}},
			"tags": {"type": "array", "items": {"type": "object", "properties": {"label": {"type": "string"}}}}
		}
	}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	s, err := ddl.NewGenerator(ddl.SQLite, 0).Generate(doc)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	statements := formatter.Statements(s, ddl.SQLite)

	if err := Apply(ctx, client, statements); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if err := Verify(ctx, client, statements); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	// Foreign keys are enforced: a dangling parent_id must be rejected.
	if err := client.Exec(ctx, "INSERT INTO tags_items (label, parent_id) VALUES ('x', 42)"); err == nil {
		t.Error("Expected foreign key violation")
	}
	if err := client.Exec(ctx, "INSERT INTO person (name) VALUES ('ada')"); err != nil {
		t.Errorf("Insert into person failed: %v", err)
	}
}

func TestSQLiteApplyDeclaredID(t *testing.T) {
	ctx := context.Background()

	client, err := NewSQLiteClient(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to SQLite: %v", err)
	}
	defer client.Close(ctx)

	doc, err := jsonschema.Decode([]byte(`{
		"title": "orders",
		"type": "object",
		"properties": {
			"id": {"type": "string"},
			"lines": {"type": "array", "items": {"type": "object", "properties": {"sku": {"type": "string"}}}}
		}
	}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	s, err := ddl.NewGenerator(ddl.SQLite, 0).Generate(doc)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if err := Apply(ctx, client, formatter.Statements(s, ddl.SQLite)); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if err := client.Exec(ctx, "INSERT INTO orders (id) VALUES ('o-1')"); err != nil {
		t.Fatalf("Insert into orders failed: %v", err)
	}
	if err := client.Exec(ctx, "INSERT INTO lines_items (sku, parent_id) VALUES ('abc', 'o-1')"); err != nil {
		t.Errorf("Insert into lines_items failed: %v", err)
	}
	if err := client.Exec(ctx, "INSERT INTO lines_items (sku, parent_id) VALUES ('abc', 'o-2')"); err == nil {
		t.Error("Expected foreign key violation")
	}
}

func TestRunSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "run.db")

	statements := []formatter.Statement{
		{Table: "parent", SQL: "CREATE TABLE parent (\n  id INTEGER PRIMARY KEY\n);"},
		{Table: "child", SQL: "CREATE TABLE child (\n  id INTEGER PRIMARY KEY,\n  parent_id INTEGER,\n  FOREIGN KEY (parent_id) REFERENCES parent(id)\n);"},
	}
	if err := Run(ctx, ddl.SQLite, path, statements, true); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	err := Run(ctx, ddl.SQLite, path, statements, true)
	if err == nil || !strings.Contains(err.Error(), "failed to create table parent") {
		t.Errorf("second Run() error = %v, want failure on parent", err)
	}
}

func TestSQLiteApplyTwiceFails(t *testing.T) {
	ctx := context.Background()

	client, err := NewSQLiteClient(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to SQLite: %v", err)
	}
	defer client.Close(ctx)

	statements := []formatter.Statement{{Table: "t", SQL: "CREATE TABLE t (\n  id INTEGER PRIMARY KEY\n);"}}
	if err := Apply(ctx, client, statements); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if err := Apply(ctx, client, statements); err == nil {
		t.Error("Expected second Apply() to fail on existing table")
	}
}
