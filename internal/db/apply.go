package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/schemagen/internal/ddl"
	"github.com/tordrt/schemagen/internal/formatter"
)

// Run connects to the database, applies the statements and, when verify is
// set, checks that every table exists. The connection is always closed.
func Run(ctx context.Context, dialect ddl.Dialect, connStr string, statements []formatter.Statement, verify bool) (err error) {
	client, err := Connect(ctx, dialect, connStr)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := client.Close(ctx); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s connection: %w", dialect, cerr)
		}
	}()

	if err := Apply(ctx, client, statements); err != nil {
		return err
	}
	if verify {
		return Verify(ctx, client, statements)
	}
	return nil
}

// Apply executes the statements in order, stopping at the first failure.
// Statements already executed are not rolled back.
func Apply(ctx context.Context, exec Execer, statements []formatter.Statement) error {
	for _, stmt := range statements {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := exec.Exec(ctx, stmt.SQL); err != nil {
			return fmt.Errorf("failed to create table %s: %w", stmt.Table, err)
		}
	}
	return nil
}

// Verify checks that every table the statements create exists in the database
func Verify(ctx context.Context, client Client, statements []formatter.Statement) error {
	tables, err := client.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	existing := make(map[string]bool, len(tables))
	for _, t := range tables {
		existing[strings.ToLower(t)] = true
	}

	var missing []string
	for _, stmt := range statements {
		if !existing[strings.ToLower(stmt.Table)] {
			missing = append(missing, stmt.Table)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("tables not found after apply: %s", strings.Join(missing, ", "))
	}
	return nil
}
