// Package ddl derives CREATE TABLE definitions from schema documents.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect selects the SQL flavour of the generated DDL
type Dialect string

const (
	Postgres Dialect = "postgresql"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

// fallbackType is used for any logical type a dialect has no entry for.
const fallbackType = "TEXT"

// dateTimeKey is the lookup key for strings carrying format=date-time.
const dateTimeKey = "string:date-time"

// dialectTypes is everything the generator needs to know about a dialect.
type dialectTypes struct {
	columns    map[string]string
	keyType    string
	primaryKey string
}

// dialects is indexed by dialect, then by logical type.
var dialects = map[Dialect]dialectTypes{
	Postgres: {
		columns: map[string]string{
			"string":    "TEXT",
			dateTimeKey: "TIMESTAMP",
			"number":    "NUMERIC",
			"integer":   "INTEGER",
			"boolean":   "BOOLEAN",
		},
		keyType:    "INTEGER",
		primaryKey: "SERIAL PRIMARY KEY",
	},
	MySQL: {
		columns: map[string]string{
			"string":    "VARCHAR(255)",
			dateTimeKey: "DATETIME",
			"number":    "DECIMAL",
			"integer":   "INT",
			"boolean":   "BOOLEAN",
		},
		keyType:    "INT",
		primaryKey: "INT AUTO_INCREMENT PRIMARY KEY",
	},
	SQLite: {
		columns: map[string]string{
			"string":  "TEXT",
			"number":  "NUMERIC",
			"integer": "NUMERIC",
			"boolean": "INTEGER",
		},
		keyType:    "INTEGER",
		primaryKey: "INTEGER PRIMARY KEY",
	},
}

// knownTypes are the logical types that never produce an unknown-type warning.
var knownTypes = map[string]bool{
	"string":  true,
	"number":  true,
	"integer": true,
	"boolean": true,
	"object":  true,
	"array":   true,
}

// ParseDialect resolves a dialect name, accepting common aliases.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgresql", "postgres", "pg":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported dialect: %s (must be one of %s)", name, DialectList())
	}
}

// Dialects lists the supported dialects
func Dialects() []Dialect {
	return []Dialect{Postgres, MySQL, SQLite}
}

// DialectList joins the supported dialect names for help and error text.
func DialectList() string {
	names := make([]string, 0, len(Dialects()))
	for _, d := range Dialects() {
		names = append(names, string(d))
	}
	return strings.Join(names, ", ")
}

func (d Dialect) String() string {
	return string(d)
}

// ColumnType maps a logical type and format to the dialect's column keyword.
// Unrecognized types, and unknown dialects, map to TEXT.
func (d Dialect) ColumnType(logicalType, format string) string {
	types, ok := dialects[d]
	if !ok {
		return fallbackType
	}
	if logicalType == "string" && format == "date-time" {
		if t, ok := types.columns[dateTimeKey]; ok {
			return t
		}
	}
	if t, ok := types.columns[logicalType]; ok {
		return t
	}
	return fallbackType
}

// KeyType is the integer type used for foreign key columns.
func (d Dialect) KeyType() string {
	if types, ok := dialects[d]; ok {
		return types.keyType
	}
	return "INTEGER"
}

// PrimaryKey is the column definition of a surrogate id column.
func (d Dialect) PrimaryKey() string {
	if types, ok := dialects[d]; ok {
		return types.primaryKey
	}
	return "INTEGER PRIMARY KEY"
}

// IsKnownType reports whether logicalType is one the generator recognizes.
func IsKnownType(logicalType string) bool {
	return knownTypes[logicalType]
}
