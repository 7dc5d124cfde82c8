// Package schemaerr holds the error and warning types shared by the schema
// codec and the DDL generator.
package schemaerr

import (
	"fmt"
	"strings"
)

// DefaultMaxDepth is the nesting limit applied when no explicit limit is set.
const DefaultMaxDepth = 32

// InvalidSchemaError reports a schema document whose shape cannot be turned
// into fields, most commonly a root that is not object-typed.
type InvalidSchemaError struct {
	Reason string
}

func (e *InvalidSchemaError) Error() string {
	return "invalid schema: " + e.Reason
}

// DepthExceededError reports recursion past the configured nesting limit.
// Path is the dotted property path at which the limit tripped.
type DepthExceededError struct {
	Limit int
	Path  string
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("maximum nesting depth %d exceeded at %q", e.Limit, e.Path)
}

// UnknownTypeWarning records a column whose logical type was not recognized
// and was mapped to the TEXT fallback. It is never returned as an error.
type UnknownTypeWarning struct {
	Table  string
	Column string
	Type   string
}

func (w UnknownTypeWarning) String() string {
	return fmt.Sprintf("unknown type %q for column %s.%s, using TEXT", w.Type, w.Table, w.Column)
}

// Depth tracks the current recursion depth and the property path leading to it.
type Depth struct {
	limit int
	path  []string
}

// NewDepth returns a tracker with the given limit; non-positive limits fall
// back to DefaultMaxDepth.
func NewDepth(limit int) Depth {
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	return Depth{limit: limit}
}

// Enter descends one level into name. It fails once the number of nested
// levels exceeds the limit.
func (d Depth) Enter(name string) (Depth, error) {
	path := make([]string, len(d.path), len(d.path)+1)
	copy(path, d.path)
	next := Depth{limit: d.limit, path: append(path, name)}
	if len(next.path) > d.limit {
		return next, &DepthExceededError{Limit: d.limit, Path: next.Path()}
	}
	return next, nil
}

// Path returns the dotted path of the current level.
func (d Depth) Path() string {
	return strings.Join(d.path, ".")
}
