// Package field defines the editable field tree.
package field

import "fmt"

// Type is the logical type of a field
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeObject  Type = "object"
	TypeArray   Type = "array"
)

// Node represents one editable field of a data shape.
//
// An object node has any number of children with names unique among
// siblings; an array node has at most one child, the item template.
type Node struct {
	Name     string `json:"name" yaml:"name"`
	Type     Type   `json:"type" yaml:"type"`
	Required bool   `json:"required" yaml:"required"`
	Children []Node `json:"children,omitempty" yaml:"children,omitempty"`

	// Validation attributes
	Minimum     *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	MinLength   *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern     *string  `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Enum        []any    `json:"enum,omitempty" yaml:"enum,omitempty"`
	UniqueItems *bool    `json:"uniqueItems,omitempty" yaml:"uniqueItems,omitempty"`

	// Metadata
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Default     any    `json:"default,omitempty" yaml:"default,omitempty"`
	Format      string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Item returns the item template of an array node, or nil.
func (n *Node) Item() *Node {
	if n.Type != TypeArray || len(n.Children) == 0 {
		return nil
	}
	return &n.Children[0]
}

// Validate checks the sibling-uniqueness and single-item invariants of a tree.
func Validate(nodes []Node) error {
	return validate(nodes, "")
}

func validate(nodes []Node, path string) error {
	seen := make(map[string]bool, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		p := n.Name
		if path != "" {
			p = path + "." + n.Name
		}
		if seen[n.Name] {
			return fmt.Errorf("duplicate field name %q", p)
		}
		seen[n.Name] = true

		if n.Type == TypeArray && len(n.Children) > 1 {
			return fmt.Errorf("array field %q has %d item templates, want at most 1", p, len(n.Children))
		}
		if err := validate(n.Children, p); err != nil {
			return err
		}
	}
	return nil
}
