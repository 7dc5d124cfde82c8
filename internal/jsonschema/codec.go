package jsonschema

import (
	"fmt"
	"slices"

	"github.com/tordrt/schemagen/internal/field"
	"github.com/tordrt/schemagen/internal/schemaerr"
)

// ItemsName is the name given to the item template child of every parsed
// array field, whatever the field was called before it was generated.
const ItemsName = "items"

// Options configures document generation and parsing
type Options struct {
	// Title is set on generated documents; it becomes the DDL table name.
	Title string

	// MaxDepth bounds the field nesting depth. Zero means schemaerr.DefaultMaxDepth.
	MaxDepth int
}

// Generate projects an ordered field tree onto a schema document.
func Generate(fields []field.Node, opts Options) (*Document, error) {
	doc := &Document{
		Title:      opts.Title,
		Type:       string(field.TypeObject),
		Properties: Properties{},
		Required:   []string{},
	}

	depth := schemaerr.NewDepth(opts.MaxDepth)
	for i := range fields {
		f := &fields[i]
		s, err := generateProperty(f, depth)
		if err != nil {
			return nil, err
		}
		doc.Properties.Set(f.Name, s)
		if f.Required {
			doc.Required = append(doc.Required, f.Name)
		}
	}

	return doc, nil
}

func generateProperty(f *field.Node, parent schemaerr.Depth) (*Property, error) {
	depth, err := parent.Enter(f.Name)
	if err != nil {
		return nil, err
	}

	s := &Property{Type: string(f.Type)}

	switch {
	case f.Type == field.TypeObject && f.Children != nil:
		s.Properties = Properties{}
		s.Required = []string{}
		for i := range f.Children {
			child := &f.Children[i]
			cs, err := generateProperty(child, depth)
			if err != nil {
				return nil, err
			}
			s.Properties.Set(child.Name, cs)
			if child.Required {
				s.Required = append(s.Required, child.Name)
			}
		}
	case f.Item() != nil:
		items, err := generateProperty(f.Item(), depth)
		if err != nil {
			return nil, err
		}
		s.Items = items
	}

	s.Minimum = f.Minimum
	s.Maximum = f.Maximum
	s.MinLength = f.MinLength
	s.MaxLength = f.MaxLength
	s.Pattern = f.Pattern
	s.Enum = f.Enum
	s.Description = f.Description
	s.Default = f.Default
	s.Format = f.Format
	s.UniqueItems = f.UniqueItems

	return s, nil
}

// Parse rebuilds the field tree described by a schema document.
//
// Array item schemas become a single child named ItemsName whose Required
// flag is always false.
func Parse(doc *Document, opts Options) ([]field.Node, error) {
	if doc == nil || doc.Type != string(field.TypeObject) {
		got := ""
		if doc != nil {
			got = doc.Type
		}
		return nil, &schemaerr.InvalidSchemaError{
			Reason: fmt.Sprintf("root schema must be an object, got type %q", got),
		}
	}

	return parseProperties(doc.Properties, doc.Required, schemaerr.NewDepth(opts.MaxDepth))
}

func parseProperties(props Properties, required []string, depth schemaerr.Depth) ([]field.Node, error) {
	fields := make([]field.Node, 0, len(props))
	for _, np := range props {
		f, err := parseProperty(np.Name, np.Schema, slices.Contains(required, np.Name), depth)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func parseProperty(name string, s *Property, required bool, parent schemaerr.Depth) (field.Node, error) {
	depth, err := parent.Enter(name)
	if err != nil {
		return field.Node{}, err
	}
	if s == nil {
		s = &Property{}
	}

	f := field.Node{
		Name:        name,
		Type:        field.Type(s.Type),
		Required:    required,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
		MinLength:   s.MinLength,
		MaxLength:   s.MaxLength,
		Pattern:     s.Pattern,
		Enum:        s.Enum,
		UniqueItems: s.UniqueItems,
		Description: s.Description,
		Default:     s.Default,
		Format:      s.Format,
	}

	switch {
	case f.Type == field.TypeObject && s.Properties != nil:
		children, err := parseProperties(s.Properties, s.Required, depth)
		if err != nil {
			return field.Node{}, err
		}
		f.Children = children
	case f.Type == field.TypeArray && s.Items != nil:
		item, err := parseProperty(ItemsName, s.Items, false, depth)
		if err != nil {
			return field.Node{}, err
		}
		f.Children = []field.Node{item}
	}

	return f, nil
}
