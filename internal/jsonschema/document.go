// Package jsonschema converts between field trees and JSON-Schema-shaped
// documents.
package jsonschema

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"

	"github.com/tordrt/schemagen/internal/schemaerr"
)

// Document is the JSON-Schema-shaped projection of a field tree
type Document struct {
	Title      string     `json:"title,omitempty"`
	Type       string     `json:"type,omitempty"`
	Properties Properties `json:"properties,omitempty"`
	Required   []string   `json:"required,omitempty"`
}

// Property is the schema of a single property.
//
// Pointer attributes are emitted only when set. Default is treated as absent
// when nil.
type Property struct {
	Type        string     `json:"type,omitempty"`
	Properties  Properties `json:"properties,omitempty"`
	Required    []string   `json:"required,omitempty"`
	Items       *Property  `json:"items,omitempty"`
	Minimum     *float64   `json:"minimum,omitempty"`
	Maximum     *float64   `json:"maximum,omitempty"`
	MinLength   *int       `json:"minLength,omitempty"`
	MaxLength   *int       `json:"maxLength,omitempty"`
	Pattern     *string    `json:"pattern,omitempty"`
	Enum        []any      `json:"enum,omitempty"`
	Description string     `json:"description,omitempty"`
	Default     any        `json:"default,omitempty"`
	Format      string     `json:"format,omitempty"`
	UniqueItems *bool      `json:"uniqueItems,omitempty"`
}

// NamedProperty is one entry of an ordered Properties list
type NamedProperty struct {
	Name   string
	Schema *Property
}

// Properties is an ordered name -> schema mapping. A nil Properties means the
// keyword is absent; an empty non-nil one encodes as {}.
type Properties []NamedProperty

// Get returns the schema registered under name, or nil.
func (p Properties) Get(name string) *Property {
	for _, np := range p {
		if np.Name == name {
			return np.Schema
		}
	}
	return nil
}

// Set replaces the schema of an existing name in place, or appends a new entry.
func (p *Properties) Set(name string, s *Property) {
	for i := range *p {
		if (*p)[i].Name == name {
			(*p)[i].Schema = s
			return
		}
	}
	*p = append(*p, NamedProperty{Name: name, Schema: s})
}

// Names returns the property names in declaration order.
func (p Properties) Names() []string {
	names := make([]string, 0, len(p))
	for _, np := range p {
		names = append(names, np.Name)
	}
	return names
}

// MarshalJSON writes the properties as an object, keeping declaration order.
func (p Properties) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, np := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(np.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		s := np.Schema
		if s == nil {
			s = &Property{}
		}
		val, err := s.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", np.Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping the order in which keys appear. A
// repeated key keeps its first position and takes the last value.
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return &schemaerr.InvalidSchemaError{Reason: "properties must be an object"}
	}

	props := Properties{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return &schemaerr.InvalidSchemaError{Reason: "property name must be a string"}
		}
		s := &Property{}
		if err := dec.Decode(s); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		props.Set(name, s)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = props
	return nil
}

// MarshalJSON writes the property with a stable keyword order.
func (s *Property) MarshalJSON() ([]byte, error) {
	w := objectWriter{}
	w.field("type", s.Type, s.Type != "")
	w.field("properties", s.Properties, s.Properties != nil)
	w.field("required", s.Required, s.Required != nil)
	w.field("items", s.Items, s.Items != nil)
	w.field("minimum", s.Minimum, s.Minimum != nil)
	w.field("maximum", s.Maximum, s.Maximum != nil)
	w.field("minLength", s.MinLength, s.MinLength != nil)
	w.field("maxLength", s.MaxLength, s.MaxLength != nil)
	w.field("pattern", s.Pattern, s.Pattern != nil)
	w.field("enum", s.Enum, s.Enum != nil)
	w.field("description", s.Description, s.Description != "")
	w.field("default", s.Default, s.Default != nil)
	w.field("format", s.Format, s.Format != "")
	w.field("uniqueItems", s.UniqueItems, s.UniqueItems != nil)
	return w.bytes()
}

// MarshalJSON writes the document with a stable keyword order.
func (d *Document) MarshalJSON() ([]byte, error) {
	w := objectWriter{}
	w.field("title", d.Title, d.Title != "")
	w.field("type", d.Type, d.Type != "")
	w.field("properties", d.Properties, d.Properties != nil)
	w.field("required", d.Required, d.Required != nil)
	return w.bytes()
}

// objectWriter builds a JSON object field by field, remembering the first error.
type objectWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

func (w *objectWriter) field(key string, value any, present bool) {
	if !present || w.err != nil {
		return
	}
	val, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	if w.n == 0 {
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	w.n++
	_, _ = fmt.Fprintf(&w.buf, "%q:", key)
	w.buf.Write(val)
}

func (w *objectWriter) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if w.n == 0 {
		return []byte("{}"), nil
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}

// Decode reads a schema document from JSON text. Syntax errors are returned
// as-is; values of the wrong kind are reported as InvalidSchemaError.
func Decode(data []byte) (*Document, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	root, ok := raw.(map[string]any)
	if !ok {
		return nil, &schemaerr.InvalidSchemaError{Reason: fmt.Sprintf("document must be an object, got %s", kindOf(raw))}
	}
	if err := checkKinds(root, ""); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		var invalid *schemaerr.InvalidSchemaError
		if errors.As(err, &invalid) {
			return nil, invalid
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &schemaerr.InvalidSchemaError{Reason: typeErr.Error()}
		}
		return nil, err
	}
	return &doc, nil
}

// keywordKinds lists the JSON kind each known keyword must have. Keywords
// not listed here, and null values, are accepted as they are.
var keywordKinds = map[string]string{
	"title":       "string",
	"type":        "string",
	"properties":  "object",
	"required":    "array",
	"items":       "object",
	"minimum":     "number",
	"maximum":     "number",
	"minLength":   "integer",
	"maxLength":   "integer",
	"pattern":     "string",
	"enum":        "array",
	"description": "string",
	"format":      "string",
	"uniqueItems": "boolean",
}

// checkKinds walks a generically decoded schema object and rejects known
// keywords holding a value of the wrong JSON kind.
func checkKinds(obj map[string]any, path string) error {
	for key, want := range keywordKinds {
		v, ok := obj[key]
		if !ok || v == nil {
			continue
		}
		if got := kindOf(v); got != want && (want != "number" || got != "integer") {
			return &schemaerr.InvalidSchemaError{
				Reason: fmt.Sprintf("%s must be %s, got %s", keywordPath(path, key), article(want), got),
			}
		}
	}

	if req, ok := obj["required"].([]any); ok {
		for _, name := range req {
			if _, ok := name.(string); !ok {
				return &schemaerr.InvalidSchemaError{
					Reason: fmt.Sprintf("%s must hold strings, got %s", keywordPath(path, "required"), kindOf(name)),
				}
			}
		}
	}
	if props, ok := obj["properties"].(map[string]any); ok {
		for name, v := range props {
			p := keywordPath(path, "properties."+name)
			if v == nil {
				continue
			}
			child, ok := v.(map[string]any)
			if !ok {
				return &schemaerr.InvalidSchemaError{Reason: fmt.Sprintf("%s must be an object, got %s", p, kindOf(v))}
			}
			if err := checkKinds(child, p); err != nil {
				return err
			}
		}
	}
	if items, ok := obj["items"].(map[string]any); ok {
		if err := checkKinds(items, keywordPath(path, "items")); err != nil {
			return err
		}
	}
	return nil
}

func keywordPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func kindOf(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case float64:
		if v == math.Trunc(v) {
			return "integer"
		}
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func article(kind string) string {
	switch kind {
	case "array", "object", "integer":
		return "an " + kind
	case "number", "string", "boolean":
		return "a " + kind
	}
	return kind
}

// Encode renders a document as JSON indented with two spaces.
func Encode(doc *Document) ([]byte, error) {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
