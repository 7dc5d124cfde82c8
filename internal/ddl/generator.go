package ddl

import (
	"github.com/tordrt/schemagen/internal/jsonschema"
	"github.com/tordrt/schemagen/internal/schema"
	"github.com/tordrt/schemagen/internal/schemaerr"
)

// DefaultTableName names the root table of an untitled document.
const DefaultTableName = "table_name"

// ParentColumn is added to every table derived from an array of objects.
const ParentColumn = "parent_id"

// Generator derives table definitions for one dialect
type Generator struct {
	dialect  Dialect
	maxDepth int
}

// NewGenerator creates a generator. A non-positive maxDepth selects
// schemaerr.DefaultMaxDepth.
func NewGenerator(dialect Dialect, maxDepth int) *Generator {
	return &Generator{dialect: dialect, maxDepth: maxDepth}
}

// Generate derives the root table of doc and, recursively, one subtable per
// nested object and per array of objects.
func (g *Generator) Generate(doc *jsonschema.Document) (*schema.Schema, error) {
	name := DefaultTableName
	var props jsonschema.Properties
	if doc != nil {
		if doc.Title != "" {
			name = doc.Title
		}
		props = doc.Properties
	}

	out := &schema.Schema{}
	root, err := g.buildTable(name, props, schemaerr.NewDepth(g.maxDepth), out)
	if err != nil {
		return nil, err
	}
	out.Root = root
	return out, nil
}

func (g *Generator) buildTable(name string, props jsonschema.Properties, depth schemaerr.Depth, out *schema.Schema) (*schema.Table, error) {
	table := &schema.Table{Name: name}

	for _, np := range props {
		if err := g.addProperty(table, np.Name, np.Schema, depth, out); err != nil {
			return nil, err
		}
	}

	return table, nil
}

func (g *Generator) addProperty(table *schema.Table, name string, prop *jsonschema.Property, parent schemaerr.Depth, out *schema.Schema) error {
	depth, err := parent.Enter(name)
	if err != nil {
		return err
	}
	if prop == nil {
		prop = &jsonschema.Property{}
	}

	switch {
	case prop.Type == "object" && prop.Properties != nil:
		// One-to-one: key column here, referenced table derived from the object.
		key := name + "_id"
		table.Members = append(table.Members, schema.Member{Column: &schema.Column{
			Name:        key,
			Type:        g.dialect.KeyType(),
			LogicalType: "integer",
			ForeignKey:  true,
		}})
		table.Relations = append(table.Relations, schema.Relation{
			Property:     name,
			SourceColumn: key,
			TargetTable:  name,
			TargetColumn: "id",
			Cardinality:  schema.OneToOne,
		})

		nested, err := g.buildTable(name, prop.Properties, depth, out)
		if err != nil {
			return err
		}
		table.Members = append(table.Members, schema.Member{Subtable: &schema.Subtable{
			Kind:     schema.SubtableNested,
			Property: name,
			Table:    nested,
		}})

	case prop.Type == "array" && prop.Items != nil && prop.Items.Type == "object":
		// One-to-many: no column here, the items table points back via parent_id.
		itemsName := name + "_items"
		table.Relations = append(table.Relations, schema.Relation{
			Property:     name,
			TargetTable:  itemsName,
			TargetColumn: ParentColumn,
			Cardinality:  schema.OneToMany,
		})

		itemProps := make(jsonschema.Properties, len(prop.Items.Properties))
		copy(itemProps, prop.Items.Properties)
		itemProps.Set(ParentColumn, &jsonschema.Property{Type: "integer"})

		// The item schema is a level of its own, as in the parsed field tree.
		itemDepth, err := depth.Enter(jsonschema.ItemsName)
		if err != nil {
			return err
		}
		items, err := g.buildTable(itemsName, itemProps, itemDepth, out)
		if err != nil {
			return err
		}
		table.Members = append(table.Members, schema.Member{Subtable: &schema.Subtable{
			Kind:     schema.SubtableItems,
			Property: name,
			Table:    items,
		}})

	default:
		if !IsKnownType(prop.Type) {
			out.Warnings = append(out.Warnings, schemaerr.UnknownTypeWarning{
				Table:  table.Name,
				Column: name,
				Type:   prop.Type,
			})
		}
		table.Members = append(table.Members, schema.Member{Column: &schema.Column{
			Name:        name,
			Type:        g.dialect.ColumnType(prop.Type, prop.Format),
			LogicalType: prop.Type,
		}})
	}

	return nil
}
