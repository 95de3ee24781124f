// Package tables renders schema nodes as markdown property tables.
package tables

import (
	"fmt"
	"strings"

	"github.com/cubahno/oasdocs/internal/markdown"
	"github.com/cubahno/oasdocs/internal/refs"
	"github.com/cubahno/oasdocs/internal/types"
	"github.com/cubahno/oasdocs/pkg/schema"
)

const (
	restRowName = "...rest"
	oneOfTitle  = "Or value from:"
)

// Result is a rendered table with the identities it links to.
// TableRefs lists every identity the table links to,
// OneOfRefs the ones that are alternatives of the schema itself.
// Rendering each of them once is up to the caller.
type Result struct {
	Content   string
	TableRefs []string
	OneOfRefs []string
}

// Row is a single table row.
type Row struct {
	Name        string
	Type        string
	Description string
}

// RowData is the rendered type and description of a value
// with the identity the row links to, if any.
type RowData struct {
	Type        string
	Description string

	// Ref is a named schema rendered in its own table.
	Ref string

	// RuntimeRef is an inline schema promoted to its own table.
	RuntimeRef string
}

// Builder renders tables within a resolution context.
type Builder struct {
	refs *refs.Resolver
}

// New creates a table builder.
func New(resolver *refs.Resolver) *Builder {
	return &Builder{refs: resolver}
}

// FromSchema renders the table of a schema node.
// Enums become a two-column type table, everything else a property table.
// Arrays and scalars have no rows, their content is empty.
func (b *Builder) FromSchema(node *schema.Schema) (*Result, error) {
	merged, err := b.refs.Merge(node)
	if err != nil {
		return nil, err
	}

	if len(merged.Enum) > 0 && len(merged.Properties) == 0 {
		content := markdown.Table([][]string{
			{"Type", "Description"},
			{types.Label(types.Infer(merged)), types.ComplexDescription("", merged)},
		})
		return &Result{Content: content}, nil
	}

	if types.Infer(merged) == types.Array {
		if _, err := merged.ArrayItems(); err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
	}

	rows, tableRefs, err := b.Rows(node)
	if err != nil {
		return nil, err
	}

	res := &Result{TableRefs: types.SliceUnique(tableRefs)}
	if len(rows) > 0 {
		data := [][]string{{"Name", "Type", "Description"}}
		for _, row := range rows {
			data = append(data, []string{row.Name, row.Type, row.Description})
		}
		res.Content = markdown.Table(data)
	}

	if len(merged.OneOf) > 0 {
		branches, err := b.oneOfBranches(merged, b.tableRef(node, merged))
		if err != nil {
			return nil, err
		}
		var oneOfRefs []string
		for _, branch := range branches {
			if name, ok := b.refs.Find(branch); ok {
				oneOfRefs = append(oneOfRefs, name)
			}
		}
		res.OneOfRefs = types.SliceUnique(oneOfRefs)
		res.TableRefs = types.SliceUnique(append(res.TableRefs, res.OneOfRefs...))
		res.Content = markdown.Paragraphs(res.Content, markdown.Title(4, oneOfTitle))
	}

	return res, nil
}

// Rows returns the property rows of a node and the identities they link to.
func (b *Builder) Rows(node *schema.Schema) ([]Row, []string, error) {
	merged, err := b.refs.Merge(node, refs.WithoutRuntimeRefs())
	if err != nil {
		return nil, nil, err
	}
	tableRef := b.tableRef(node, merged)

	rows, tableRefs, err := b.propertyRows(merged, tableRef, "")
	if err != nil {
		return nil, nil, err
	}

	if len(merged.OneOf) > 0 {
		description, err := b.describeOneOf(merged, tableRef)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, Row{Name: restRowName, Type: types.Label(types.OneOf), Description: description})
	}

	return rows, tableRefs, nil
}

func (b *Builder) propertyRows(merged *schema.Schema, tableRef, prefix string) ([]Row, []string, error) {
	var rows []Row
	var tableRefs []string

	for _, prop := range merged.Properties {
		value, err := b.refs.Merge(prop.Schema)
		if err != nil {
			return nil, nil, fmt.Errorf("property %s%s: %w", prefix, prop.Name, err)
		}

		data, err := b.RowData(value, prop.Name, tableRef)
		if err != nil {
			return nil, nil, err
		}

		name := markdown.RequiredName(prefix+prop.Name, merged.IsRequired(prop.Name))
		rows = append(rows, Row{Name: name, Type: data.Type, Description: data.Description})
		tableRefs = types.AppendSliceFirstNonEmpty(tableRefs, data.Ref)
		tableRefs = types.AppendSliceFirstNonEmpty(tableRefs, data.RuntimeRef)

		for _, element := range value.OneOf {
			inner, err := b.refs.Merge(element)
			if err != nil {
				return nil, nil, fmt.Errorf("property %s%s: %w", prefix, prop.Name, err)
			}
			if name, ok := b.refs.Find(inner); ok {
				tableRefs = append(tableRefs, name)
			}
		}

		if b.refs.RuntimeAllowed() || data.Ref != "" || data.RuntimeRef != "" {
			continue
		}

		// without runtime refs inline objects are expanded in place
		nested, nestedPrefix, err := b.inlineObject(value, prefix+prop.Name)
		if err != nil {
			return nil, nil, err
		}
		if nested != nil {
			nestedRows, nestedRefs, err := b.propertyRows(nested, "", nestedPrefix)
			if err != nil {
				return nil, nil, err
			}
			rows = append(rows, nestedRows...)
			tableRefs = append(tableRefs, nestedRefs...)
		}
	}

	return rows, tableRefs, nil
}

// RowData renders the type and description of a value.
// key and parentRef name the property and the table it belongs to,
// both are empty for values outside of a property table.
func (b *Builder) RowData(value *schema.Schema, key, parentRef string) (RowData, error) {
	description := types.ComplexDescription(value.Description, value)
	tag := types.Infer(value)

	if tag == types.Array {
		items, err := value.ArrayItems()
		if err != nil {
			return RowData{}, fmt.Errorf("%s: %w", describeKey(key), err)
		}
		itemsValue, err := b.refs.Merge(items)
		if err != nil {
			return RowData{}, fmt.Errorf("%s: %w", describeKey(key), err)
		}

		inner, err := b.RowData(itemsValue, key, parentRef)
		if err != nil {
			return RowData{}, err
		}

		// named items are described in their own table
		if inner.Ref == "" {
			description = types.ConcatNewLine(description, inner.Description)
		}

		if inner.RuntimeRef != "" && b.refs.RuntimeAllowed() {
			b.refs.Runtime(inner.RuntimeRef, itemsValue)
			return RowData{
				Type:        markdown.Anchor(inner.RuntimeRef, key) + "[]",
				Description: description,
				RuntimeRef:  inner.RuntimeRef,
			}, nil
		}

		return RowData{
			Type:        inner.Type + "[]",
			Description: description,
			Ref:         inner.Ref,
		}, nil
	}

	if name, ok := b.refs.Find(value); ok && linkable(value) {
		if b.refs.IsRuntime(name) {
			text := key
			if text == "" {
				text = name
			}
			return RowData{
				Type:        markdown.Anchor(name, text),
				Description: description,
				RuntimeRef:  name,
			}, nil
		}
		return RowData{
			Type:        markdown.Anchor(name, name),
			Description: description,
			Ref:         name,
		}, nil
	}

	if tag == types.Object && parentRef != "" && key != "" && b.refs.RuntimeAllowed() && len(value.Properties) > 0 {
		id := parentRef + "-" + key
		b.refs.Runtime(id, value)
		return RowData{
			Type:        markdown.Anchor(id, key),
			Description: description,
			RuntimeRef:  id,
		}, nil
	}

	if tag == types.OneOf {
		alternatives, err := b.describeOneOf(value, "")
		if err != nil {
			return RowData{}, err
		}
		return RowData{Type: alternatives, Description: description}, nil
	}

	return RowData{Type: types.TypeText(value), Description: description}, nil
}

// oneOfBranches merges the alternatives of a node.
// Inline structural branches of a named table get runtime identities of their own.
func (b *Builder) oneOfBranches(merged *schema.Schema, tableRef string) ([]*schema.Schema, error) {
	res := make([]*schema.Schema, 0, len(merged.OneOf))
	for i, element := range merged.OneOf {
		branch, err := b.refs.Merge(element)
		if err != nil {
			return nil, fmt.Errorf("oneOf[%d]: %w", i, err)
		}
		if _, named := b.refs.Find(branch); !named && tableRef != "" && linkable(branch) && b.refs.RuntimeAllowed() {
			b.refs.Runtime(fmt.Sprintf("%s-oneOf-%d", tableRef, i+1), branch)
		}
		res = append(res, branch)
	}
	return res, nil
}

// describeOneOf lists the alternatives: named ones as links, the rest as type text.
// Named scalars link too, the caller renders their type row.
func (b *Builder) describeOneOf(merged *schema.Schema, tableRef string) (string, error) {
	branches, err := b.oneOfBranches(merged, tableRef)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(branches))
	for _, branch := range branches {
		if name, ok := b.refs.Find(branch); ok {
			parts = append(parts, markdown.Anchor(name, name))
			continue
		}
		parts = append(parts, types.TypeText(branch))
	}
	return strings.Join(types.SliceUnique(parts), " or "), nil
}

// inlineObject returns the object a property expands to when it is rendered in place.
func (b *Builder) inlineObject(value *schema.Schema, name string) (*schema.Schema, string, error) {
	switch types.Infer(value) {
	case types.Object:
		if len(value.Properties) > 0 {
			return value, name + ".", nil
		}
	case types.Array:
		items, err := value.ArrayItems()
		if err != nil {
			return nil, "", err
		}
		itemsValue, err := b.refs.Merge(items)
		if err != nil {
			return nil, "", err
		}
		if _, named := b.refs.Find(itemsValue); !named && types.Infer(itemsValue) == types.Object && len(itemsValue.Properties) > 0 {
			return itemsValue, name + "[].", nil
		}
	}
	return nil, "", nil
}

func (b *Builder) tableRef(node, merged *schema.Schema) string {
	if id, ok := b.refs.Find(node); ok {
		return id
	}
	id, _ := b.refs.Find(merged)
	return id
}

// linkable reports whether a schema gets a table of its own.
func linkable(s *schema.Schema) bool {
	if types.Infer(s) == types.Array {
		return false
	}
	return len(s.Properties) > 0 || len(s.OneOf) > 0 || len(s.Enum) > 0
}

func describeKey(key string) string {
	if key == "" {
		return "items"
	}
	return key
}
