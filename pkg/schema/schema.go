package schema

import (
	"fmt"
)

// Schema is a JSON-Schema node as found in an OpenAPI document.
// Nodes are decoded once and never mutated afterwards: every transformation
// (ref resolution, allOf flattening) produces a new node.
type Schema struct {
	Ref string

	// Type holds the single declared type.
	// In 3.1 a type list like [string, null] keeps the first non-null entry and sets Nullable.
	Type     string
	Nullable bool

	Title       string
	Description string
	Format      string
	Pattern     string

	// Properties keep their declaration order, rows and samples follow it.
	Properties Properties
	Required   []string

	// items can be a schema, a bool in 3.1 or a tuple (prefixItems)
	Items                *Items
	AdditionalProperties *Schema

	Enum    []any
	Default any
	Example any

	AllOf []*Schema
	OneOf []*Schema
	AnyOf []*Schema

	Deprecated bool
	ReadOnly   bool
	WriteOnly  bool
}

// Items is the union of the shapes `items` can take.
// Exactly one of the fields is set.
type Items struct {
	Schema *Schema
	Bool   *bool
	Tuple  []*Schema
}

// NewItems wraps a single items schema.
func NewItems(s *Schema) *Items {
	return &Items{Schema: s}
}

// ArrayItems returns the single schema describing array elements.
// Missing, boolean and tuple items are not supported.
func (s *Schema) ArrayItems() (*Schema, error) {
	switch {
	case s.Items == nil:
		return nil, fmt.Errorf("%w: items are missing", ErrUnsupportedArrayItems)
	case s.Items.Bool != nil:
		return nil, fmt.Errorf("%w: boolean items", ErrUnsupportedArrayItems)
	case len(s.Items.Tuple) > 0:
		return nil, fmt.Errorf("%w: tuple items", ErrUnsupportedArrayItems)
	case s.Items.Schema == nil:
		return nil, fmt.Errorf("%w: items are missing", ErrUnsupportedArrayItems)
	}
	return s.Items.Schema, nil
}

// IsRequired returns true if the property name is listed in required.
func (s *Schema) IsRequired(name string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// IsComposed returns true if the node has to be merged before it can be used.
func (s *Schema) IsComposed() bool {
	return s.Ref != "" || len(s.AllOf) > 0 || len(s.AnyOf) > 0
}

// Clone returns a shallow copy with its own slices.
// Nested nodes are shared.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	res := *s
	res.Properties = append(Properties(nil), s.Properties...)
	res.Required = append([]string(nil), s.Required...)
	res.Enum = append([]any(nil), s.Enum...)
	res.AllOf = append([]*Schema(nil), s.AllOf...)
	res.OneOf = append([]*Schema(nil), s.OneOf...)
	res.AnyOf = append([]*Schema(nil), s.AnyOf...)
	return &res
}
