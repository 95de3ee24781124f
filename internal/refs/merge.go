package refs

import (
	"reflect"

	"github.com/cubahno/oasdocs/internal/types"
	"github.com/cubahno/oasdocs/pkg/schema"
)

var emptySchema = &schema.Schema{}

// ownKeywords returns the node without its composition keywords.
// anyOf branches become oneOf branches: for documentation both list alternatives.
func ownKeywords(node *schema.Schema) *schema.Schema {
	own := node.Clone()
	own.Ref = ""
	own.AllOf = nil
	own.OneOf = append(own.OneOf, own.AnyOf...)
	own.AnyOf = nil
	return own
}

func isBlank(s *schema.Schema) bool {
	return reflect.DeepEqual(normalized(s), schema.Schema{})
}

func normalized(s *schema.Schema) schema.Schema {
	res := *s
	if len(res.Properties) == 0 {
		res.Properties = nil
	}
	if len(res.Required) == 0 {
		res.Required = nil
	}
	if len(res.Enum) == 0 {
		res.Enum = nil
	}
	if len(res.OneOf) == 0 {
		res.OneOf = nil
	}
	if len(res.AllOf) == 0 {
		res.AllOf = nil
	}
	if len(res.AnyOf) == 0 {
		res.AnyOf = nil
	}
	return res
}

// mergeInto folds src into acc.
// Scalars of src override when set, properties are merged key by key,
// required and enum are unions, oneOf branches are appended.
func mergeInto(acc, src *schema.Schema) {
	if src.Type != "" {
		acc.Type = src.Type
	}
	if src.Title != "" {
		acc.Title = src.Title
	}
	if src.Description != "" {
		acc.Description = src.Description
	}
	if src.Format != "" {
		acc.Format = src.Format
	}
	if src.Pattern != "" {
		acc.Pattern = src.Pattern
	}

	acc.Nullable = acc.Nullable || src.Nullable
	acc.Deprecated = acc.Deprecated || src.Deprecated
	acc.ReadOnly = acc.ReadOnly || src.ReadOnly
	acc.WriteOnly = acc.WriteOnly || src.WriteOnly

	for _, prop := range src.Properties {
		acc.Properties = acc.Properties.Set(prop.Name, prop.Schema)
	}
	acc.Required = types.SliceUnion(acc.Required, src.Required...)
	acc.Enum = types.SliceUnion(acc.Enum, src.Enum...)

	if src.Items != nil {
		acc.Items = src.Items
	}
	if src.AdditionalProperties != nil {
		acc.AdditionalProperties = src.AdditionalProperties
	}
	if src.Default != nil {
		acc.Default = src.Default
	}
	if src.Example != nil {
		acc.Example = src.Example
	}

	acc.OneOf = append(acc.OneOf, src.OneOf...)
}
