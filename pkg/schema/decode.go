package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// rawSchema mirrors the keywords as they appear in the document.
// Keywords with more than one accepted shape are kept as nodes and decoded by hand.
type rawSchema struct {
	Ref                  string    `yaml:"$ref"`
	Type                 yaml.Node `yaml:"type"`
	Nullable             bool      `yaml:"nullable"`
	Title                string    `yaml:"title"`
	Description          string    `yaml:"description"`
	Format               string    `yaml:"format"`
	Pattern              string    `yaml:"pattern"`
	Properties           yaml.Node `yaml:"properties"`
	Required             []string  `yaml:"required"`
	Items                yaml.Node `yaml:"items"`
	PrefixItems          []*Schema `yaml:"prefixItems"`
	AdditionalProperties yaml.Node `yaml:"additionalProperties"`
	Enum                 []any     `yaml:"enum"`
	Default              any       `yaml:"default"`
	Example              any       `yaml:"example"`
	Examples             []any     `yaml:"examples"`
	AllOf                []*Schema `yaml:"allOf"`
	OneOf                []*Schema `yaml:"oneOf"`
	AnyOf                []*Schema `yaml:"anyOf"`
	Deprecated           bool      `yaml:"deprecated"`
	ReadOnly             bool      `yaml:"readOnly"`
	WriteOnly            bool      `yaml:"writeOnly"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
// JSON documents decode the same way since JSON is valid YAML.
func (s *Schema) UnmarshalYAML(value *yaml.Node) error {
	// boolean schema: true and false carry no structure to document
	if value.Kind == yaml.ScalarNode && value.ShortTag() == "!!bool" {
		*s = Schema{}
		return nil
	}

	var raw rawSchema
	if err := value.Decode(&raw); err != nil {
		return err
	}

	res := Schema{
		Ref:         raw.Ref,
		Nullable:    raw.Nullable,
		Title:       raw.Title,
		Description: raw.Description,
		Format:      raw.Format,
		Pattern:     raw.Pattern,
		Required:    raw.Required,
		Enum:        raw.Enum,
		Default:     raw.Default,
		Example:     raw.Example,
		AllOf:       raw.AllOf,
		OneOf:       raw.OneOf,
		AnyOf:       raw.AnyOf,
		Deprecated:  raw.Deprecated,
		ReadOnly:    raw.ReadOnly,
		WriteOnly:   raw.WriteOnly,
	}

	if res.Example == nil && len(raw.Examples) > 0 {
		res.Example = raw.Examples[0]
	}

	typ, nullable, err := decodeType(&raw.Type)
	if err != nil {
		return err
	}
	res.Type = typ
	res.Nullable = res.Nullable || nullable

	if res.Properties, err = decodeProperties(&raw.Properties); err != nil {
		return err
	}

	if res.Items, err = decodeItems(&raw.Items); err != nil {
		return err
	}
	if res.Items == nil && len(raw.PrefixItems) > 0 {
		res.Items = &Items{Tuple: raw.PrefixItems}
	}

	if res.AdditionalProperties, err = decodeAdditional(&raw.AdditionalProperties); err != nil {
		return err
	}

	*s = res
	return nil
}

func decodeType(node *yaml.Node) (string, bool, error) {
	switch node.Kind {
	case 0:
		return "", false, nil
	case yaml.ScalarNode:
		return node.Value, false, nil
	case yaml.SequenceNode:
		typ, nullable := "", false
		for _, item := range node.Content {
			if item.Value == "null" {
				nullable = true
				continue
			}
			if typ == "" {
				typ = item.Value
			}
		}
		return typ, nullable, nil
	}
	return "", false, fmt.Errorf("line %d: type must be a string or a list", node.Line)
}

func decodeProperties(node *yaml.Node) (Properties, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: properties must be a mapping", node.Line)
	}

	res := make(Properties, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		prop := &Schema{}
		if err := node.Content[i+1].Decode(prop); err != nil {
			return nil, fmt.Errorf("property %s: %w", node.Content[i].Value, err)
		}
		res = res.Set(node.Content[i].Value, prop)
	}
	return res, nil
}

func decodeItems(node *yaml.Node) (*Items, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: items must be a schema, a boolean or a list", node.Line)
		}
		return &Items{Bool: &b}, nil
	case yaml.SequenceNode:
		var tuple []*Schema
		if err := node.Decode(&tuple); err != nil {
			return nil, err
		}
		return &Items{Tuple: tuple}, nil
	}

	item := &Schema{}
	if err := node.Decode(item); err != nil {
		return nil, err
	}
	return &Items{Schema: item}, nil
}

func decodeAdditional(node *yaml.Node) (*Schema, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		if !b {
			return nil, nil
		}
		return &Schema{}, nil
	}

	res := &Schema{}
	if err := node.Decode(res); err != nil {
		return nil, err
	}
	return res, nil
}

// Parse decodes a single schema from YAML or JSON bytes.
func Parse(data []byte) (*Schema, error) {
	res := &Schema{}
	if err := yaml.Unmarshal(data, res); err != nil {
		return nil, err
	}
	return res, nil
}
