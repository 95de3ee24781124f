package types

import (
	"testing"

	"github.com/cubahno/oasdocs/pkg/schema"
	"github.com/stretchr/testify/assert"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		name     string
		schema   *schema.Schema
		expected Tag
	}{
		{
			name:     "declared string",
			schema:   &schema.Schema{Type: "string"},
			expected: String,
		},
		{
			name:     "declared integer",
			schema:   &schema.Schema{Type: "integer"},
			expected: Integer,
		},
		{
			name:     "declared type wins over properties",
			schema:   &schema.Schema{Type: "array", Properties: schema.Properties{{Name: "a", Schema: &schema.Schema{}}}},
			expected: Array,
		},
		{
			name:     "properties make an object",
			schema:   &schema.Schema{Properties: schema.Properties{{Name: "a", Schema: &schema.Schema{}}}},
			expected: Object,
		},
		{
			name:     "items make an array",
			schema:   &schema.Schema{Items: schema.NewItems(&schema.Schema{Type: "string"})},
			expected: Array,
		},
		{
			name:     "oneOf without type",
			schema:   &schema.Schema{OneOf: []*schema.Schema{{Type: "string"}}},
			expected: OneOf,
		},
		{
			name:     "unrecognized type",
			schema:   &schema.Schema{Type: "file"},
			expected: Unknown,
		},
		{
			name:     "empty",
			schema:   &schema.Schema{},
			expected: Unknown,
		},
		{
			name:     "nil",
			expected: Unknown,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Infer(tc.schema))
		})
	}
}

func TestTag(t *testing.T) {
	t.Run("primitives", func(t *testing.T) {
		for _, tag := range []Tag{String, Number, Integer, Boolean} {
			assert.True(t, tag.IsPrimitive(), tag.String())
		}
		for _, tag := range []Tag{Object, Array, OneOf, Unknown} {
			assert.False(t, tag.IsPrimitive(), tag.String())
		}
	})

	t.Run("round trip keywords", func(t *testing.T) {
		for _, typ := range []string{TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeObject, TypeArray} {
			assert.Equal(t, typ, ParseTag(typ).String())
		}
	})

	t.Run("labels", func(t *testing.T) {
		assert.Equal(t, "any", Label(Unknown))
		assert.Equal(t, "oneOf", Label(OneOf))
		assert.Equal(t, "string", Label(String))
	})
}

func TestTypeText(t *testing.T) {
	assert.Equal(t, "string&lt;uuid&gt;", TypeText(&schema.Schema{Type: "string", Format: "uuid"}))
	assert.Equal(t, "integer", TypeText(&schema.Schema{Type: "integer"}))
	assert.Equal(t, "any", TypeText(nil))
}

func TestComplexDescription(t *testing.T) {
	t.Run("fixed order", func(t *testing.T) {
		s := &schema.Schema{
			Enum:    []any{"a", "b"},
			Default: "a",
			Example: "b",
		}
		res := ComplexDescription("Tag name", s)
		expected := "Tag name\n" +
			"<span style=\"color:gray;\">Enum</span>: `a`, `b`\n" +
			"<span style=\"color:gray;\">Default</span>: `a`\n" +
			"<span style=\"color:gray;\">Example</span>: `b`"
		assert.Equal(t, expected, res)
	})

	t.Run("only present parts", func(t *testing.T) {
		res := ComplexDescription("", &schema.Schema{Default: 10})
		assert.Equal(t, "<span style=\"color:gray;\">Default</span>: `10`", res)
	})

	t.Run("composite example", func(t *testing.T) {
		res := ComplexDescription("Body", &schema.Schema{Example: map[string]any{"b": 1, "a": true}})
		assert.Equal(t, "Body\n<span style=\"color:gray;\">Example</span>: `{\"a\":true,\"b\":1}`", res)
	})

	t.Run("nothing to add", func(t *testing.T) {
		assert.Equal(t, "plain", ComplexDescription("plain", &schema.Schema{Type: "string"}))
	})

	t.Run("other keywords stay out", func(t *testing.T) {
		s := &schema.Schema{Type: "string", Pattern: "^[a-z]+$", Deprecated: true, Format: "uuid"}
		assert.Equal(t, "plain", ComplexDescription("plain", s))
	})
}
