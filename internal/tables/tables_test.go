package tables

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/cubahno/oasdocs/internal/refs"
	"github.com/cubahno/oasdocs/pkg/schema"
	"github.com/google/go-cmp/cmp"
	assert2 "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const enumLine = `<span style="color:gray;">Enum</span>: `

func parse(t *testing.T, src string) *schema.Schema {
	t.Helper()
	res, err := schema.Parse([]byte(src))
	require.NoError(t, err)
	return res
}

func components(t *testing.T, named map[string]string) refs.Components {
	t.Helper()
	res := refs.Components{}
	for name, src := range named {
		res[name] = parse(t, src)
	}
	return res
}

func TestFromSchema_ObjectWithEnum(t *testing.T) {
	assert := assert2.New(t)
	node := parse(t, `
type: object
required: [id]
properties:
  id:
    type: string
    format: uuid
  tag:
    type: string
    enum: [a, b]
`)
	b := New(refs.New(nil))

	rows, tableRefs, err := b.Rows(node)
	require.NoError(t, err)

	expected := []Row{
		{Name: "id*", Type: "string&lt;uuid&gt;"},
		{Name: "tag", Type: "string", Description: enumLine + "`a`, `b`"},
	}
	if diff := cmp.Diff(expected, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(tableRefs)

	res, err := b.FromSchema(node)
	require.NoError(t, err)
	lines := strings.Split(res.Content, "\n")
	require.Len(t, lines, 4)
	assert.True(strings.HasPrefix(lines[0], "| Name"))
	assert.True(strings.HasPrefix(lines[2], "| id* "))
	assert.True(strings.HasPrefix(lines[3], "| tag "))
	assert.Empty(res.TableRefs)
	assert.Empty(res.OneOfRefs)
}

func TestFromSchema_RowCount(t *testing.T) {
	faker := gofakeit.New(42)

	for _, n := range []int{1, 3, 12} {
		t.Run(fmt.Sprintf("%d properties", n), func(t *testing.T) {
			node := &schema.Schema{Type: "object"}
			for i := 0; i < n; i++ {
				name := fmt.Sprintf("%s%d", faker.Noun(), i)
				node.Properties = node.Properties.Set(name, &schema.Schema{Type: "string"})
			}

			rows, _, err := New(refs.New(nil)).Rows(node)
			require.NoError(t, err)
			assert2.Len(t, rows, n)
			for i, row := range rows {
				assert2.Equal(t, node.Properties[i].Name, row.Name)
			}

			withOneOf := node.Clone()
			withOneOf.OneOf = []*schema.Schema{{Type: "string"}, {Type: "integer"}}
			rows, _, err = New(refs.New(nil)).Rows(withOneOf)
			require.NoError(t, err)
			require.Len(t, rows, n+1)

			rest := rows[n]
			assert2.Equal(t, "...rest", rest.Name)
			assert2.Equal(t, "oneOf", rest.Type)
			assert2.Equal(t, "string or integer", rest.Description)
		})
	}
}

func TestFromSchema_Enum(t *testing.T) {
	res, err := New(refs.New(nil)).FromSchema(parse(t, `{type: string, enum: [active, inactive], default: active}`))
	require.NoError(t, err)

	lines := strings.Split(res.Content, "\n")
	require.Len(t, lines, 3)
	assert2.True(t, strings.HasPrefix(lines[0], "| Type"))
	assert2.Contains(t, lines[2], "| string ")
	assert2.Contains(t, lines[2], enumLine+"`active`, `inactive`<br>")
	assert2.Empty(t, res.TableRefs)
}

func TestFromSchema_ArrayItemsFailure(t *testing.T) {
	b := New(refs.New(nil))

	t.Run("root", func(t *testing.T) {
		_, err := b.FromSchema(parse(t, `{type: array, items: true}`))
		assert2.True(t, errors.Is(err, schema.ErrUnsupportedArrayItems))
		assert2.True(t, errors.Is(err, schema.ErrMalformedComposition))
	})

	t.Run("property", func(t *testing.T) {
		_, err := b.FromSchema(parse(t, `{properties: {tags: {type: array, items: [{type: string}]}}}`))
		assert2.True(t, errors.Is(err, schema.ErrUnsupportedArrayItems))
		assert2.Contains(t, err.Error(), "tags")
	})

	t.Run("missing items", func(t *testing.T) {
		_, err := b.FromSchema(parse(t, `{properties: {tags: {type: array}}}`))
		assert2.True(t, errors.Is(err, schema.ErrUnsupportedArrayItems))
	})
}

func TestFromSchema_References(t *testing.T) {
	assert := assert2.New(t)
	source := components(t, map[string]string{
		"Pet": `
type: object
required: [name]
properties:
  name: {type: string}
  tag: {$ref: '#/components/schemas/Tag'}
  tags:
    type: array
    items: {$ref: '#/components/schemas/Tag'}
  owner:
    type: object
    properties:
      email: {type: string, format: email}
  visits:
    type: array
    items:
      type: object
      properties:
        at: {type: string, format: date-time}
  id: {$ref: '#/components/schemas/Id'}
`,
		"Tag": `{type: object, properties: {label: {type: string}}}`,
		"Id":  `{type: string, format: uuid}`,
	})

	resolver := refs.New(source)
	b := New(resolver)

	res, err := b.FromSchema(&schema.Schema{Ref: refs.Ref("Pet")})
	require.NoError(t, err)

	rows, _, err := b.Rows(&schema.Schema{Ref: refs.Ref("Pet")})
	require.NoError(t, err)

	types := map[string]string{}
	for _, row := range rows {
		types[row.Name] = row.Type
	}
	assert.Equal("string", types["name*"])
	assert.Equal("[Tag](#tag)", types["tag"])
	assert.Equal("[Tag](#tag)[]", types["tags"])
	assert.Equal("[owner](#pet-owner)", types["owner"])
	assert.Equal("[visits](#pet-visits)[]", types["visits"])
	assert.Equal("string&lt;uuid&gt;", types["id"])

	assert.Equal([]string{"Tag", "Pet-owner", "Pet-visits"}, res.TableRefs)
	assert.Equal([]string{"Pet-owner", "Pet-visits"}, resolver.Runtimes())

	owner, ok := resolver.Lookup("Pet-owner")
	require.True(t, ok)
	assert.Equal([]string{"email"}, owner.Properties.Names())

	visits, ok := resolver.Lookup("Pet-visits")
	require.True(t, ok)
	assert.Equal([]string{"at"}, visits.Properties.Names())

	t.Run("runtime tables link further down", func(t *testing.T) {
		nested, err := b.FromSchema(owner)
		require.NoError(t, err)
		assert.Contains(nested.Content, "string&lt;email&gt;")
		assert.Empty(nested.TableRefs)
	})

	t.Run("rendering again keeps identities", func(t *testing.T) {
		again, err := b.FromSchema(&schema.Schema{Ref: refs.Ref("Pet")})
		require.NoError(t, err)
		assert.Equal(res.TableRefs, again.TableRefs)
		assert.Equal(res.Content, again.Content)
		assert.Len(resolver.Runtimes(), 2)
	})
}

func TestFromSchema_RuntimeRefsDisabled(t *testing.T) {
	source := components(t, map[string]string{
		"Pet": `
type: object
properties:
  owner:
    type: object
    required: [email]
    properties:
      email: {type: string}
      address:
        type: object
        properties:
          city: {type: string}
  visits:
    type: array
    items:
      type: object
      properties:
        at: {type: string}
`,
	})
	resolver := refs.New(source, refs.WithRuntimeRefs(false))

	rows, tableRefs, err := New(resolver).Rows(&schema.Schema{Ref: refs.Ref("Pet")})
	require.NoError(t, err)

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	expected := []string{"owner", "owner.email*", "owner.address", "owner.address.city", "visits", "visits[].at"}
	if diff := cmp.Diff(expected, names); diff != "" {
		t.Errorf("row names mismatch (-want +got):\n%s", diff)
	}
	assert2.Equal(t, "object", rows[0].Type)
	assert2.Equal(t, "object[]", rows[4].Type)
	assert2.Empty(t, tableRefs)
	assert2.Empty(t, resolver.Runtimes())
}

func TestFromSchema_OneOf(t *testing.T) {
	assert := assert2.New(t)
	source := components(t, map[string]string{
		"Cat":    `{type: object, properties: {meows: {type: boolean}}}`,
		"Dog":    `{type: object, properties: {barks: {type: boolean}}}`,
		"Animal": `{oneOf: [{$ref: '#/components/schemas/Cat'}, {$ref: '#/components/schemas/Dog'}, {type: string}]}`,
		"Owner":  `{properties: {pet: {oneOf: [{$ref: '#/components/schemas/Cat'}, {$ref: '#/components/schemas/Dog'}]}}}`,
	})
	b := New(refs.New(source))

	t.Run("alternatives of the schema", func(t *testing.T) {
		res, err := b.FromSchema(&schema.Schema{Ref: refs.Ref("Animal")})
		require.NoError(t, err)

		assert.Equal([]string{"Cat", "Dog"}, res.OneOfRefs)
		assert.Equal([]string{"Cat", "Dog"}, res.TableRefs)
		assert.Contains(res.Content, "| ...rest | oneOf | [Cat](#cat) or [Dog](#dog) or string |")
		assert.True(strings.HasSuffix(res.Content, "\n\n#### Or value from:"))
	})

	t.Run("alternatives of a property", func(t *testing.T) {
		res, err := b.FromSchema(&schema.Schema{Ref: refs.Ref("Owner")})
		require.NoError(t, err)

		assert.Equal([]string{"Cat", "Dog"}, res.TableRefs)
		assert.Contains(res.Content, "[Cat](#cat) or [Dog](#dog)")
		assert.Empty(res.OneOfRefs)
	})

	t.Run("inline branches of a named schema get identities", func(t *testing.T) {
		resolver := refs.New(components(t, map[string]string{
			"Shape": `{oneOf: [{type: object, properties: {r: {type: number}}}, {type: string}]}`,
		}))
		res, err := New(resolver).FromSchema(&schema.Schema{Ref: refs.Ref("Shape")})
		require.NoError(t, err)

		assert.Equal([]string{"Shape-oneOf-1"}, res.OneOfRefs)
		assert.Contains(res.Content, "[Shape-oneOf-1](#shape-oneof-1) or string")
	})

	t.Run("named scalar branches link", func(t *testing.T) {
		resolver := refs.New(components(t, map[string]string{
			"Id":     `{type: string, format: uuid}`,
			"Cat":    `{type: object, properties: {meows: {type: boolean}}}`,
			"Target": `{oneOf: [{$ref: '#/components/schemas/Id'}, {$ref: '#/components/schemas/Cat'}]}`,
			"Link":   `{properties: {to: {oneOf: [{$ref: '#/components/schemas/Id'}, {type: integer}]}}}`,
		}))
		b := New(resolver)

		res, err := b.FromSchema(&schema.Schema{Ref: refs.Ref("Target")})
		require.NoError(t, err)
		assert.Equal([]string{"Id", "Cat"}, res.OneOfRefs)
		assert.Equal([]string{"Id", "Cat"}, res.TableRefs)
		assert.Contains(res.Content, "| ...rest | oneOf | [Id](#id) or [Cat](#cat) |")

		res, err = b.FromSchema(&schema.Schema{Ref: refs.Ref("Link")})
		require.NoError(t, err)
		assert.Equal([]string{"Id"}, res.TableRefs)
		assert.Contains(res.Content, "[Id](#id) or integer")
	})
}

func TestFromSchema_DanglingReference(t *testing.T) {
	_, err := New(refs.New(nil)).FromSchema(parse(t, `{properties: {pet: {$ref: '#/components/schemas/Missing'}}}`))
	assert2.True(t, errors.Is(err, schema.ErrDanglingReference))
	assert2.Contains(t, err.Error(), "property pet")
}

func TestFromSchema_Scalars(t *testing.T) {
	assert := assert2.New(t)
	b := New(refs.New(nil))

	for _, src := range []string{
		`{type: string}`,
		`{type: integer, format: int64, description: Total count}`,
		`{type: array, items: {type: integer}}`,
		`{type: object}`,
	} {
		res, err := b.FromSchema(parse(t, src))
		require.NoError(t, err, src)
		assert.Equal("", res.Content, src)
		assert.Empty(res.TableRefs, src)
	}
}
