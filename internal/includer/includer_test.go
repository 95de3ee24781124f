package includer

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cubahno/oasdocs/internal/config"
	"github.com/cubahno/oasdocs/internal/openapi"
	"github.com/cubahno/oasdocs/internal/sample"
	"github.com/cubahno/oasdocs/pkg/schema"
	assert2 "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func loadDocument(t *testing.T, name string) *openapi.Document {
	t.Helper()
	doc, err := openapi.LoadFile(context.Background(), filepath.Join("testdata", name))
	require.NoError(t, err)
	return doc
}

func buildPages(t *testing.T, doc *openapi.Document, cfg *config.Config) map[string]string {
	t.Helper()
	pages, err := Build(context.Background(), doc, cfg)
	require.NoError(t, err)

	res := make(map[string]string, len(pages))
	for _, page := range pages {
		res[page.Path] = string(page.Content)
	}
	return res
}

func TestBuild(t *testing.T) {
	assert := assert2.New(t)
	doc := loadDocument(t, "petstore.yml")

	pages, err := Build(context.Background(), doc, config.NewDefaultConfig())
	require.NoError(t, err)

	var paths []string
	for _, page := range pages {
		paths = append(paths, page.Path)
	}
	assert.Equal([]string{
		IndexPath,
		TocPath,
		"health.md",
		"pets/listpets.md",
		"pets/createpet.md",
		"pets/get-pets-petid.md",
	}, paths)

	content := buildPages(t, doc, nil)

	t.Run("operation header", func(t *testing.T) {
		page := content["pets/listpets.md"]
		assert.True(strings.HasPrefix(page, "# List pets\n\n`GET /pets`\n"))

		health := content["health.md"]
		assert.True(strings.HasPrefix(health, "# health\n\n`GET /health`\n\n**Deprecated**"))
	})

	t.Run("parameters", func(t *testing.T) {
		page := content["pets/listpets.md"]
		assert.Contains(page, "## Parameters")
		assert.Contains(page, "| limit")
		assert.Contains(page, "integer&lt;int32&gt;")
		assert.Contains(page, "How many items to return.")
		assert.Contains(page, "| X-Trace-Id")
		assert.Contains(page, "string&lt;uuid&gt;")

		petPage := content["pets/get-pets-petid.md"]
		assert.Contains(petPage, "| petId*")
		assert.Contains(petPage, "The pet to fetch.")
	})

	t.Run("linked tables are rendered once", func(t *testing.T) {
		page := content["pets/listpets.md"]
		assert.Contains(page, "[Pet](#pet)[]")
		assert.Equal(1, strings.Count(page, "\n## Pet\n"))
		assert.Equal(1, strings.Count(page, "\n## Tag\n"))
		assert.Contains(page, "[Tag](#tag)")
		assert.Contains(page, "| id*")
		assert.Contains(page, "| name*")
	})

	t.Run("samples", func(t *testing.T) {
		page := content["pets/listpets.md"]
		assert.Contains(page, "**Example**\n\n```json\n[\n  {\n    \"id\": 0,")
		assert.Contains(page, `"status": "available"`)

		assert.Contains(content["health.md"], "```json\n\"string\"\n```")
	})

	t.Run("request", func(t *testing.T) {
		page := content["pets/createpet.md"]
		assert.Contains(page, "## Request\n\n**Required**\n\nContent type: `application/json`")
		assert.Contains(page, "| note")
		assert.Equal(1, strings.Count(page, "\n## Tag\n"))
	})

	t.Run("responses", func(t *testing.T) {
		page := content["pets/listpets.md"]
		assert.Contains(page, "## Responses")
		assert.Contains(page, "### 200\n\nA list of pets.")
		assert.Contains(page, "### default\n\nUnexpected error.")
		assert.Less(strings.Index(page, "### 200"), strings.Index(page, "### default"))

		petPage := content["pets/get-pets-petid.md"]
		assert.Contains(petPage, "### 404\n\nNot found.")
	})

	t.Run("nested inline objects link to runtime tables", func(t *testing.T) {
		page := content["pets/createpet.md"]
		assert.Contains(page, "[owner](#createpet-response-201-owner)")
		assert.Equal(1, strings.Count(page, "\n## createPet-response-201-owner\n"))
		assert.NotContains(page, "owner.name")
	})
}

func TestBuild_RuntimeRefsDisabled(t *testing.T) {
	assert := assert2.New(t)
	doc := loadDocument(t, "petstore.yml")

	cfg := config.NewDefaultConfig()
	cfg.RuntimeRefs = false
	content := buildPages(t, doc, cfg)

	page := content["pets/createpet.md"]
	assert.Contains(page, "| owner.name")
	assert.NotContains(page, "createPet-response-201-owner")

	// named schemas still link
	assert.Contains(content["pets/listpets.md"], "[Pet](#pet)[]")
}

func TestBuild_SampleFormat(t *testing.T) {
	assert := assert2.New(t)
	doc := loadDocument(t, "petstore.yml")

	t.Run("yaml", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		cfg.SampleFormat = "yaml"
		content := buildPages(t, doc, cfg)

		page := content["pets/listpets.md"]
		assert.Contains(page, "```yaml\n- id: 0\n")
		assert.Contains(page, "status: available")
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		cfg.SampleFormat = "xml"
		_, err := Build(context.Background(), doc, cfg)
		assert.True(errors.Is(err, sample.ErrUnknownFormat))
	})
}

func TestBuild_OnError(t *testing.T) {
	assert := assert2.New(t)
	doc := loadDocument(t, "broken.yml")

	t.Run("fail", func(t *testing.T) {
		_, err := Build(context.Background(), doc, config.NewDefaultConfig())
		assert.True(errors.Is(err, schema.ErrUnsupportedArrayItems))
		assert.Contains(err.Error(), "getLists")
	})

	t.Run("skip", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		cfg.OnError = config.OnErrorSkip
		content := buildPages(t, doc, cfg)

		page := content["getlists.md"]
		assert.Contains(page, "### 200")
		assert.Contains(page, "_Schema could not be rendered: ")
	})
}

func TestBuild_Cancelled(t *testing.T) {
	doc := loadDocument(t, "petstore.yml")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, doc, nil)
	assert2.True(t, errors.Is(err, context.Canceled))
}

func TestIndex(t *testing.T) {
	assert := assert2.New(t)
	content := buildPages(t, loadDocument(t, "petstore.yml"), nil)

	index := content[IndexPath]
	assert.True(strings.HasPrefix(index, "# Petstore\n\nVersion: `1.0.0`\n\nPets and their owners."))
	assert.Contains(index, "## pets\n\n- [List pets](pets/listpets.md) `GET /pets`\n- [Create a pet](pets/createpet.md) `POST /pets`")
	assert.Contains(index, "## Other\n\n- [health](health.md) `GET /health`")
	assert.Less(strings.Index(index, "## pets"), strings.Index(index, "## Other"))
}

func TestToc(t *testing.T) {
	assert := assert2.New(t)
	content := buildPages(t, loadDocument(t, "petstore.yml"), nil)

	var toc Toc
	require.NoError(t, yaml.Unmarshal([]byte(content[TocPath]), &toc))

	assert.Equal("Petstore", toc.Title)
	assert.Equal(IndexPath, toc.Href)
	require.Len(t, toc.Items, 2)

	pets := toc.Items[0]
	assert.Equal("pets", pets.Name)
	assert.Empty(pets.Href)
	require.Len(t, pets.Items, 3)
	assert.Equal(&TocItem{Name: "List pets", Href: "pets/listpets.md"}, pets.Items[0])
	assert.Equal(&TocItem{Name: "Get a pet", Href: "pets/get-pets-petid.md"}, pets.Items[2])

	assert.Equal(&TocItem{Name: "health", Href: "health.md"}, toc.Items[1])
}

func TestPagePath(t *testing.T) {
	assert := assert2.New(t)

	assert.Equal("pets/listpets.md", PagePath(&openapi.Operation{ID: "listPets", Tags: []string{"pets", "other"}}))
	assert.Equal("pet-store/list.md", PagePath(&openapi.Operation{ID: "list", Tags: []string{"Pet Store"}}))
	assert.Equal("health.md", PagePath(&openapi.Operation{ID: "health"}))
	assert.Equal("get-a.md", PagePath(&openapi.Operation{ID: "???", Method: "GET", Path: "/a"}))
}

func TestOperationPage(t *testing.T) {
	assert := assert2.New(t)
	doc := loadDocument(t, "petstore.yml")

	page, err := OperationPage(doc, nil, "listPets")
	require.NoError(t, err)
	assert.Equal("pets/listpets.md", page.Path)
	assert.Equal("List pets", page.Title)
	assert.Contains(string(page.Content), "\n## Pet\n")

	_, err = OperationPage(doc, nil, "deletePet")
	assert.True(errors.Is(err, ErrUnknownOperation))
}
