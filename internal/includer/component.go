package includer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cubahno/oasdocs/internal/config"
	"github.com/cubahno/oasdocs/internal/markdown"
	"github.com/cubahno/oasdocs/internal/openapi"
	"github.com/cubahno/oasdocs/internal/sample"
	"github.com/cubahno/oasdocs/pkg/schema"
)

// ComponentTable renders the table of a components.schemas entry
// followed by the tables it links to.
func ComponentTable(doc *openapi.Document, cfg *config.Config, name string) (string, error) {
	b, err := newBuilder(doc, cfg)
	if err != nil {
		return "", err
	}
	if _, err := b.component(name); err != nil {
		return "", err
	}

	p := b.newPageBuilder(&openapi.Operation{ID: name})
	p.link(name)
	blocks, err := p.linkedTables()
	if err != nil {
		return "", err
	}
	return markdown.Paragraphs(blocks...) + "\n", nil
}

// ComponentSample renders the sample payload of a components.schemas entry.
func ComponentSample(doc *openapi.Document, cfg *config.Config, name string) ([]byte, error) {
	b, err := newBuilder(doc, cfg)
	if err != nil {
		return nil, err
	}
	node, err := b.component(name)
	if err != nil {
		return nil, err
	}

	samples := sample.New(b.refs)
	value, err := samples.Object(node)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if warnings := samples.Warnings(); len(warnings) > 0 {
		slog.Warn("sample contains placeholders", "component", name, "warnings", warnings)
	}

	return sample.Encode(value, b.format)
}

func (b *builder) component(name string) (*schema.Schema, error) {
	node, ok := b.refs.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s, available: %s", ErrUnknownComponent, name, strings.Join(b.doc.ComponentNames(), ", "))
	}
	return node, nil
}
