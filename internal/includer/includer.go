// Package includer maps the operations of an OpenAPI document to markdown pages.
package includer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cubahno/oasdocs/internal/config"
	"github.com/cubahno/oasdocs/internal/markdown"
	"github.com/cubahno/oasdocs/internal/openapi"
	"github.com/cubahno/oasdocs/internal/refs"
	"github.com/cubahno/oasdocs/internal/sample"
	"github.com/cubahno/oasdocs/internal/tables"
)

const (
	IndexPath = "index.md"
	TocPath   = "toc.yaml"
)

// Page is a generated documentation file.
// Path is slash separated and relative to the output root.
type Page struct {
	Path    string
	Title   string
	Content []byte
}

type builder struct {
	doc     *openapi.Document
	refs    *refs.Resolver
	tables  *tables.Builder
	format  sample.Format
	onError string
}

// Build renders one page per operation, the index and the table of contents.
// All pages of a document share a single resolution context.
func Build(ctx context.Context, doc *openapi.Document, cfg *config.Config) ([]*Page, error) {
	b, err := newBuilder(doc, cfg)
	if err != nil {
		return nil, err
	}

	pages := make([]*Page, 0, len(doc.Operations))
	for _, op := range doc.Operations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := b.operationPage(op)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op.ID, err)
		}
		pages = append(pages, page)
	}

	index := indexPage(doc, pages)
	toc, err := tocPage(doc, pages)
	if err != nil {
		return nil, err
	}

	slog.Info("built documentation", "title", doc.Title, "operations", len(pages), "runtimeRefs", len(b.refs.Runtimes()))
	return append([]*Page{index, toc}, pages...), nil
}

// OperationPage renders the page of a single operation.
func OperationPage(doc *openapi.Document, cfg *config.Config, id string) (*Page, error) {
	b, err := newBuilder(doc, cfg)
	if err != nil {
		return nil, err
	}

	op := doc.FindOperation(id)
	if op == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, id)
	}

	page, err := b.operationPage(op)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.ID, err)
	}
	return page, nil
}

func newBuilder(doc *openapi.Document, cfg *config.Config) (*builder, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	format, err := sample.ParseFormat(cfg.SampleFormat)
	if err != nil {
		return nil, err
	}

	resolver := refs.New(doc, refs.WithRuntimeRefs(cfg.RuntimeRefs))
	return &builder{
		doc:     doc,
		refs:    resolver,
		tables:  tables.New(resolver),
		format:  format,
		onError: cfg.OnError,
	}, nil
}

// PagePath returns where the page of an operation goes:
// under the directory of its first tag, at the root when untagged.
func PagePath(op *openapi.Operation) string {
	name := markdown.Slug(op.ID)
	if name == "" {
		name = markdown.Slug(openapi.OperationID(op.Method, op.Path))
	}
	name += ".md"

	if len(op.Tags) > 0 {
		if dir := markdown.Slug(op.Tags[0]); dir != "" {
			return dir + "/" + name
		}
	}
	return name
}

// PageTitle returns the summary of an operation, its ID when there is none.
func PageTitle(op *openapi.Operation) string {
	if op.Summary != "" {
		return op.Summary
	}
	return op.ID
}
