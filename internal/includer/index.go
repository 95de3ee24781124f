package includer

import (
	"bytes"
	"strings"

	"github.com/cubahno/oasdocs/internal/markdown"
	"github.com/cubahno/oasdocs/internal/openapi"
	"gopkg.in/yaml.v3"
)

const (
	defaultTitle  = "API"
	untaggedTitle = "Other"
)

// TocItem is a navigation entry of toc.yaml.
type TocItem struct {
	Name  string     `yaml:"name"`
	Href  string     `yaml:"href,omitempty"`
	Items []*TocItem `yaml:"items,omitempty"`
}

// Toc is the navigation of the generated pages.
type Toc struct {
	Title string     `yaml:"title"`
	Href  string     `yaml:"href"`
	Items []*TocItem `yaml:"items"`
}

type tagGroup struct {
	tag   string
	pages []*Page
	ops   []*openapi.Operation
}

// groupByTag groups operation pages by their first tag in order of appearance.
// Untagged operations come last.
func groupByTag(doc *openapi.Document, pages []*Page) []*tagGroup {
	var res []*tagGroup
	index := make(map[string]*tagGroup)
	var untagged *tagGroup

	for i, op := range doc.Operations {
		if i >= len(pages) {
			break
		}

		tag := ""
		if len(op.Tags) > 0 {
			tag = op.Tags[0]
		}

		group := index[tag]
		if group == nil {
			group = &tagGroup{tag: tag}
			index[tag] = group
			if tag == "" {
				untagged = group
			} else {
				res = append(res, group)
			}
		}
		group.pages = append(group.pages, pages[i])
		group.ops = append(group.ops, op)
	}

	if untagged != nil {
		res = append(res, untagged)
	}
	return res
}

func docTitle(doc *openapi.Document) string {
	if doc.Title != "" {
		return doc.Title
	}
	return defaultTitle
}

func indexPage(doc *openapi.Document, pages []*Page) *Page {
	title := docTitle(doc)
	blocks := []string{markdown.Title(1, title)}
	if doc.Version != "" {
		blocks = append(blocks, "Version: "+markdown.Code(doc.Version))
	}
	blocks = append(blocks, doc.Description)

	for _, group := range groupByTag(doc, pages) {
		heading := group.tag
		if heading == "" {
			heading = untaggedTitle
		}

		lines := make([]string, 0, len(group.pages))
		for i, page := range group.pages {
			op := group.ops[i]
			lines = append(lines, "- "+markdown.Link(page.Title, page.Path)+" "+markdown.Code(op.Method+" "+op.Path))
		}
		blocks = append(blocks, markdown.Title(2, heading), strings.Join(lines, "\n"))
	}

	return &Page{
		Path:    IndexPath,
		Title:   title,
		Content: []byte(markdown.Paragraphs(blocks...) + "\n"),
	}
}

func tocPage(doc *openapi.Document, pages []*Page) (*Page, error) {
	toc := &Toc{
		Title: docTitle(doc),
		Href:  IndexPath,
	}

	for _, group := range groupByTag(doc, pages) {
		items := make([]*TocItem, 0, len(group.pages))
		for _, page := range group.pages {
			items = append(items, &TocItem{Name: page.Title, Href: page.Path})
		}

		if group.tag == "" {
			toc.Items = append(toc.Items, items...)
			continue
		}
		toc.Items = append(toc.Items, &TocItem{Name: group.tag, Items: items})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return &Page{
		Path:    TocPath,
		Title:   toc.Title,
		Content: buf.Bytes(),
	}, nil
}
