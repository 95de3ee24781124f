package includer

import (
	"fmt"
	"log/slog"

	"github.com/cubahno/oasdocs/internal/config"
	"github.com/cubahno/oasdocs/internal/markdown"
	"github.com/cubahno/oasdocs/internal/openapi"
	"github.com/cubahno/oasdocs/internal/sample"
	"github.com/cubahno/oasdocs/internal/types"
	"github.com/cubahno/oasdocs/pkg/schema"
)

const skippedNotice = "_Schema could not be rendered: %s_"

// pageBuilder renders a single operation.
// linked holds the identities to render as separate tables, each once per page.
type pageBuilder struct {
	*builder
	op      *openapi.Operation
	samples *sample.Sampler

	linked []string
	seen   map[string]bool
}

func (b *builder) newPageBuilder(op *openapi.Operation) *pageBuilder {
	return &pageBuilder{
		builder: b,
		op:      op,
		samples: sample.New(b.refs),
		seen:    make(map[string]bool),
	}
}

func (b *builder) operationPage(op *openapi.Operation) (*Page, error) {
	p := b.newPageBuilder(op)

	title := PageTitle(op)
	blocks := []string{
		markdown.Title(1, title),
		markdown.Code(op.Method + " " + op.Path),
	}
	if op.Deprecated {
		blocks = append(blocks, markdown.Bold("Deprecated"))
	}
	blocks = append(blocks, op.Description)

	params, err := p.parameters()
	if err != nil {
		return nil, err
	}
	request, err := p.request()
	if err != nil {
		return nil, err
	}
	responses, err := p.responses()
	if err != nil {
		return nil, err
	}
	linked, err := p.linkedTables()
	if err != nil {
		return nil, err
	}
	blocks = append(blocks, params, request, responses)
	blocks = append(blocks, linked...)

	if warnings := p.samples.Warnings(); len(warnings) > 0 {
		slog.Warn("samples contain placeholders", "operation", op.ID, "warnings", warnings)
	}

	return &Page{
		Path:    PagePath(op),
		Title:   title,
		Content: []byte(markdown.Paragraphs(blocks...) + "\n"),
	}, nil
}

func (p *pageBuilder) parameters() (string, error) {
	if len(p.op.Parameters) == 0 {
		return "", nil
	}

	rows := [][]string{{"Name", "In", "Type", "Description"}}
	for _, param := range p.op.Parameters {
		row, err := p.parameterRow(param)
		if err != nil {
			if err := p.skip("parameter "+param.Name, err); err != nil {
				return "", err
			}
			row = []string{markdown.RequiredName(param.Name, param.Required), param.In, "", notice(err)}
		}
		rows = append(rows, row)
	}

	return markdown.Paragraphs(markdown.Title(2, "Parameters"), markdown.Table(rows)), nil
}

func (p *pageBuilder) parameterRow(param *openapi.Parameter) ([]string, error) {
	value, err := p.refs.Merge(param.Schema)
	if err != nil {
		return nil, err
	}
	data, err := p.tables.RowData(value, param.Name, "")
	if err != nil {
		return nil, err
	}
	p.link(data.Ref, data.RuntimeRef)

	description := types.ConcatNewLine(param.Description, data.Description)
	if param.Deprecated {
		description = types.ConcatNewLine(markdown.Bold("Deprecated"), description)
	}

	return []string{
		markdown.RequiredName(param.Name, param.Required),
		param.In,
		data.Type,
		description,
	}, nil
}

func (p *pageBuilder) request() (string, error) {
	body := p.op.RequestBody
	if body == nil {
		return "", nil
	}

	blocks := []string{markdown.Title(2, "Request")}
	if body.Required {
		blocks = append(blocks, markdown.Bold("Required"))
	}
	blocks = append(blocks, body.Description)

	content, err := p.payload(body.ContentType, body.Schema, p.op.ID+"-request")
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	blocks = append(blocks, content)

	return markdown.Paragraphs(blocks...), nil
}

func (p *pageBuilder) responses() (string, error) {
	if len(p.op.Responses) == 0 {
		return "", nil
	}

	blocks := []string{markdown.Title(2, "Responses")}
	for _, resp := range p.op.Responses {
		content, err := p.payload(resp.ContentType, resp.Schema, p.op.ID+"-response-"+resp.Code)
		if err != nil {
			return "", fmt.Errorf("response %s: %w", resp.Code, err)
		}
		blocks = append(blocks, markdown.Title(3, resp.Code), resp.Description, content)
	}

	return markdown.Paragraphs(blocks...), nil
}

// payload renders the table and the sample of a request or response schema.
// Inline roots get the runtime identity so their nested objects link to tables of their own.
func (p *pageBuilder) payload(contentType string, node *schema.Schema, rootID string) (string, error) {
	var blocks []string
	if contentType != "" {
		blocks = append(blocks, "Content type: "+markdown.Code(contentType))
	}
	if node == nil {
		return markdown.Paragraphs(blocks...), nil
	}

	if node.Ref == "" && p.refs.RuntimeAllowed() {
		p.refs.Runtime(rootID, node)
	}

	content, err := p.schemaBlock(node)
	if err != nil {
		if err := p.skip(rootID, err); err != nil {
			return "", err
		}
		content = notice(err)
	}
	blocks = append(blocks, content)

	return markdown.Paragraphs(blocks...), nil
}

func (p *pageBuilder) schemaBlock(node *schema.Schema) (string, error) {
	table, err := p.table(node)
	if err != nil {
		return "", err
	}

	value, err := p.samples.Object(node)
	if err != nil {
		return "", err
	}
	data, err := sample.Encode(value, p.format)
	if err != nil {
		return "", err
	}

	return markdown.Paragraphs(
		table,
		markdown.Bold("Example"),
		markdown.CodeBlock(string(p.format), string(data)),
	), nil
}

// linkedTables renders every linked identity under its own heading.
// Tables may link further, the queue grows until everything is rendered.
func (p *pageBuilder) linkedTables() ([]string, error) {
	var blocks []string
	for i := 0; i < len(p.linked); i++ {
		id := p.linked[i]

		node, ok := p.refs.Lookup(id)
		if !ok {
			err := fmt.Errorf("%w: %s", schema.ErrDanglingReference, id)
			if err := p.skip(id, err); err != nil {
				return nil, err
			}
			continue
		}

		table, err := p.table(node)
		if err != nil {
			if err := p.skip(id, err); err != nil {
				return nil, err
			}
			blocks = append(blocks, markdown.Title(2, id), notice(err))
			continue
		}

		blocks = append(blocks, markdown.Title(2, id), node.Description, table)
	}
	return blocks, nil
}

// table renders the table of a schema node and links the identities it refers to.
// Arrays and scalars have no rows, a single type row stands in for them.
func (p *pageBuilder) table(node *schema.Schema) (string, error) {
	res, err := p.tables.FromSchema(node)
	if err != nil {
		return "", err
	}
	p.link(res.TableRefs...)
	if res.Content != "" {
		return res.Content, nil
	}

	merged, err := p.refs.Merge(node)
	if err != nil {
		return "", err
	}
	if tag := types.Infer(merged); tag == types.Object || tag == types.OneOf {
		return "", nil
	}

	key := ""
	tableRef, ok := p.refs.Find(node)
	if !ok {
		tableRef, ok = p.refs.Find(merged)
	}
	if ok {
		key = "items"
	}

	data, err := p.tables.RowData(merged, key, tableRef)
	if err != nil {
		return "", err
	}
	p.link(data.Ref, data.RuntimeRef)

	return markdown.Table([][]string{
		{"Type", "Description"},
		{data.Type, data.Description},
	}), nil
}

func (p *pageBuilder) link(ids ...string) {
	for _, id := range ids {
		if id == "" || p.seen[id] {
			continue
		}
		p.seen[id] = true
		p.linked = append(p.linked, id)
	}
}

// skip returns the error unless broken schemas are skipped.
func (p *pageBuilder) skip(section string, err error) error {
	if p.onError != config.OnErrorSkip {
		return fmt.Errorf("%s: %w", section, err)
	}
	slog.Warn("schema skipped", "operation", p.op.ID, "section", section, "error", err)
	return nil
}

func notice(err error) string {
	return fmt.Sprintf(skippedNotice, err.Error())
}
