package openapi

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/cubahno/oasdocs/internal/files"
	"github.com/cubahno/oasdocs/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Document is a loaded OpenAPI document.
// kin-openapi enumerates operations and resolves parameter, request body and response references,
// schema nodes are decoded from the raw node tree so that property order is kept.
// Document implements refs.Source.
type Document struct {
	Title       string
	Version     string
	Description string
	Operations  []*Operation

	kin  *openapi3.T
	root *yaml.Node

	cache map[string]*schema.Schema
	mu    sync.Mutex
}

// LoadFile creates a new Document from a file path or URL.
func LoadFile(ctx context.Context, filePath string) (*Document, error) {
	data, err := files.Read(ctx, filePath)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Load creates a new Document from YAML or JSON contents.
func Load(data []byte) (*Document, error) {
	loader := openapi3.NewLoader()
	kin, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if kin.OpenAPI == "" {
		return nil, fmt.Errorf("%w: missing openapi version", ErrInvalidDocument)
	}

	root := &yaml.Node{}
	if err := yaml.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	doc := &Document{
		kin:   kin,
		root:  root,
		cache: make(map[string]*schema.Schema),
	}
	if kin.Info != nil {
		doc.Title = kin.Info.Title
		doc.Version = kin.Info.Version
		doc.Description = kin.Info.Description
	}

	ops, err := doc.operations()
	if err != nil {
		return nil, err
	}
	doc.Operations = ops

	slog.Debug("loaded openapi document", "title", doc.Title, "operations", len(ops))
	return doc, nil
}

// GetVersion returns the OpenAPI version of the document.
func (d *Document) GetVersion() string {
	return d.kin.OpenAPI
}

// Lookup implements refs.Source.
// Every pointer is decoded once, so the same ref always yields the same node.
func (d *Document) Lookup(ref string) (*schema.Schema, bool) {
	pointer, err := refPointer(ref)
	if err != nil {
		slog.Debug("reference not resolved", "ref", ref, "error", err)
		return nil, false
	}
	res, err := d.SchemaAt(pointer)
	if err != nil {
		slog.Debug("reference not resolved", "ref", ref, "error", err)
		return nil, false
	}
	return res, true
}

// SchemaAt decodes the schema node at the JSON pointer.
func (d *Document) SchemaAt(pointer string) (*schema.Schema, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if res, ok := d.cache[pointer]; ok {
		return res, nil
	}

	node, err := resolvePointer(d.root, pointer)
	if err != nil {
		return nil, err
	}

	res := &schema.Schema{}
	if err := node.Decode(res); err != nil {
		return nil, fmt.Errorf("%s: %w", pointer, err)
	}
	d.cache[pointer] = res
	return res, nil
}

// ComponentNames returns the names of components.schemas in declaration order.
func (d *Document) ComponentNames() []string {
	node, err := resolvePointer(d.root, "/components/schemas")
	if err != nil {
		return nil
	}
	return mappingKeys(node)
}

// FindOperation returns the operation with the ID.
func (d *Document) FindOperation(id string) *Operation {
	for _, op := range d.Operations {
		if op.ID == id {
			return op
		}
	}
	return nil
}

func (d *Document) operations() ([]*Operation, error) {
	paths := make([]string, 0, len(d.kin.Paths))
	for path := range d.kin.Paths {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var res []*Operation
	for _, path := range paths {
		item := d.kin.Paths[path]
		if item == nil {
			continue
		}
		pathPointer := joinPointer("/paths", path)

		for _, method := range methodsOrder {
			op := item.GetOperation(method)
			if op == nil {
				continue
			}
			opPointer := joinPointer(pathPointer, strings.ToLower(method))

			operation, err := d.operation(path, method, item, op, pathPointer, opPointer)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", method, path, err)
			}
			res = append(res, operation)
		}
	}

	return res, nil
}

func (d *Document) operation(path, method string, item *openapi3.PathItem, op *openapi3.Operation, pathPointer, opPointer string) (*Operation, error) {
	id := op.OperationID
	if id == "" {
		id = OperationID(method, path)
	}

	params, err := d.parameters(item.Parameters, op.Parameters, pathPointer, opPointer)
	if err != nil {
		return nil, err
	}

	body, err := d.requestBody(op.RequestBody, joinPointer(opPointer, "requestBody"))
	if err != nil {
		return nil, err
	}

	responses, err := d.responses(op.Responses, joinPointer(opPointer, "responses"))
	if err != nil {
		return nil, err
	}

	return &Operation{
		ID:          id,
		Method:      method,
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        op.Tags,
		Deprecated:  op.Deprecated,
		Parameters:  params,
		RequestBody: body,
		Responses:   responses,
	}, nil
}

// parameters combines path and operation parameters,
// an operation parameter replaces the path one with the same location and name.
func (d *Document) parameters(pathParams, opParams openapi3.Parameters, pathPointer, opPointer string) (Parameters, error) {
	var res Parameters
	index := make(map[string]int)

	add := func(list openapi3.Parameters, pointer string) error {
		for i, ref := range list {
			if ref == nil || ref.Value == nil {
				continue
			}
			param, err := d.parameter(ref, joinPointer(pointer, "parameters", fmt.Sprint(i)))
			if err != nil {
				return err
			}

			key := param.In + ":" + param.Name
			if pos, ok := index[key]; ok {
				res[pos] = param
				continue
			}
			index[key] = len(res)
			res = append(res, param)
		}
		return nil
	}

	if err := add(pathParams, pathPointer); err != nil {
		return nil, err
	}
	if err := add(opParams, opPointer); err != nil {
		return nil, err
	}
	return res, nil
}

func (d *Document) parameter(ref *openapi3.ParameterRef, pointer string) (*Parameter, error) {
	if ref.Ref != "" {
		var err error
		if pointer, err = refPointer(ref.Ref); err != nil {
			return nil, err
		}
	}

	p := ref.Value
	res := &Parameter{
		Name:        p.Name,
		In:          p.In,
		Description: p.Description,
		Required:    p.Required,
		Deprecated:  p.Deprecated,
	}

	var err error
	switch {
	case p.Schema != nil:
		res.Schema, err = d.SchemaAt(joinPointer(pointer, "schema"))
	case len(p.Content) > 0:
		res.Schema, err = d.contentSchema(p.Content, PickContentType(p.Content), pointer)
	}
	if err != nil {
		return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
	}

	return res, nil
}

func (d *Document) requestBody(ref *openapi3.RequestBodyRef, pointer string) (*RequestBody, error) {
	if ref == nil || ref.Value == nil {
		return nil, nil
	}
	if ref.Ref != "" {
		var err error
		if pointer, err = refPointer(ref.Ref); err != nil {
			return nil, err
		}
	}

	body := ref.Value
	contentType := PickContentType(body.Content)
	content, err := d.contentSchema(body.Content, contentType, pointer)
	if err != nil {
		return nil, fmt.Errorf("request body: %w", err)
	}

	return &RequestBody{
		Description: body.Description,
		Required:    body.Required,
		ContentType: contentType,
		Schema:      content,
	}, nil
}

func (d *Document) responses(available openapi3.Responses, pointer string) ([]*Response, error) {
	codes := make([]string, 0, len(available))
	for code := range available {
		codes = append(codes, code)
	}

	var res []*Response
	for _, code := range SortStatusCodes(codes) {
		ref := available[code]
		if ref == nil || ref.Value == nil {
			continue
		}

		respPointer := joinPointer(pointer, code)
		if ref.Ref != "" {
			var err error
			if respPointer, err = refPointer(ref.Ref); err != nil {
				return nil, err
			}
		}

		resp := ref.Value
		contentType := PickContentType(resp.Content)
		content, err := d.contentSchema(resp.Content, contentType, respPointer)
		if err != nil {
			return nil, fmt.Errorf("response %s: %w", code, err)
		}

		description := ""
		if resp.Description != nil {
			description = *resp.Description
		}

		res = append(res, &Response{
			Code:        code,
			Description: description,
			ContentType: contentType,
			Schema:      content,
		})
	}

	return res, nil
}

func (d *Document) contentSchema(content openapi3.Content, contentType, pointer string) (*schema.Schema, error) {
	if contentType == "" {
		return nil, nil
	}
	mediaType := content[contentType]
	if mediaType == nil || mediaType.Schema == nil {
		return nil, nil
	}
	return d.SchemaAt(joinPointer(pointer, "content", contentType, "schema"))
}
