// Package sample builds representative example values from schema nodes.
package sample

import (
	"fmt"
	"log/slog"

	"github.com/cubahno/oasdocs/internal/refs"
	"github.com/cubahno/oasdocs/internal/types"
	"github.com/cubahno/oasdocs/pkg/schema"
)

const (
	UUIDValue     = "c3073b9d-edd0-49f2-a28d-b7ded8ff9a8b"
	DateTimeValue = "2022-12-29T18:02:01Z"
	StringValue   = "string"
)

// Sampler synthesizes sample values within a resolution context.
type Sampler struct {
	refs     *refs.Resolver
	warnings []string
}

// New creates a Sampler.
func New(resolver *refs.Resolver) *Sampler {
	return &Sampler{refs: resolver}
}

// Warnings returns the schema problems noticed so far, such as required properties forming a cycle.
func (s *Sampler) Warnings() []string {
	return append([]string(nil), s.warnings...)
}

// Object returns a sample for the node.
// A literal example wins, otherwise the value is built from the first usable oneOf branch.
// Objects come back as *Object, omitted values as nil.
func (s *Sampler) Object(node *schema.Schema) (any, error) {
	return s.object(node, nil)
}

func (s *Sampler) object(node *schema.Schema, stack *callStack) (any, error) {
	if node == nil {
		return NewObject(), nil
	}
	if node.Example != nil {
		return node.Example, nil
	}

	merged, err := s.refs.Merge(node)
	if err != nil {
		return nil, err
	}
	chosen, err := s.FindNonNullOneOf(merged)
	if err != nil {
		return nil, err
	}

	if types.Infer(chosen) != types.Object && len(chosen.Properties) == 0 {
		value, _, err := s.element("", chosen, true, stack)
		return value, err
	}

	stack = stack.push(s.refs.Identity(merged))
	if chosen != merged {
		stack = stack.push(s.refs.Identity(chosen))
	}

	res := NewObject()
	for _, prop := range chosen.Properties {
		value, ok, err := s.element(prop.Name, prop.Schema, chosen.IsRequired(prop.Name), stack)
		if err != nil {
			return nil, err
		}
		if ok {
			res.Set(prop.Name, value)
		}
	}
	return res, nil
}

// element returns a sample for a property value.
// The second result is false when the value is omitted.
func (s *Sampler) element(key string, node *schema.Schema, required bool, stack *callStack) (any, bool, error) {
	value, err := s.refs.Merge(node)
	if err != nil {
		return nil, false, wrapKey(key, err)
	}

	if value.Example != nil {
		return value.Example, true, nil
	}
	if len(value.Enum) > 0 {
		return value.Enum[0], true, nil
	}
	if value.Default != nil {
		return value.Default, true, nil
	}

	id := s.refs.Identity(value)
	if stack.contains(id) {
		if !required {
			return nil, false, nil
		}
		s.warn(key, id)
		return placeholder(value), true, nil
	}
	down := stack.push(id)

	switch types.Infer(value) {
	case types.Object:
		res, err := s.object(value, down)
		return res, true, err
	case types.Array:
		items, err := value.ArrayItems()
		if err != nil {
			return nil, false, wrapKey(key, err)
		}
		item, ok, err := s.element(key, items, false, down)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return []any{}, true, nil
		}
		return []any{item}, true, nil
	case types.String:
		return stringValue(value.Format), true, nil
	case types.Number, types.Integer:
		return 0, true, nil
	case types.Boolean:
		return false, true, nil
	case types.OneOf:
		chosen, err := s.FindNonNullOneOf(value)
		if err != nil {
			return nil, false, wrapKey(key, err)
		}
		return s.element(key, chosen, required, down)
	}

	// unrecognized type with properties still describes an object
	if len(value.Properties) > 0 {
		res, err := s.object(value, down)
		return res, true, err
	}
	return nil, false, nil
}

// FindNonNullOneOf returns the node itself when it is usable or has no alternatives,
// otherwise the first usable branch, searching nested oneOf breadth-first.
// A branch is usable when it is a scalar, an array or declares properties.
func (s *Sampler) FindNonNullOneOf(node *schema.Schema) (*schema.Schema, error) {
	merged, err := s.refs.Merge(node)
	if err != nil {
		return nil, err
	}
	if usable(merged) || len(merged.OneOf) == 0 {
		return merged, nil
	}

	visited := map[*schema.Schema]bool{merged: true}
	queue := append([]*schema.Schema(nil), merged.OneOf...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		branch, err := s.refs.Merge(next)
		if err != nil {
			return nil, err
		}
		if visited[branch] {
			continue
		}
		visited[branch] = true

		if usable(branch) {
			return branch, nil
		}
		queue = append(queue, branch.OneOf...)
	}

	return nil, fmt.Errorf("%w: no usable oneOf branch in %s", schema.ErrUnrepresentableSchema, s.refs.Identity(merged))
}

func (s *Sampler) warn(key, id string) {
	msg := fmt.Sprintf("required property %q cycles back to %s, sample uses an empty value", key, id)
	s.warnings = append(s.warnings, msg)
	slog.Warn("required property forms a cycle", "property", key, "ref", id)
}

func usable(s *schema.Schema) bool {
	tag := types.Infer(s)
	return tag.IsPrimitive() || tag == types.Array || len(s.Properties) > 0
}

func stringValue(format string) string {
	switch format {
	case "uuid":
		return UUIDValue
	case "date-time":
		return DateTimeValue
	}
	return StringValue
}

func placeholder(s *schema.Schema) any {
	switch types.Infer(s) {
	case types.Object:
		return NewObject()
	case types.Array:
		return []any{}
	}
	if len(s.Properties) > 0 {
		return NewObject()
	}
	return nil
}

func wrapKey(key string, err error) error {
	if key == "" {
		return err
	}
	return fmt.Errorf("%s: %w", key, err)
}

// callStack is the path of node identities being expanded.
// Pushing returns a new stack, the parent path is left untouched.
type callStack struct {
	id     string
	parent *callStack
}

func (c *callStack) push(id string) *callStack {
	return &callStack{id: id, parent: c}
}

func (c *callStack) contains(id string) bool {
	for cur := c; cur != nil; cur = cur.parent {
		if cur.id == id {
			return true
		}
	}
	return false
}
