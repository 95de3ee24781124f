package refs

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cubahno/oasdocs/pkg/schema"
)

// Resolver is the resolution context of a single document.
// It turns nodes into their canonical form and keeps track of node identities:
// named components reached through `$ref` and runtime identities synthesized for inline schemas.
// A Resolver is not safe for concurrent use. Create one per document.
type Resolver struct {
	source         Source
	runtimeAllowed bool

	// names holds identities by node pointer
	names map[*schema.Schema]string

	// registry holds runtime identities, first registration wins
	registry map[string]*schema.Schema
	order    []string

	merged  map[*schema.Schema]*schema.Schema
	merging map[*schema.Schema]bool

	arena map[*schema.Schema]string
	seq   int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRuntimeRefs enables or disables promotion of inline schemas to runtime references.
func WithRuntimeRefs(allowed bool) Option {
	return func(r *Resolver) {
		r.runtimeAllowed = allowed
	}
}

// MergeOption configures a single Merge call.
type MergeOption func(*mergeConfig)

type mergeConfig struct {
	runtime bool
}

// WithoutRuntimeRefs keeps runtime identities from being carried over to the merged node.
func WithoutRuntimeRefs() MergeOption {
	return func(c *mergeConfig) {
		c.runtime = false
	}
}

// New creates a resolution context over the source.
func New(source Source, opts ...Option) *Resolver {
	if source == nil {
		source = Components{}
	}

	r := &Resolver{
		source:         source,
		runtimeAllowed: true,
		names:          make(map[*schema.Schema]string),
		registry:       make(map[string]*schema.Schema),
		merged:         make(map[*schema.Schema]*schema.Schema),
		merging:        make(map[*schema.Schema]bool),
		arena:          make(map[*schema.Schema]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RuntimeAllowed returns true if inline schemas may be promoted to runtime references.
func (r *Resolver) RuntimeAllowed() bool {
	return r.runtimeAllowed
}

// Find returns the identity of the node if it has one.
func (r *Resolver) Find(node *schema.Schema) (string, bool) {
	if node == nil {
		return "", false
	}
	if id, ok := r.names[node]; ok {
		return id, true
	}
	if node.Ref != "" {
		return Name(node.Ref), true
	}
	return "", false
}

// Identity returns a stable key for the node: its identity if it has one,
// otherwise a key assigned on first sight of the node.
// The first answer sticks even if the node is named later.
func (r *Resolver) Identity(node *schema.Schema) string {
	if id, ok := r.arena[node]; ok {
		return id
	}
	id, ok := r.Find(node)
	if !ok {
		r.seq++
		id = fmt.Sprintf("~%d", r.seq)
	}
	r.arena[node] = id
	return id
}

// Runtime registers an inline node under a synthesized identity.
// Registering an identity twice keeps the first node.
func (r *Resolver) Runtime(id string, node *schema.Schema) {
	if id == "" || node == nil {
		return
	}
	if _, exists := r.registry[id]; exists {
		return
	}

	r.registry[id] = node
	r.order = append(r.order, id)
	if _, named := r.names[node]; !named {
		r.names[node] = id
	}
	slog.Debug("registered runtime reference", "ref", id)
}

// Runtimes returns runtime identities in registration order.
func (r *Resolver) Runtimes() []string {
	return append([]string(nil), r.order...)
}

// IsRuntime returns true if the identity was synthesized at runtime.
func (r *Resolver) IsRuntime(id string) bool {
	_, ok := r.registry[id]
	return ok
}

// Lookup returns the node registered under the identity.
// Runtime identities take precedence over named components.
func (r *Resolver) Lookup(id string) (*schema.Schema, bool) {
	if node, ok := r.registry[id]; ok {
		return node, true
	}

	ref := id
	if !strings.HasPrefix(id, "#") {
		ref = Ref(id)
	}
	node, ok := r.source.Lookup(ref)
	if !ok {
		return nil, false
	}
	r.inherit(node, id)
	return node, true
}

// Merge returns the canonical form of the node: `$ref` dereferenced, allOf flattened
// and anyOf folded into oneOf.
// Nodes without composition are returned as is.
// Merging the same node again returns the same canonical node.
func (r *Resolver) Merge(node *schema.Schema, opts ...MergeOption) (*schema.Schema, error) {
	cfg := mergeConfig{runtime: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if node == nil {
		return emptySchema, nil
	}

	res, err := r.merge(node)
	if err != nil {
		return nil, err
	}

	if id, ok := r.Find(node); ok && res != node {
		if !r.IsRuntime(id) || cfg.runtime {
			r.inherit(res, id)
		}
	}
	return res, nil
}

func (r *Resolver) merge(node *schema.Schema) (*schema.Schema, error) {
	if !node.IsComposed() {
		return node, nil
	}
	if res, ok := r.merged[node]; ok {
		return res, nil
	}
	if r.merging[node] {
		return nil, fmt.Errorf("%w: %s", schema.ErrCyclicComposition, r.describe(node))
	}
	r.merging[node] = true
	defer delete(r.merging, node)

	var parts []*schema.Schema

	if node.Ref != "" {
		target, err := r.deref(node.Ref)
		if err != nil {
			return nil, err
		}
		resolved, err := r.merge(target)
		if err != nil {
			return nil, err
		}
		r.inherit(resolved, Name(node.Ref))
		parts = append(parts, resolved)
	}

	for i, member := range node.AllOf {
		if member == nil {
			continue
		}
		resolved, err := r.merge(member)
		if err != nil {
			return nil, fmt.Errorf("allOf[%d]: %w", i, err)
		}
		parts = append(parts, resolved)
	}

	own := ownKeywords(node)

	var res *schema.Schema
	if len(parts) == 1 && isBlank(own) {
		res = parts[0]
	} else {
		res = &schema.Schema{}
		for _, part := range parts {
			mergeInto(res, part)
		}
		mergeInto(res, own)
	}

	r.merged[node] = res
	return res, nil
}

func (r *Resolver) deref(ref string) (*schema.Schema, error) {
	target, ok := r.source.Lookup(ref)
	if !ok || target == nil {
		return nil, fmt.Errorf("%w: %s", schema.ErrDanglingReference, ref)
	}
	r.inherit(target, Name(ref))
	slog.Debug("resolved reference", "ref", ref)
	return target, nil
}

// inherit assigns the identity unless the node already has one.
func (r *Resolver) inherit(node *schema.Schema, id string) {
	if node == nil || node == emptySchema {
		return
	}
	if _, ok := r.names[node]; !ok {
		r.names[node] = id
	}
}

func (r *Resolver) describe(node *schema.Schema) string {
	if id, ok := r.Find(node); ok {
		return id
	}
	return "inline schema"
}
