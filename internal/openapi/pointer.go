package openapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cubahno/oasdocs/internal/refs"
	"gopkg.in/yaml.v3"
)

// refPointer returns the JSON pointer of a local reference.
func refPointer(ref string) (string, error) {
	if !strings.HasPrefix(ref, "#") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedRef, ref)
	}
	return ref[1:], nil
}

// joinPointer appends escaped tokens to a JSON pointer.
func joinPointer(pointer string, tokens ...string) string {
	var b strings.Builder
	b.WriteString(pointer)
	for _, token := range tokens {
		b.WriteByte('/')
		b.WriteString(refs.EncodePointerToken(token))
	}
	return b.String()
}

// resolvePointer walks a JSON pointer through the yaml node tree.
func resolvePointer(root *yaml.Node, pointer string) (*yaml.Node, error) {
	node := deref(root)
	if node != nil && node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = deref(node.Content[0])
	}
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrPointerNotFound, pointer)
	}
	if pointer == "" {
		return node, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("%w: %s", ErrPointerNotFound, pointer)
	}

	for _, raw := range strings.Split(pointer[1:], "/") {
		if unescaped, err := url.PathUnescape(raw); err == nil {
			raw = unescaped
		}
		next, ok := child(node, refs.DecodePointerToken(raw))
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPointerNotFound, pointer)
		}
		node = deref(next)
	}

	return node, nil
}

func child(node *yaml.Node, token string) (*yaml.Node, bool) {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == token {
				return node.Content[i+1], true
			}
		}
	case yaml.SequenceNode:
		idx, err := strconv.Atoi(token)
		if err == nil && idx >= 0 && idx < len(node.Content) {
			return node.Content[idx], true
		}
	}
	return nil, false
}

func deref(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

// mappingKeys returns the keys of a mapping node in declaration order.
func mappingKeys(node *yaml.Node) []string {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	res := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		res = append(res, node.Content[i].Value)
	}
	return res
}
