package refs

import (
	"strings"

	"github.com/cubahno/oasdocs/pkg/schema"
)

const (
	ComponentsPrefix = "#/components/schemas/"
)

// Source resolves `$ref` pointers to schema nodes.
// The same ref must always resolve to the same pointer.
type Source interface {
	Lookup(ref string) (*schema.Schema, bool)
}

// Components is an in-memory Source keyed by component name.
type Components map[string]*schema.Schema

// Lookup implements Source.
func (c Components) Lookup(ref string) (*schema.Schema, bool) {
	if !strings.HasPrefix(ref, ComponentsPrefix) {
		return nil, false
	}
	res, ok := c[Name(ref)]
	return res, ok && res != nil
}

// Name returns the identity for a ref pointer:
// the component name for components.schemas entries, the pointer itself otherwise.
func Name(ref string) string {
	if !strings.HasPrefix(ref, ComponentsPrefix) {
		return ref
	}
	return DecodePointerToken(strings.TrimPrefix(ref, ComponentsPrefix))
}

// Ref builds a components.schemas pointer for the name.
func Ref(name string) string {
	return ComponentsPrefix + EncodePointerToken(name)
}

// DecodePointerToken unescapes a JSON pointer token.
func DecodePointerToken(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}

// EncodePointerToken escapes a JSON pointer token.
func EncodePointerToken(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}
