package types

import (
	"strings"

	"github.com/cubahno/oasdocs/pkg/schema"
)

const (
	enumLabel    = `<span style="color:gray;">Enum</span>: `
	defaultLabel = `<span style="color:gray;">Default</span>: `
	exampleLabel = `<span style="color:gray;">Example</span>: `
)

// ComplexDescription appends enum values, the default and the example to base, in that order.
// Each goes on its own line and only when present.
func ComplexDescription(base string, s *schema.Schema) string {
	if s == nil {
		return base
	}

	res := base
	if len(s.Enum) > 0 {
		values := make([]string, 0, len(s.Enum))
		for _, v := range s.Enum {
			values = append(values, "`"+InlineValue(v)+"`")
		}
		res = ConcatNewLine(res, enumLabel+strings.Join(values, ", "))
	}

	if s.Default != nil {
		res = ConcatNewLine(res, defaultLabel+"`"+InlineValue(s.Default)+"`")
	}

	if s.Example != nil {
		res = ConcatNewLine(res, exampleLabel+"`"+InlineValue(s.Example)+"`")
	}

	return res
}

// ConcatNewLine joins two non-empty parts with a line break.
func ConcatNewLine(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	if suffix == "" {
		return prefix
	}
	return prefix + "\n" + suffix
}
