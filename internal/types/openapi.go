package types

import (
	"github.com/cubahno/oasdocs/pkg/schema"
)

const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// Tag is the closed set of shapes a schema node can denote.
type Tag int

const (
	Unknown Tag = iota
	String
	Number
	Integer
	Boolean
	Object
	Array
	OneOf
)

func (t Tag) String() string {
	switch t {
	case String:
		return TypeString
	case Number:
		return TypeNumber
	case Integer:
		return TypeInteger
	case Boolean:
		return TypeBoolean
	case Object:
		return TypeObject
	case Array:
		return TypeArray
	case OneOf:
		return "oneOf"
	}
	return "unknown"
}

// IsPrimitive returns true for scalar tags.
func (t Tag) IsPrimitive() bool {
	switch t {
	case String, Number, Integer, Boolean:
		return true
	}
	return false
}

// ParseTag converts an OpenAPI type keyword to a Tag.
func ParseTag(typ string) Tag {
	switch typ {
	case TypeString:
		return String
	case TypeNumber:
		return Number
	case TypeInteger:
		return Integer
	case TypeBoolean:
		return Boolean
	case TypeObject:
		return Object
	case TypeArray:
		return Array
	}
	return Unknown
}

// Infer classifies a node.
// The declared type wins, otherwise the shape decides:
// properties make an object, items an array, oneOf a oneOf.
func Infer(s *schema.Schema) Tag {
	if s == nil {
		return Unknown
	}
	if s.Type != "" {
		return ParseTag(s.Type)
	}
	switch {
	case len(s.Properties) > 0:
		return Object
	case s.Items != nil:
		return Array
	case len(s.OneOf) > 0:
		return OneOf
	}
	return Unknown
}

// Label returns the display label of a tag.
func Label(t Tag) string {
	if t == Unknown {
		return "any"
	}
	return t.String()
}

// FormatSuffix renders the format as an escaped <format> suffix.
func FormatSuffix(format string) string {
	if format == "" {
		return ""
	}
	return "&lt;" + format + "&gt;"
}

// TypeText returns the type label with its format suffix.
func TypeText(s *schema.Schema) string {
	text := Label(Infer(s))
	if s != nil {
		text += FormatSuffix(s.Format)
	}
	return text
}
