package schema

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedComposition  = errors.New("malformed composition")
	ErrUnsupportedArrayItems = fmt.Errorf("%w: unsupported array items", ErrMalformedComposition)
	ErrCyclicComposition     = fmt.Errorf("%w: cyclic composition", ErrMalformedComposition)
	ErrDanglingReference     = errors.New("dangling reference")
	ErrUnrepresentableSchema = errors.New("unrepresentable schema")
)
