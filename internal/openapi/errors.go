package openapi

import "errors"

var (
	ErrInvalidDocument = errors.New("invalid openapi document")
	ErrPointerNotFound = errors.New("json pointer not found")
	ErrUnsupportedRef  = errors.New("only local references are supported")
)
