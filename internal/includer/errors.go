package includer

import "errors"

var (
	ErrUnknownComponent = errors.New("unknown component")
	ErrUnknownOperation = errors.New("unknown operation")
)
