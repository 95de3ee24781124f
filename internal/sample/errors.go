package sample

import "errors"

var (
	ErrUnknownFormat = errors.New("unknown sample format")
)
