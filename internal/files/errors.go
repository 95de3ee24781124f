package files

import "errors"

var (
	ErrFetchFailed  = errors.New("error getting file from url")
	ErrOutsideRoot  = errors.New("path is outside of the root directory")
	ErrEmptyAddress = errors.New("empty file path")
)
