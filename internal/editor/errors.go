package editor

import "errors"

var (
	ErrSectionNotFound = errors.New("section not found")
	ErrLineOutOfRange  = errors.New("line index out of range")
	ErrLastSection     = errors.New("a song must have at least one section")
)
