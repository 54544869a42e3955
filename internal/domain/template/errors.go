package template

import "errors"

var (
	// ErrTemplateNotFound indicates the template doesn't exist or is inactive.
	ErrTemplateNotFound = errors.New("template not found or inactive")
	// ErrInvalidInput indicates invalid template input.
	ErrInvalidInput = errors.New("invalid template input")
)
