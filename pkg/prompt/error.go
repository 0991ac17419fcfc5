package prompt

import "errors"

var (
	// ErrMissingVariable is returned when a template placeholder has no value.
	ErrMissingVariable = errors.New("missing template variable")

	// ErrTemplateNotFound is returned when no override or embedded template
	// exists for a name.
	ErrTemplateNotFound = errors.New("template not found")
)
