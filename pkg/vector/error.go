package vector

import "errors"

var (
	// ErrNotFound is returned when a document is not found in the vector store.
	ErrNotFound = errors.New("document not found")

	// ErrConnection is returned when the vector store connection fails.
	ErrConnection = errors.New("vector store connection failed")

	// ErrEmptyFilter is returned by DeleteWhere when no filter pairs are given.
	ErrEmptyFilter = errors.New("delete filter must not be empty")
)
