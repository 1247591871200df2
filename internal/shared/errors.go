package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates caller-facing input problems surfaced before
	// any transaction begins.
	ErrValidation = errors.New("invalid input")
	// ErrCollaborator indicates an opaque stored function returned no result
	// where one was expected.
	ErrCollaborator = errors.New("storage collaborator returned no result")
)
