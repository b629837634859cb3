package shared

import "errors"

var (
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates input rejected before reaching persistence.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates the change collides with existing state.
	ErrConflict = errors.New("conflict")
)
