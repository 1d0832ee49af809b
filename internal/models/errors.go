package models

import "errors"

// Sentinel errors shared across repositories, services and handlers. Wrap
// with fmt.Errorf("%w: ...") and match with errors.Is.
var (
	// ErrNotFound marks a lookup whose subject does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks input rejected before touching storage.
	ErrValidation = errors.New("validation failed")

	// ErrStorage marks a postgres failure the caller cannot act on.
	ErrStorage = errors.New("storage failure")
)
