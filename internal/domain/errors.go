package domain

import "errors"

// Error kinds returned by the lending core. Operations wrap these with
// fmt.Errorf("...: %w", err) so callers classify with errors.Is.
var (
	// ErrInvalidInput marks missing or oversized fields
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks an absent user, tool, or transaction
	ErrNotFound = errors.New("not found")

	// ErrConflict marks an unavailable tool, an active transaction blocking a
	// delete, or a similar state collision
	ErrConflict = errors.New("conflict")

	// ErrInvalidState marks an illegal transaction state transition, such as
	// returning an already-returned transaction
	ErrInvalidState = errors.New("invalid state")
)
