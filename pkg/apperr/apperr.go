// Package apperr defines the error taxonomy shared by the scope guard,
// credential store, and notification ledger.
package apperr

import "errors"

var (
	// ErrDenied means the caller's role or tenant scope does not permit the action.
	ErrDenied = errors.New("denied")
	// ErrNotFound means the target does not exist within the caller's authorized
	// scope. A resource in another tenant is reported identically.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a concurrent mutation won the race, or the target row is
	// in a state that refuses the mutation (e.g. inactive).
	ErrConflict = errors.New("conflict")
	// ErrInvalid means malformed or out-of-range input.
	ErrInvalid = errors.New("invalid")
)
