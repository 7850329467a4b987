package ledger

import (
	"errors" // Error inspection
	"fmt"    // Error wrapping
)

var (
	// ErrNotFound is returned when the referenced user or transaction does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when a transaction exists but belongs to another user.
	// The HTTP layer reports it exactly like ErrNotFound so other users' ids stay hidden.
	ErrForbidden = errors.New("forbidden")
)

// PersistenceError reports a failed or inconsistent store operation.
type PersistenceError struct {
	Op  string
	Err error
}

func newPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying store error
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
