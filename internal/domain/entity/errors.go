package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNoValidData means every candidate account in a batch failed
	// validation; the batch is skipped, not treated as a system fault.
	ErrNoValidData = errors.New("no valid data in batch")

	// ErrStoreUnavailable means the graph store could not be reached. It is
	// surfaced unmodified so retry policy stays with the caller.
	ErrStoreUnavailable = errors.New("graph store unavailable")

	// ErrEntityNotFound means a transfer referenced a key that resolves to no
	// account of any kind.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrMalformedFilter means a filter specification was rejected before
	// querying (unknown kind or out-of-range priority bound).
	ErrMalformedFilter = errors.New("malformed filter")
)

// ValidationError reports the identifying or required field that caused an
// account to be dropped from a batch.
type ValidationError struct {
	Kind  Kind
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: required field %q is empty", e.Kind, e.Field)
}
