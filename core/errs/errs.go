package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across repositories and services.
var (
	// ErrNotFound is returned when a record or attachment key does not exist
	// in any storage tier.
	ErrNotFound = errors.New("not found")

	// ErrMinCardinality is returned when a removal would leave a collection
	// below its minimum size (last vendor, last line item).
	ErrMinCardinality = errors.New("minimum cardinality violated")

	ErrVendorNotFound   = errors.New("vendor not found")
	ErrLineItemNotFound = errors.New("line item not found")

	// ErrMalformedRecord signals a record that violates structural invariants
	// (no vendors at all). Such records never reach storage.
	ErrMalformedRecord = errors.New("malformed sourcing record")
)

// ValidationError rejects an attachment before it reaches persistence.
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("attachment %q rejected: %s", e.Name, e.Reason)
}

// TransformError wraps a failure in the binary transform pipeline.
// Fatal for the file being processed, never for its siblings.
type TransformError struct {
	Name string
	Err  error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %q: %v", e.Name, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// StorageWriteError reports a rejected or failed write to one storage tier.
type StorageWriteError struct {
	Tier string // "structured" or "mirror"
	Err  error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("%s store write failed: %v", e.Tier, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }
