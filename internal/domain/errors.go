package domain

import "errors"

// Failure taxonomy. Adapters and services wrap these with context so callers
// can classify with errors.Is.
var (
	// ErrNotFound marks an absent selector or text fragment.
	ErrNotFound = errors.New("not found")

	// ErrValidationFailure marks an unexpected error while injecting, checking or reverting a fix.
	ErrValidationFailure = errors.New("validation failure")

	// ErrIOFailure marks a file read or write error.
	ErrIOFailure = errors.New("io failure")

	// ErrMalformedInput marks a missing or structurally invalid report.
	ErrMalformedInput = errors.New("malformed input")
)
