// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package checkpoint

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ErrInvalidHeight indicates a checkpoint height is negative or does
	// not fit in the 32-bit height used by the signature digest.
	ErrInvalidHeight = ErrorKind("ErrInvalidHeight")

	// ErrInvalidKey indicates a signing key is missing or zero.
	ErrInvalidKey = ErrorKind("ErrInvalidKey")

	// ErrCorruptCheckpoint indicates a stored checkpoint record could not
	// be decoded.
	ErrCorruptCheckpoint = ErrorKind("ErrCorruptCheckpoint")

	// ErrStorage indicates the underlying database failed.  The backend
	// error is available through the RawErr field of the ContextError.
	ErrStorage = ErrorKind("ErrStorage")

	// ErrCheckpointNotFound indicates no checkpoint is stored at the
	// requested height.
	ErrCheckpointNotFound = ErrorKind("ErrCheckpointNotFound")

	// ErrBadCheckpointSignature indicates a checkpoint signature does not
	// verify against the checkpoint public key.
	ErrBadCheckpointSignature = ErrorKind("ErrBadCheckpointSignature")

	// ErrForkTooOld indicates a chain reorganization would fork below the
	// most recent trusted checkpoint.
	ErrForkTooOld = ErrorKind("ErrForkTooOld")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// ContextError wraps an error with additional context.  It has full support for
// errors.Is and errors.As, so the caller can ascertain the specific wrapped
// error.
type ContextError struct {
	Err         error
	RawErr      error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e ContextError) Error() string {
	if e.RawErr != nil {
		return e.Description + ": " + e.RawErr.Error()
	}
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e ContextError) Unwrap() error {
	return e.Err
}

// contextError creates a ContextError given a set of arguments.
func contextError(kind ErrorKind, desc string) ContextError {
	return ContextError{Err: kind, Description: desc}
}

// storageError creates a ContextError of kind ErrStorage wrapping the passed
// database error.
func storageError(desc string, dbErr error) ContextError {
	return ContextError{Err: ErrStorage, RawErr: dbErr, Description: desc}
}

// RuleError identifies a checkpoint rule violation.  It has full support for
// errors.Is and errors.As, so the caller can ascertain the specific reason for
// the rule violation.
type RuleError struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e RuleError) Unwrap() error {
	return e.Err
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(kind ErrorKind, desc string) RuleError {
	return RuleError{Err: kind, Description: desc}
}
