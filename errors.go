package repofs

import (
	"errors"
	"fmt"
)

// Common filesystem errors
var (
	ErrNotExist           = errors.New("file does not exist")
	ErrNotDir             = errors.New("not a directory")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotSupported       = errors.New("operation not supported")
	ErrCredentialNotFound = errors.New("no credential matches path")
)

// PathError records an error and the operation and path that caused it
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError wraps err with the operation and path that caused it.
func NewPathError(op, path string, err error) *PathError {
	return &PathError{Op: op, Path: path, Err: err}
}

// IsNotExist reports whether an error indicates that a file or directory
// does not exist
func IsNotExist(err error) bool {
	return errors.Is(err, ErrNotExist)
}

// IsNotSupported reports whether an error indicates an operation the
// backend declines to implement, or a backend whose driver is not linked in
func IsNotSupported(err error) bool {
	return errors.Is(err, ErrNotSupported)
}

// IsInvalidArgument reports whether an error indicates a malformed path or
// bucket name
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
