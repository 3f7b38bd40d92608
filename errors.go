package pathkit

import (
	"errors"
	"fmt"
)

// Path value errors. These are raised by parsing and by the path operators and
// always describe a caller mistake, never a transient condition.
var (
	ErrMalformedPath        = errors.New("malformed path")
	ErrIncompatibleRoots    = errors.New("incompatible roots")
	ErrNotAPrefix           = errors.New("not a prefix")
	ErrTooManyParentRefs    = errors.New("too many parent references")
	ErrUnsupportedOperation = errors.New("operation not supported on paths")
	ErrSubstringNotFound    = errors.New("substring not found")
	ErrMixedAbsolute        = errors.New("cannot mix absolute and relative paths")
	ErrEmptyPathList        = errors.New("no paths given")
	ErrInvalidPlatform      = errors.New("invalid platform")
)

// Filesystem errors reported by collaborators.
var (
	ErrNotExist     = errors.New("file does not exist")
	ErrExist        = errors.New("file already exists")
	ErrNotDir       = errors.New("not a directory")
	ErrIsDir        = errors.New("is a directory")
	ErrNotAllowed   = errors.New("operation not allowed")
	ErrNotSupported = errors.New("operation not supported")
)

// PathError records an error together with the operation and the operands
// that caused it. Other is empty for unary operations.
type PathError struct {
	Op    string
	Path  string
	Other string
	Err   error
}

// Error implements the error interface
func (e *PathError) Error() string {
	if e.Other != "" {
		return fmt.Sprintf("%s %q, %q: %v", e.Op, e.Path, e.Other, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *PathError) Unwrap() error {
	return e.Err
}

func opError(op, path, other string, err error) error {
	return &PathError{Op: op, Path: path, Other: other, Err: err}
}

// IsMalformed reports whether err was caused by an empty interior segment.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedPath)
}

// IsIncompatibleRoots reports whether err was caused by mixing volumes or
// protocols.
func IsIncompatibleRoots(err error) bool {
	return errors.Is(err, ErrIncompatibleRoots)
}

// IsNotAPrefix reports whether a subtraction failed because the operand was
// not a leading part of the path.
func IsNotAPrefix(err error) bool {
	return errors.Is(err, ErrNotAPrefix)
}

// IsTooManyParentRefs reports whether a fuse walked above the root.
func IsTooManyParentRefs(err error) bool {
	return errors.Is(err, ErrTooManyParentRefs)
}

// IsUnsupported reports whether err is a permanent rejection of an operation
// that has no meaning for paths.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupportedOperation)
}

// IsNotExist reports whether an error indicates that a file or directory
// does not exist
func IsNotExist(err error) bool {
	return errors.Is(err, ErrNotExist)
}

// IsExist reports whether an error indicates that a file or directory
// already exists
func IsExist(err error) bool {
	return errors.Is(err, ErrExist)
}
