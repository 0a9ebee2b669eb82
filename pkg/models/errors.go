package models

import "fmt"

// ErrorKind categorizes per-entry comparison failures
type ErrorKind string

const (
	// ErrIO indicates the entry could not be read
	ErrIO ErrorKind = "io"
	// ErrDecode indicates the bytes do not parse as their classified type
	ErrDecode ErrorKind = "decode"
	// ErrUnsupported indicates a classified type this build cannot decode
	ErrUnsupported ErrorKind = "unsupported_format"
	// ErrResource indicates decoding exceeded available memory or time
	ErrResource ErrorKind = "resource_exhausted"
)

// Side names which input tree an error originated from
type Side string

const (
	// SideExpected is the reference tree
	SideExpected Side = "expected"
	// SideActual is the tree under test
	SideActual Side = "actual"
)

// CompareError is a per-entry failure. It is captured at the single pair
// being compared and degrades that path to an error node; it never aborts
// the traversal of sibling paths.
type CompareError struct {
	Kind ErrorKind
	Path string
	Side Side
	Err  error
}

// NewCompareError creates a comparison error for one entry
func NewCompareError(kind ErrorKind, path string, side Side, err error) *CompareError {
	return &CompareError{Kind: kind, Path: path, Side: side, Err: err}
}

// Error implements the error interface
func (e *CompareError) Error() string {
	if e.Side != "" {
		return fmt.Sprintf("%s error on %s side of %q: %v", e.Kind, e.Side, e.Path, e.Err)
	}
	return fmt.Sprintf("%s error at %q: %v", e.Kind, e.Path, e.Err)
}

// Unwrap exposes the underlying cause
func (e *CompareError) Unwrap() error {
	return e.Err
}

// ValidationError reports an invalid configuration field
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
