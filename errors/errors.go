// Package errors defines the structured error kinds raised while normalizing
// and recursion-checking a JSON Schema document.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies one of the normalizer's distinguished failure kinds.
type ErrorCode string

const (
	// InvalidIdentifier indicates a URI could not be parsed or loaded.
	InvalidIdentifier ErrorCode = "invalid-identifier"
	// InvalidFragment indicates a $ref fragment does not resolve inside its target.
	InvalidFragment ErrorCode = "invalid-fragment"
	// InvalidReference indicates a $ref target could not be obtained.
	InvalidReference ErrorCode = "invalid-reference"
	// DistributedSchema indicates a remote fetch was needed but policy forbids it.
	DistributedSchema ErrorCode = "distributed-schema"
	// DraftValidation indicates the input is not structurally valid for its declared draft.
	DraftValidation ErrorCode = "draft-validation"
	// NotCached indicates the fetch cache has no entry for a requested URL.
	NotCached ErrorCode = "not-cached"
)

// SchemaError carries one of the ErrorCode kinds above along with the
// identifier it occurred at and, where applicable, a wrapped cause.
type SchemaError struct {
	Code       ErrorCode
	Identifier string
	Err        error
}

// Error implements error.
func (e *SchemaError) Error() string {
	if e == nil {
		return "schema error <nil>"
	}
	if e.Identifier == "" {
		if e.Err != nil {
			return fmt.Sprintf("[%s] %v", e.Code, e.Err)
		}
		return string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Identifier, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Identifier)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *SchemaError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New builds a SchemaError with no wrapped cause.
func New(code ErrorCode, identifier string) *SchemaError {
	return &SchemaError{Code: code, Identifier: identifier}
}

// Wrap builds a SchemaError wrapping cause.
func Wrap(code ErrorCode, identifier string, cause error) *SchemaError {
	return &SchemaError{Code: code, Identifier: identifier, Err: cause}
}

// Is reports whether err carries the given ErrorCode.
func Is(err error, code ErrorCode) bool {
	var se *SchemaError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// Code extracts the ErrorCode from err, if it is (or wraps) a SchemaError.
func Code(err error) (ErrorCode, bool) {
	var se *SchemaError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return "", false
}
