// Package errors provides structured error types for gremlin.
//
// Every failure the constraint core can report carries a machine-readable
// [Code], so callers (renderer adapters, the CLI) can branch on the kind of
// failure without matching message strings:
//   - Solving: INCONSISTENT_SYSTEM, NONLINEAR, DUPLICATE_DEFINITION
//   - Evaluation: NOT_FREE, MISSING_VALUE, CYCLIC_DEPENDENCY,
//     UNRESOLVED_VARIABLE, REENTRANT_UPDATE, UNKNOWN_VARIABLE
//   - Input: INVALID_*, FILE_NOT_FOUND
//
// None of these are transient; they indicate a malformed model or a
// programming error, so nothing in gremlin retries on them.
//
// # Usage
//
//	err := errors.ForVar(errors.ErrCodeNotFree, v.Name(), "%s is not a free variable", v)
//	if errors.Is(err, errors.ErrCodeNotFree) {
//	    // Handle misuse of Update
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidLayout, origErr, "parse %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Solving errors
	ErrCodeDuplicateDefinition Code = "DUPLICATE_DEFINITION"
	ErrCodeInconsistent        Code = "INCONSISTENT_SYSTEM"
	ErrCodeNonlinear           Code = "NONLINEAR"

	// Evaluation errors
	ErrCodeNotFree            Code = "NOT_FREE"
	ErrCodeMissingValue       Code = "MISSING_VALUE"
	ErrCodeCyclicDependency   Code = "CYCLIC_DEPENDENCY"
	ErrCodeUnresolvedVariable Code = "UNRESOLVED_VARIABLE"
	ErrCodeReentrantUpdate    Code = "REENTRANT_UPDATE"
	ErrCodeUnknownVariable    Code = "UNKNOWN_VARIABLE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidLayout Code = "INVALID_LAYOUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Var     string // Offending variable name (optional)
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ForVar creates a new Error that names the variable it concerns.
func ForVar(code Code, name string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Var:     name,
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetVar returns the variable name attached to the first *Error in the
// chain, or "" if there is none.
func GetVar(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Var
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Exit codes returned by the gremlin binary.
const (
	ExitFailure    = 1 // internal errors and errors without a code
	ExitUsage      = 2 // bad input: files, formats, assignments, layouts
	ExitConstraint = 3 // the constraint system or its evaluation failed
)

// ExitCode classifies err for the process exit status. A nil error is 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidLayout, ErrCodeInvalidFormat,
		ErrCodeFileNotFound, ErrCodeUnknownVariable:
		return ExitUsage
	case ErrCodeDuplicateDefinition, ErrCodeInconsistent, ErrCodeNonlinear,
		ErrCodeNotFree, ErrCodeMissingValue, ErrCodeCyclicDependency,
		ErrCodeUnresolvedVariable, ErrCodeReentrantUpdate:
		return ExitConstraint
	}
	return ExitFailure
}
