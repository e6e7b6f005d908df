// Package errors provides structured error types for docdiagrams.
//
// Every failure in a run is local to one document or one diagram. Codes let
// the orchestrator and the CLI decide how to count and report a failure
// without matching on message text.
//
// # Error Codes
//
//   - INVALID_*: input or configuration validation failures
//   - UNREADABLE_FILE, FILE_NOT_FOUND: filesystem lookups
//   - RENDER_REJECTED: the rendering service refused a diagram
//   - NETWORK_ERROR, TIMEOUT: transport failures talking to the service
//   - WRITE_ERROR: an output file could not be written
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSyntax, "unknown diagram type: %s", line)
//	if errors.Is(err, errors.ErrCodeInvalidSyntax) {
//	    // count as syntax_error
//	}
//
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "post %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidSyntax Code = "INVALID_SYNTAX"

	// Filesystem errors
	ErrCodeUnreadableFile Code = "UNREADABLE_FILE"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"
	ErrCodeWrite          Code = "WRITE_ERROR"

	// Rendering service errors
	ErrCodeRenderRejected Code = "RENDER_REJECTED"
	ErrCodeNetwork        Code = "NETWORK_ERROR"
	ErrCodeTimeout        Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
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

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether the outermost *Error in err's chain has the given code.
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

// UserMessage returns err as shown to a user: an *Error loses its code
// prefix but keeps its cause, anything else prints as is.
func UserMessage(err error) string {
	e, ok := err.(*Error)
	if !ok {
		return err.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}
