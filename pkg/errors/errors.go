// Package errors provides structured error types for parley.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the editor, playback engine, CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow the failure taxonomy of the dialogue tooling:
//   - DOCUMENT_*: a conversation document is missing or structurally invalid
//   - DANGLING_REFERENCE: a line or choice points at an id that does not exist
//   - INVALID_*: a request arrived in the wrong state or with bad arguments
//   - STORE_ERROR, INTERNAL_ERROR: backend and unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDocumentMalformed, "conversation list is empty in %s", path)
//	if errors.Is(err, errors.ErrCodeDocumentMalformed) {
//	    // Report to the author, keep the previous graph
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDocumentNotFound, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Document errors
	ErrCodeDocumentNotFound  Code = "DOCUMENT_NOT_FOUND"
	ErrCodeDocumentMalformed Code = "DOCUMENT_MALFORMED"

	// Graph errors
	ErrCodeDanglingReference Code = "DANGLING_REFERENCE"
	ErrCodeNodeNotFound      Code = "NODE_NOT_FOUND"

	// Request errors
	ErrCodeInvalidState Code = "INVALID_STATE"
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidName  Code = "INVALID_NAME"

	// ErrCodeSessionNotFound is returned by the HTTP backend for an unknown
	// editor session.
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Backend errors
	ErrCodeStore    Code = "STORE_ERROR"
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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or *DanglingReferenceError
// with a matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var d *DanglingReferenceError
	if errors.As(err, &d) {
		return d.Code()
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

// DanglingReferenceError describes a link whose target does not resolve to a
// live line. Choice is -1 for a direct line link.
type DanglingReferenceError struct {
	From   int // id of the line owning the link
	Choice int // choice index, or -1 for the line's own link
	Target int // unresolved target id
	Self   bool
}

// Error implements the error interface.
func (e *DanglingReferenceError) Error() string {
	what := "link"
	if e.Choice >= 0 {
		what = fmt.Sprintf("choice %d", e.Choice)
	}
	if e.Self {
		return fmt.Sprintf("dangling reference: %s of line %d points at itself", what, e.From)
	}
	return fmt.Sprintf("dangling reference: %s of line %d points at missing line %d", what, e.From, e.Target)
}

// Code returns the error code for this error type.
func (e *DanglingReferenceError) Code() Code {
	return ErrCodeDanglingReference
}
