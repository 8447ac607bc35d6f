// Package errors provides structured error types for the archmap application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, server, and pipeline
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - PROJECT_*: project reading failures
//   - LSP_*: language-server failures
//   - INVALID_* / INTERNAL_*: programmer errors detected at runtime
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNoCodeFilesFound, "no code files under %s", path)
//	if errors.Is(err, errors.ErrCodeNoCodeFilesFound) {
//	    // Handle missing sources
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeLspUnreachable, origErr, "connect %s", addr)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Project reading errors. Both are fatal: the pipeline transitions to
	// its failed state.
	ErrCodeProjectFolderMissing Code = "PROJECT_FOLDER_MISSING"
	ErrCodeNoCodeFilesFound     Code = "NO_CODE_FILES_FOUND"

	// Language-server errors. Non-fatal: analysis continues with the
	// partial symbol data obtained so far.
	ErrCodeLspUnreachable Code = "LSP_UNREACHABLE"

	// Programmer errors. Both abort the pipeline.
	ErrCodeInvalidGraphMutation       Code = "INVALID_GRAPH_MUTATION"
	ErrCodeInternalInvariantViolation Code = "INTERNAL_INVARIANT_VIOLATION"

	// Cancellation via context.
	ErrCodeCancelled Code = "CANCELLED"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// IsFatal reports whether the error should stop the pipeline. Language
// server failures are the only recoverable coded kind; an error that
// carries no code also reports false.
func IsFatal(err error) bool {
	code := GetCode(err)
	return code != ErrCodeLspUnreachable && code != ""
}
