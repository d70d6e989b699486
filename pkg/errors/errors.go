// Package errors provides structured error types for NetMap.
//
// This package defines error codes and types that enable:
//   - Fail-fast reporting of calls made while a layout is in flight
//   - Machine-readable error codes for programmatic handling
//   - Identification of the public operation that was refused
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: the call was refused before any state changed
//   - LAYOUT_*: the background layout algorithm failed
//   - NOT_FOUND: a referenced element or resource does not exist
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	if c.IsDrawing() {
//	    return errors.InvalidState("SetSelected", c.State())
//	}
//	if errors.Is(err, errors.ErrCodeInvalidState) {
//	    // retry after the layout completes
//	}
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Refused calls
	ErrCodeInvalidState    Code = "INVALID_STATE"
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"

	// Layout errors
	ErrCodeLayoutFailed Code = "LAYOUT_FAILED"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Op      string // Public operation that failed (optional)
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := string(e.Code)
	if e.Op != "" {
		prefix += ": " + e.Op
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
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

// InvalidState reports that op cannot run in the current drawing state.
// The state is formatted with %v so any Stringer works.
func InvalidState(op string, state any) *Error {
	return &Error{
		Code:    ErrCodeInvalidState,
		Op:      op,
		Message: fmt.Sprintf("not allowed while drawing (state %v)", state),
	}
}

// InvalidArgument reports a rejected argument to op.
func InvalidArgument(op, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidArgument,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
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

// GetOp extracts the failing operation name from an error, if available.
func GetOp(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Op != "" {
			return e.Op + ": " + e.Message
		}
		return e.Message
	}
	return err.Error()
}

// IsCancellation reports whether err is, or wraps, context cancellation or
// deadline expiry. Cancellation is a status rather than a failure.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
