// Package errors provides structured error types for the cobotgen application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the inspection API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Taxonomy
//
// Errors fall into two severity classes:
//   - CONFIG_*: configuration errors, fatal at startup, never raised mid-run
//   - per-image failures (sampling exhaustion, render failure) are NOT errors;
//     they are recorded as run-log outcomes and the run continues
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfigRange, "axis %s: min %.3f > max %.3f", axis, lo, hi)
//	if errors.Is(err, errors.ErrCodeConfigRange) {
//	    // handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSceneSource, origErr, "load scene %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors (fatal, run-level)
	ErrCodeConfigMissing Code = "CONFIG_MISSING_KEY"
	ErrCodeConfigRange   Code = "CONFIG_INVALID_RANGE"
	ErrCodeConfigValue   Code = "CONFIG_INVALID_VALUE"
	ErrCodeSceneSource   Code = "SCENE_SOURCE_UNREADABLE"

	// A constraint or scene references a role the loaded scene does not have
	ErrCodeRoleNotFound Code = "ROLE_NOT_FOUND"

	// External collaborator errors
	ErrCodeRender Code = "RENDER_ERROR"
	ErrCodeExport Code = "EXPORT_ERROR"

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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsConfiguration reports whether err is a configuration error, i.e. one of
// the CONFIG_* or scene-source codes that must abort the run at startup.
func IsConfiguration(err error) bool {
	switch GetCode(err) {
	case ErrCodeConfigMissing, ErrCodeConfigRange, ErrCodeConfigValue, ErrCodeSceneSource:
		return true
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
