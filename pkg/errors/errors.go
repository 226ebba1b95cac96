// Package errors provides structured error types for strata.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the numeric core, workflows and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Non-fatal warnings that carry the numeric residual behind them
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (raised where the input is malformed)
//   - *NOT_FOUND: Lookup failures (unknown lithology or model name)
//   - INTERNAL_ERROR / NO_COVERAGE: Collaborator or bundled-data contract violations
//
// Missing grid coverage at a point is not an error. It is reported with the
// NaN sentinel from package grid.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFractions, "fractions sum to %g", sum)
//	if errors.Is(err, errors.ErrCodeInvalidFractions) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "line %d", n)
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
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidFractions  Code = "INVALID_FRACTIONS"
	ErrCodeInvalidUnit       Code = "INVALID_UNIT"
	ErrCodeInvalidAge        Code = "INVALID_AGE"
	ErrCodeInvalidRiftWindow Code = "INVALID_RIFT_WINDOW"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"

	// Lookup errors
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeLithologyNotFound Code = "LITHOLOGY_NOT_FOUND"
	ErrCodeModelNotFound     Code = "MODEL_NOT_FOUND"

	// Internal consistency errors
	ErrCodeInternal   Code = "INTERNAL_ERROR"
	ErrCodeNoCoverage Code = "NO_COVERAGE"

	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Warning codes for non-fatal numeric conditions.
const (
	WarnCodeNotConverged       Code = "NOT_CONVERGED"
	WarnCodeInaccurateBeta     Code = "INACCURATE_BETA"
	WarnCodeInaccurateIntegral Code = "INACCURATE_INTEGRAL"
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

// Warning is a non-fatal numeric condition. The result it accompanies is a
// best-effort value; Residual lets the caller judge how far off it may be.
type Warning struct {
	Code     Code
	Message  string
	Residual float64
}

// Warn creates a Warning with the given code, residual and formatted message.
func Warn(code Code, residual float64, format string, args ...any) *Warning {
	return &Warning{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Residual: residual,
	}
}

// String formats the warning for logs.
func (w Warning) String() string {
	return fmt.Sprintf("%s: %s (residual %g)", w.Code, w.Message, w.Residual)
}
