// internal/core/errors.go
package core

import (
	"errors"
	"fmt"
)

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Provider errors
	ErrFetchFailed = &Error{Code: "FETCH_FAILED", Message: "provider request failed"}
	ErrParseFailed = &Error{Code: "PARSE_FAILED", Message: "provider response malformed"}

	// Computation errors
	ErrComputation      = &Error{Code: "COMPUTATION_FAILED", Message: "metric computation failed"}
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "insufficient data for analysis"}

	// Archive errors
	ErrArchiveFailed = &Error{Code: "ARCHIVE_FAILED", Message: "archiving run failed"}
)

// Process exit codes, one per error family.
const (
	ExitOK          = 0
	ExitUnknown     = 1
	ExitConfig      = 2
	ExitFetch       = 3
	ExitParse       = 4
	ExitComputation = 5
)

// ExitCode maps an error onto the process exit code of its family.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrConfigMissing), errors.Is(err, ErrConfigInvalid):
		return ExitConfig
	case errors.Is(err, ErrFetchFailed):
		return ExitFetch
	case errors.Is(err, ErrParseFailed):
		return ExitParse
	case errors.Is(err, ErrComputation), errors.Is(err, ErrInsufficientData):
		return ExitComputation
	default:
		return ExitUnknown
	}
}
