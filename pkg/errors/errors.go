// Package errors defines the structured error taxonomy used across vlmctl.
//
// Every failure that crosses a package boundary carries an ErrorCode so callers
// can decide whether it is fatal (unsupported host), actionable (rate limited),
// or absorbed (remote source unavailable) without string matching.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure.
type ErrorCode string

const (
	// ErrCodeUnsupportedPlatform marks a host that cannot run any published image.
	// It is a configuration error: fatal and never retried.
	ErrCodeUnsupportedPlatform ErrorCode = "UNSUPPORTED_PLATFORM"
	ErrCodeInvalidRequest      ErrorCode = "INVALID_REQUEST"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrCodeRateLimitExceeded   ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeUnavailable         ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout             ErrorCode = "TIMEOUT"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// StructuredError is an error with a code and an optional cause.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a StructuredError with the same code.
func (e *StructuredError) Is(target error) bool {
	var t *StructuredError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// New creates a StructuredError without a cause.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{Code: code, Message: message}
}

// Wrap creates a StructuredError around cause.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first StructuredError in err's chain,
// or ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// Retryable reports whether a failure with the given code may succeed on retry.
func Retryable(code ErrorCode) bool {
	switch code {
	case ErrCodeTimeout, ErrCodeUnavailable, ErrCodeRateLimitExceeded, ErrCodeInternal:
		return true
	default:
		return false
	}
}
