package core

import (
	"errors"
	"fmt"
)

// ExecutionError represents a structured error with category and details
type ExecutionError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: not_found, transport, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an ExecutionError with the same code, so derived
// copies (WithCause, WithMessage, WithDetails) still match the predefined errors.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithCause returns a copy of the error with the given cause
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithDetails returns a copy of the error with additional details
func (e *ExecutionError) WithDetails(details map[string]interface{}) *ExecutionError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors
var (
	// Transport errors: network failure, timeout or non-2xx from the device.
	ErrTransport = &ExecutionError{
		Category: ErrCategoryTransport,
		Code:     "transport",
		Message:  "device request failed",
	}
	ErrTimeout = &ExecutionError{
		Category: ErrCategoryTransport,
		Code:     "timeout",
		Message:  "device request timed out",
	}
	ErrHTTPStatus = &ExecutionError{
		Category: ErrCategoryTransport,
		Code:     "http_status",
		Message:  "device returned an error status",
	}

	// Decode errors: snapshot or log line is not structured data.
	ErrDecode = &ExecutionError{
		Category: ErrCategoryDecode,
		Code:     "decode",
		Message:  "malformed structured data",
	}
	ErrUnknownAction = &ExecutionError{
		Category: ErrCategoryDecode,
		Code:     "unknown_action",
		Message:  "unknown action",
	}
	ErrInvalidEntry = &ExecutionError{
		Category: ErrCategoryDecode,
		Code:     "invalid_entry",
		Message:  "invalid action log entry",
	}

	// Resolution misses
	ErrNotFound = &ExecutionError{
		Category: ErrCategoryResolution,
		Code:     "not_found",
		Message:  "no element matched the criteria",
	}
	ErrNoNodes = &ExecutionError{
		Category: ErrCategoryResolution,
		Code:     "no_nodes",
		Message:  "accessibility tree is empty",
	}

	// Bounds errors
	ErrNoBounds = &ExecutionError{
		Category: ErrCategoryBounds,
		Code:     "no_bounds",
		Message:  "element has no parseable bounds",
	}

	// Config errors
	ErrInvalidConfig = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
)

// NewExecutionError creates a new ExecutionError with the given parameters
func NewExecutionError(category ErrorCategory, code, message string) *ExecutionError {
	return &ExecutionError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// CategoryOf returns the category of err, or ErrCategoryNone when err is not an ExecutionError.
func CategoryOf(err error) ErrorCategory {
	var e *ExecutionError
	if errors.As(err, &e) {
		return e.Category
	}
	return ErrCategoryNone
}
