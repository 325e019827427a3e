package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestExecutionError_Error(t *testing.T) {
	refused := errors.New("connection refused")
	tests := []struct {
		name string
		err  *ExecutionError
		want string
	}{
		{"bare", ErrNoNodes, "accessibility tree is empty"},
		{"with cause", ErrTransport.WithCause(refused), "device request failed: connection refused"},
		{"custom message", ErrNotFound.WithMessage("Index 9 out of range."), "Index 9 out of range."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := ErrTransport.WithCause(refused).Unwrap(); got != refused {
		t.Errorf("Unwrap() = %v, want %v", got, refused)
	}
}

func TestExecutionError_WithCause(t *testing.T) {
	original := ErrNotFound
	cause := errors.New("custom cause")

	newErr := original.WithCause(cause)

	if newErr.Cause != cause {
		t.Error("WithCause() did not set cause")
	}
	if newErr.Code != original.Code {
		t.Error("WithCause() changed code")
	}
	if original.Cause != nil {
		t.Error("WithCause() modified original error")
	}
}

func TestExecutionError_WithMessage(t *testing.T) {
	original := ErrTimeout
	newErr := original.WithMessage("custom timeout message")

	if newErr.Message != "custom timeout message" {
		t.Errorf("Message = %q, want 'custom timeout message'", newErr.Message)
	}
	if newErr.Code != original.Code {
		t.Error("WithMessage() changed code")
	}
	if original.Message == "custom timeout message" {
		t.Error("WithMessage() modified original error")
	}
}

func TestExecutionError_WithDetails(t *testing.T) {
	original := &ExecutionError{
		Code:    "test",
		Message: "test",
		Details: map[string]interface{}{"existing": "value"},
	}

	newErr := original.WithDetails(map[string]interface{}{
		"path":   "/a11y_tree",
		"status": 503,
	})

	if newErr.Details["status"] != 503 {
		t.Error("WithDetails() did not add new details")
	}
	if newErr.Details["existing"] != "value" {
		t.Error("WithDetails() did not preserve existing details")
	}
	if _, ok := original.Details["status"]; ok {
		t.Error("WithDetails() modified original error")
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err      *ExecutionError
		category ErrorCategory
		code     string
	}{
		{ErrTransport, ErrCategoryTransport, "transport"},
		{ErrTimeout, ErrCategoryTransport, "timeout"},
		{ErrHTTPStatus, ErrCategoryTransport, "http_status"},
		{ErrDecode, ErrCategoryDecode, "decode"},
		{ErrUnknownAction, ErrCategoryDecode, "unknown_action"},
		{ErrInvalidEntry, ErrCategoryDecode, "invalid_entry"},
		{ErrNotFound, ErrCategoryResolution, "not_found"},
		{ErrNoNodes, ErrCategoryResolution, "no_nodes"},
		{ErrNoBounds, ErrCategoryBounds, "no_bounds"},
		{ErrInvalidConfig, ErrCategoryConfig, "invalid_config"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("Category = %s, want %s", tt.err.Category, tt.category)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestNewExecutionError(t *testing.T) {
	err := NewExecutionError(ErrCategoryBounds, "custom_error", "custom message")

	if err.Category != ErrCategoryBounds {
		t.Errorf("Category = %s, want %s", err.Category, ErrCategoryBounds)
	}
	if err.Code != "custom_error" {
		t.Errorf("Code = %s, want 'custom_error'", err.Code)
	}
	if err.Message != "custom message" {
		t.Errorf("Message = %s, want 'custom message'", err.Message)
	}
}

func TestExecutionError_ErrorsIs(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrTimeout.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the cause")
	}
}

func TestExecutionError_IsMatchesDerivedCopies(t *testing.T) {
	err := ErrNotFound.WithCause(errors.New("score 1")).WithDetails(map[string]interface{}{"best": 1})

	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is() should match derived copy by code")
	}
	if errors.Is(err, ErrNoBounds) {
		t.Error("errors.Is() should not match a different code")
	}

	wrapped := fmt.Errorf("step 3: %w", err)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("errors.Is() should see through fmt wrapping")
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ErrCategoryNone},
		{"plain", errors.New("x"), ErrCategoryNone},
		{"transport", ErrTransport.WithCause(errors.New("refused")), ErrCategoryTransport},
		{"wrapped bounds", fmt.Errorf("tap: %w", ErrNoBounds), ErrCategoryBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategoryOf(tt.err); got != tt.want {
				t.Errorf("CategoryOf() = %s, want %s", got, tt.want)
			}
		})
	}
}
