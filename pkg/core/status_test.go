package core

import (
	"encoding/json"
	"testing"
)

func TestStepStatus_String(t *testing.T) {
	tests := []struct {
		status   StepStatus
		expected string
	}{
		{StatusPending, "pending"},
		{StatusRunning, "running"},
		{StatusPassed, "passed"},
		{StatusSkipped, "skipped"},
		{StepStatus(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("StepStatus(%d).String() = %q, want %q", tt.status, got, tt.expected)
		}
	}
}

func TestStepStatus_IsTerminal(t *testing.T) {
	for _, s := range []StepStatus{StatusPassed, StatusSkipped} {
		if !s.IsTerminal() {
			t.Errorf("StepStatus(%s).IsTerminal() = false, want true", s)
		}
	}
	for _, s := range []StepStatus{StatusPending, StatusRunning} {
		if s.IsTerminal() {
			t.Errorf("StepStatus(%s).IsTerminal() = true, want false", s)
		}
	}
}

func TestErrorCategory_String(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		expected string
	}{
		{ErrCategoryNone, "none"},
		{ErrCategoryTransport, "transport"},
		{ErrCategoryDecode, "decode"},
		{ErrCategoryResolution, "resolution"},
		{ErrCategoryBounds, "bounds"},
		{ErrCategoryConfig, "config"},
		{ErrorCategory(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.category.String(); got != tt.expected {
			t.Errorf("ErrorCategory(%d).String() = %q, want %q", tt.category, got, tt.expected)
		}
	}
}

func TestStepResult_JSONUsesNames(t *testing.T) {
	data, err := json.Marshal(StepResult{Status: StatusSkipped, Category: ErrCategoryResolution})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded["status"] != "skipped" {
		t.Errorf("status = %v, want skipped", decoded["status"])
	}
	if decoded["errorCategory"] != "resolution" {
		t.Errorf("errorCategory = %v, want resolution", decoded["errorCategory"])
	}
}
