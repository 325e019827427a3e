package core

import (
	"time"
)

// StepResult captures the outcome of replaying a single routine step
type StepResult struct {
	// Identity
	Index   int    `json:"index"`   // 0-based position in routine
	Command string `json:"command"` // Step type: tapOn, home, sleep, etc.
	Label   string `json:"label,omitempty"`

	// Status
	Status   StepStatus    `json:"status"`
	Category ErrorCategory `json:"errorCategory,omitempty"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Output
	Message string       `json:"message,omitempty"` // Human-readable explanation
	Element *ElementInfo `json:"element,omitempty"` // Element resolved for tap steps
	Error   string       `json:"error,omitempty"`   // Technical error message
}

// RoutineResult captures the outcome of one replay
type RoutineResult struct {
	RunID string `json:"runId"`
	Name  string `json:"name"`
	File  string `json:"file,omitempty"`

	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	Steps []StepResult `json:"steps"`

	// Summary (computed)
	TotalSteps   int  `json:"totalSteps"`
	PassedSteps  int  `json:"passedSteps"`
	SkippedSteps int  `json:"skippedSteps"`
	Cancelled    bool `json:"cancelled,omitempty"`
}

// ComputeSummary calculates step counts from the Steps slice
func (r *RoutineResult) ComputeSummary() {
	r.TotalSteps = len(r.Steps)
	r.PassedSteps = 0
	r.SkippedSteps = 0

	for _, step := range r.Steps {
		switch step.Status {
		case StatusPassed:
			r.PassedSteps++
		case StatusSkipped:
			r.SkippedSteps++
		}
	}
}

// Complete returns true if every step issued its action.
func (r *RoutineResult) Complete() bool {
	return !r.Cancelled && r.PassedSteps == len(r.Steps)
}
