package core

// StepStatus represents the execution status of a step
type StepStatus int

const (
	StatusPending StepStatus = iota // Not yet started
	StatusRunning                   // Currently executing
	StatusPassed                    // Action issued
	StatusSkipped                   // Recovered failure: unresolved element, bad bounds, transport error, or cancelled
)

// String returns the string representation of StepStatus
func (s StepStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name in reports.
func (s StepStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsTerminal returns true if the status is a final state
func (s StepStatus) IsTerminal() bool {
	return s == StatusPassed || s == StatusSkipped
}

// ErrorCategory classifies recovered failures
type ErrorCategory int

const (
	ErrCategoryNone       ErrorCategory = iota // No error
	ErrCategoryTransport                       // Network, timeout, non-2xx from the device
	ErrCategoryDecode                          // Snapshot or log line not parseable
	ErrCategoryResolution                      // Criteria below threshold or no nodes
	ErrCategoryBounds                          // Node has no parseable rectangle
	ErrCategoryConfig                          // Invalid configuration
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryTransport:
		return "transport"
	case ErrCategoryDecode:
		return "decode"
	case ErrCategoryResolution:
		return "resolution"
	case ErrCategoryBounds:
		return "bounds"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}

// MarshalText encodes the category by name in reports.
func (c ErrorCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
