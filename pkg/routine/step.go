package routine

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/droidreplay/pkg/resolver"
)

// StepType represents the type of step.
type StepType string

// Step type constants.
const (
	StepHome             StepType = "home"
	StepBack             StepType = "back"
	StepSleep            StepType = "sleep"
	StepClearText        StepType = "clearText"
	StepPressKey         StepType = "pressKey"
	StepInputText        StepType = "inputText"
	StepTapOn            StepType = "tapOn"
	StepLongPressOnPoint StepType = "longPressOnPoint"
)

// Post-action settle pauses, in milliseconds. The device updates its UI
// asynchronously; the next tree fetch must not race the previous action.
var defaultSettleMs = map[StepType]int{
	StepHome:             1000,
	StepBack:             1000,
	StepSleep:            0,
	StepClearText:        500,
	StepPressKey:         500,
	StepInputText:        1000,
	StepTapOn:            1500,
	StepLongPressOnPoint: 1000,
}

// DefaultSettle returns the settle pause for steps of type t.
func DefaultSettle(t StepType) time.Duration {
	return time.Duration(defaultSettleMs[t]) * time.Millisecond
}

// Step is the interface for all routine steps.
type Step interface {
	Type() StepType
	Label() string
	Describe() string
	Settle() time.Duration
}

// BaseStep contains common fields for all steps.
type BaseStep struct {
	StepType  StepType `yaml:"-"`
	StepLabel string   `yaml:"label,omitempty"`
	SettleMs  *int     `yaml:"settleMs,omitempty"` // nil uses the type's default
}

// Type returns the step type.
func (b *BaseStep) Type() StepType { return b.StepType }

// Label returns the step label.
func (b *BaseStep) Label() string { return b.StepLabel }

// Describe returns a human-readable description.
func (b *BaseStep) Describe() string { return string(b.StepType) }

// Settle returns the pause applied after the step.
func (b *BaseStep) Settle() time.Duration {
	if b.SettleMs != nil {
		return time.Duration(*b.SettleMs) * time.Millisecond
	}
	return DefaultSettle(b.StepType)
}

// HomeStep issues the home global action.
type HomeStep struct {
	BaseStep `yaml:",inline"`
}

// BackStep issues the back global action.
type BackStep struct {
	BaseStep `yaml:",inline"`
}

// SleepStep pauses for a fixed time.
type SleepStep struct {
	BaseStep `yaml:",inline"`
	Seconds  float64 `yaml:"seconds"`
}

// Duration returns the pause length.
func (s *SleepStep) Duration() time.Duration {
	return time.Duration(s.Seconds * float64(time.Second))
}

// Describe returns a human-readable description.
func (s *SleepStep) Describe() string {
	return fmt.Sprintf("sleep %gs", s.Seconds)
}

// ClearTextStep clears the focused input field.
type ClearTextStep struct {
	BaseStep `yaml:",inline"`
}

// PressKeyStep sends a key code.
type PressKeyStep struct {
	BaseStep `yaml:",inline"`
	KeyCode  int `yaml:"keyCode"`
}

// Describe returns a human-readable description.
func (s *PressKeyStep) Describe() string {
	return fmt.Sprintf("pressKey %d", s.KeyCode)
}

// InputTextStep types literal text. Transport encoding happens at replay.
type InputTextStep struct {
	BaseStep `yaml:",inline"`
	Text     string `yaml:"text"`
}

// Describe returns a human-readable description.
func (s *InputTextStep) Describe() string {
	return fmt.Sprintf("inputText %q", s.Text)
}

// TapOnStep resolves Criteria against the live tree and taps its center.
// Criteria sits flat beside the step fields in YAML. yaml.v3 cannot inline a
// field that implements yaml.Unmarshaler, so MarshalYAML writes the body and
// the parser decodes Criteria in a second pass.
type TapOnStep struct {
	BaseStep      `yaml:",inline"`
	Criteria      resolver.Criteria `yaml:"-"`
	OriginalIndex *int              `yaml:"originalIndex,omitempty"`
}

type tapOnBody struct {
	Label              string `yaml:"label,omitempty"`
	SettleMs           *int   `yaml:"settleMs,omitempty"`
	Text               string `yaml:"text,omitempty"`
	ContentDescription string `yaml:"contentDescription,omitempty"`
	ResourceID         string `yaml:"resourceId,omitempty"`
	ClassName          string `yaml:"className,omitempty"`
	OriginalIndex      *int   `yaml:"originalIndex,omitempty"`
}

// MarshalYAML emits the step body as one flat mapping.
func (s TapOnStep) MarshalYAML() (interface{}, error) {
	return tapOnBody{
		Label:              s.StepLabel,
		SettleMs:           s.SettleMs,
		Text:               s.Criteria.Text,
		ContentDescription: s.Criteria.ContentDescription,
		ResourceID:         s.Criteria.ResourceID,
		ClassName:          s.Criteria.ClassName,
		OriginalIndex:      s.OriginalIndex,
	}, nil
}

// Describe returns a human-readable description.
func (s *TapOnStep) Describe() string {
	return "tapOn " + s.Criteria.DescribeQuoted()
}

// LongPressOnPointStep holds at fixed coordinates; it is not re-resolved.
type LongPressOnPointStep struct {
	BaseStep   `yaml:",inline"`
	X          int `yaml:"x"`
	Y          int `yaml:"y"`
	DurationMs int `yaml:"duration"`
}

// Describe returns a human-readable description.
func (s *LongPressOnPointStep) Describe() string {
	return fmt.Sprintf("longPressOnPoint (%d,%d) %dms", s.X, s.Y, s.DurationMs)
}
