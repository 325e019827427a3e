package core

import "context"

// Global action codes understood by the device control service.
const (
	GlobalActionBack = 1
	GlobalActionHome = 2
)

// Driver is the Device Control Facade: the minimal set of remote device
// operations the recorder, the resolver and replay depend on.
// Implementations: droidrun (HTTP), mock.
// Every call blocks until the device answers or the call's timeout expires.
type Driver interface {
	// Tap taps at absolute screen coordinates.
	Tap(ctx context.Context, x, y int) error

	// Swipe drags from start to end over durationMs. A zero-distance swipe is a long press.
	Swipe(ctx context.Context, startX, startY, endX, endY, durationMs int) error

	// GlobalAction issues a fixed system action (GlobalActionBack, GlobalActionHome).
	GlobalAction(ctx context.Context, action int) error

	// InputText types text into the focused field.
	InputText(ctx context.Context, text string) error

	// ClearText clears the focused input field.
	ClearText(ctx context.Context) error

	// PressKey sends an Android key code.
	PressKey(ctx context.Context, keyCode int) error

	// AccessibilityTree returns the raw accessibility snapshot body.
	// The body may wrap the tree under "result", possibly double-encoded as a JSON string.
	AccessibilityTree(ctx context.Context) ([]byte, error)

	// DeviceState returns display size and foreground app.
	DeviceState(ctx context.Context) (*DeviceState, error)
}

// DeviceState is the subset of phone state the recorder and replay use.
type DeviceState struct {
	DisplayWidth  int    `json:"displayWidth"`
	DisplayHeight int    `json:"displayHeight"`
	CurrentApp    string `json:"currentApp,omitempty"`
	PackageName   string `json:"packageName,omitempty"`
	KeyboardShown bool   `json:"keyboardVisible,omitempty"`
}

// ElementInfo describes the element a step resolved and acted on.
type ElementInfo struct {
	Index              int    `json:"index"`
	Text               string `json:"text,omitempty"`
	ContentDescription string `json:"contentDescription,omitempty"`
	ResourceID         string `json:"resourceId,omitempty"`
	ClassName          string `json:"className,omitempty"`
	Score              int    `json:"score"`
	X                  int    `json:"x"`
	Y                  int    `json:"y"`
}

// Device extends Driver with the inspection calls used by the interactive
// surfaces (recorder shell, tool server).
type Device interface {
	Driver

	// FullState returns the raw full-state body; the tree sits under "a11y_tree".
	FullState(ctx context.Context) ([]byte, error)

	// Ping checks that the control service answers.
	Ping(ctx context.Context) error

	// Packages lists launchable apps.
	Packages(ctx context.Context) ([]Package, error)

	// Screenshot returns PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)
}

// Package is an installed app.
type Package struct {
	Label       string `json:"label"`
	PackageName string `json:"packageName"`
}
