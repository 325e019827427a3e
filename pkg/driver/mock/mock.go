// Package mock provides a mock device for testing without a real phone.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/devicelab-dev/droidreplay/pkg/core"
)

// Call is one recorded device invocation.
type Call struct {
	Method string
	Args   []int
	Text   string
}

// Config configures mock behavior.
type Config struct {
	// Trees are returned by successive AccessibilityTree calls; the last one
	// repeats. Empty means an empty tree.
	Trees [][]byte
	// FullStateBody overrides FullState. By default the current tree is
	// wrapped as {"result":{"a11y_tree":...}}.
	FullStateBody []byte
	// Fail makes the named method return the given error.
	Fail map[string]error
	// FailOnCall makes call N fail (1-indexed) with core.ErrTransport. 0 = never.
	FailOnCall int
	// CallDelay adds artificial latency per call.
	CallDelay time.Duration
	// State is returned by DeviceState.
	State    core.DeviceState
	Packages []core.Package
}

// Driver is a mock implementation of core.Device.
type Driver struct {
	Config Config

	mu        sync.Mutex
	calls     []Call
	callCount int
	treeIdx   int
}

var _ core.Device = (*Driver)(nil)

// New creates a new mock driver.
func New(cfg Config) *Driver {
	if cfg.State.DisplayWidth == 0 {
		cfg.State.DisplayWidth = 1080
	}
	if cfg.State.DisplayHeight == 0 {
		cfg.State.DisplayHeight = 2400
	}
	if cfg.State.CurrentApp == "" {
		cfg.State.CurrentApp = "Mock App"
	}
	return &Driver{Config: cfg}
}

// record logs the call and returns the injected error, if any.
func (d *Driver) record(ctx context.Context, c Call) error {
	if d.Config.CallDelay > 0 {
		select {
		case <-time.After(d.Config.CallDelay):
		case <-ctx.Done():
			return core.ErrTimeout.WithCause(ctx.Err())
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.callCount++
	d.calls = append(d.calls, c)

	if err := d.Config.Fail[c.Method]; err != nil {
		return err
	}
	if d.Config.FailOnCall > 0 && d.callCount == d.Config.FailOnCall {
		return core.ErrTransport.WithMessage(fmt.Sprintf("mock failure on call %d (%s)", d.callCount, c.Method))
	}
	return nil
}

// Calls returns a copy of the recorded calls.
func (d *Driver) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// Methods returns the recorded method names in order.
func (d *Driver) Methods() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	for i, c := range d.calls {
		out[i] = c.Method
	}
	return out
}

// Reset clears recorded calls.
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
	d.callCount = 0
	d.treeIdx = 0
}

func (d *Driver) Tap(ctx context.Context, x, y int) error {
	return d.record(ctx, Call{Method: "Tap", Args: []int{x, y}})
}

func (d *Driver) Swipe(ctx context.Context, startX, startY, endX, endY, durationMs int) error {
	return d.record(ctx, Call{Method: "Swipe", Args: []int{startX, startY, endX, endY, durationMs}})
}

func (d *Driver) GlobalAction(ctx context.Context, action int) error {
	return d.record(ctx, Call{Method: "GlobalAction", Args: []int{action}})
}

func (d *Driver) InputText(ctx context.Context, text string) error {
	return d.record(ctx, Call{Method: "InputText", Text: text})
}

func (d *Driver) ClearText(ctx context.Context) error {
	return d.record(ctx, Call{Method: "ClearText"})
}

func (d *Driver) PressKey(ctx context.Context, keyCode int) error {
	return d.record(ctx, Call{Method: "PressKey", Args: []int{keyCode}})
}

func (d *Driver) AccessibilityTree(ctx context.Context) ([]byte, error) {
	if err := d.record(ctx, Call{Method: "AccessibilityTree"}); err != nil {
		return nil, err
	}
	return d.nextTree(), nil
}

func (d *Driver) nextTree() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.Config.Trees) == 0 {
		return []byte(`[]`)
	}
	tree := d.Config.Trees[d.treeIdx]
	if d.treeIdx < len(d.Config.Trees)-1 {
		d.treeIdx++
	}
	return tree
}

func (d *Driver) DeviceState(ctx context.Context) (*core.DeviceState, error) {
	if err := d.record(ctx, Call{Method: "DeviceState"}); err != nil {
		return nil, err
	}
	state := d.Config.State
	return &state, nil
}

func (d *Driver) FullState(ctx context.Context) ([]byte, error) {
	if err := d.record(ctx, Call{Method: "FullState"}); err != nil {
		return nil, err
	}
	if d.Config.FullStateBody != nil {
		return d.Config.FullStateBody, nil
	}
	tree := d.nextTree()
	return []byte(`{"result":{"a11y_tree":` + string(tree) + `}}`), nil
}

func (d *Driver) Ping(ctx context.Context) error {
	return d.record(ctx, Call{Method: "Ping"})
}

func (d *Driver) Packages(ctx context.Context) ([]core.Package, error) {
	if err := d.record(ctx, Call{Method: "Packages"}); err != nil {
		return nil, err
	}
	return append([]core.Package(nil), d.Config.Packages...), nil
}

// Screenshot returns a mock PNG image.
func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	if err := d.record(ctx, Call{Method: "Screenshot"}); err != nil {
		return nil, err
	}
	// Minimal valid PNG (1x1 transparent pixel)
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
		0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
		0x42, 0x60, 0x82,
	}, nil
}
