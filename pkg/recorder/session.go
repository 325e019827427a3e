// Package recorder drives a live recording session: it shows the device's
// accessibility tree, performs operator commands on the device and appends
// each replayable interaction to the action log.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/devicelab-dev/droidreplay/pkg/actionlog"
	"github.com/devicelab-dev/droidreplay/pkg/core"
	"github.com/devicelab-dev/droidreplay/pkg/logger"
	"github.com/devicelab-dev/droidreplay/pkg/resolver"
	"github.com/devicelab-dev/droidreplay/pkg/uitree"
)

// Source selects which snapshot endpoint index commands address.
type Source int

const (
	SourceFull Source = iota // /state_full
	SourceFast               // /a11y_tree
)

func (s Source) String() string {
	if s == SourceFast {
		return "fast"
	}
	return "full"
}

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Options configures a recording session.
type Options struct {
	LogPath string
	Out     io.Writer
	Sleeper Sleeper
}

var (
	recordedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Session is one recording run against a device.
type Session struct {
	ID     string
	State  core.DeviceState
	dev    core.Device
	log    *actionlog.Writer
	out    io.Writer
	sleep  Sleeper
	source Source
}

// Start truncates the action log, reads the device state and prints the
// session banner. An unreachable device falls back to default dimensions.
func Start(ctx context.Context, dev core.Device, opts Options) (*Session, error) {
	w, err := actionlog.Create(opts.LogPath)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:     uuid.NewString(),
		State:  core.DeviceState{DisplayWidth: 1080, DisplayHeight: 2400, CurrentApp: "Unknown"},
		dev:    dev,
		log:    w,
		out:    opts.Out,
		sleep:  opts.Sleeper,
		source: SourceFull,
	}
	if s.out == nil {
		s.out = io.Discard
	}
	if s.sleep == nil {
		s.sleep = sleepCtx
	}

	if state, err := dev.DeviceState(ctx); err != nil {
		logger.Warn("recorder").Str("session", s.ID).Str("code", codeOf(err)).Err(err).Msg("device state unavailable, using defaults")
	} else {
		s.State = *state
	}

	logger.Info("recorder").Str("session", s.ID).Str("log", opts.LogPath).Msg("recording started")
	fmt.Fprintf(s.out, "Recording session %s\n", s.ID)
	fmt.Fprintf(s.out, "Resolution: %dx%d\n", s.State.DisplayWidth, s.State.DisplayHeight)
	fmt.Fprintf(s.out, "Current app: %s\n", s.State.CurrentApp)
	fmt.Fprintf(s.out, "Action log: %s\n", opts.LogPath)
	return s, nil
}

// Close closes the action log.
func (s *Session) Close() error {
	logger.Info("recorder").Str("session", s.ID).Msg("recording stopped")
	return s.log.Close()
}

// LogPath returns the action log path.
func (s *Session) LogPath() string {
	return s.log.Path()
}

// Source returns the snapshot source used by index commands.
func (s *Session) Source() Source {
	return s.source
}

// Snapshot fetches and flattens a fresh tree from src.
func (s *Session) Snapshot(ctx context.Context, src Source) ([]uitree.FlatNode, error) {
	if src == SourceFast {
		body, err := s.dev.AccessibilityTree(ctx)
		if err != nil {
			return nil, err
		}
		return uitree.Flatten(uitree.FromResponse(body)), nil
	}
	body, err := s.dev.FullState(ctx)
	if err != nil {
		return nil, err
	}
	return uitree.Flatten(uitree.FromFullState(body)), nil
}

// Dump prints the element table for src and makes src the index source.
func (s *Session) Dump(ctx context.Context, src Source) error {
	s.source = src
	nodes, err := s.Snapshot(ctx, src)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		fmt.Fprintln(s.out, "No elements found.")
		return nil
	}
	fmt.Fprint(s.out, NodeTable(nodes).Render())
	fmt.Fprintf(s.out, "%d elements (%s)\n", len(nodes), src)
	return nil
}

// node re-fetches the current snapshot and returns node idx.
func (s *Session) node(ctx context.Context, idx int) (uitree.FlatNode, error) {
	nodes, err := s.Snapshot(ctx, s.source)
	if err != nil {
		return uitree.FlatNode{}, err
	}
	if idx < 0 || idx >= len(nodes) {
		return uitree.FlatNode{}, core.ErrNotFound.
			WithMessage(fmt.Sprintf("Index %d out of range.", idx)).
			WithDetails(map[string]interface{}{"index": idx, "nodes": len(nodes)})
	}
	return nodes[idx], nil
}

// TapIndex taps node idx of the current snapshot and records it by criteria,
// so replay can find the element again after the layout shifts.
func (s *Session) TapIndex(ctx context.Context, idx int) error {
	n, err := s.node(ctx, idx)
	if err != nil {
		return err
	}
	x, y, ok := uitree.Center(n)
	if !ok {
		return core.ErrNoBounds.WithMessage(fmt.Sprintf("Index %d has invalid bounds.", idx))
	}

	index := idx
	if err := s.record(actionlog.TapEntry{Criteria: resolver.FromNode(n), OriginalIndex: &index}); err != nil {
		return err
	}
	return s.dev.Tap(ctx, x, y)
}

// LongPressIndex holds node idx for ms and records the coordinates.
func (s *Session) LongPressIndex(ctx context.Context, idx, ms int) error {
	if ms <= 0 {
		ms = actionlog.DefaultLongPressMs
	}
	n, err := s.node(ctx, idx)
	if err != nil {
		return err
	}
	x, y, ok := uitree.Center(n)
	if !ok {
		return core.ErrNoBounds.WithMessage(fmt.Sprintf("Index %d has invalid bounds.", idx))
	}

	index := idx
	if err := s.record(actionlog.LongPressEntry{X: x, Y: y, Duration: ms, OriginalIndex: &index}); err != nil {
		return err
	}
	return s.dev.Swipe(ctx, x, y, x, y, ms)
}

// Type types text into the focused field.
func (s *Session) Type(ctx context.Context, text string) error {
	if err := s.record(actionlog.InputEntry{Text: text}); err != nil {
		return err
	}
	return s.dev.InputText(ctx, text)
}

// Clear clears the focused field.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.record(actionlog.ClearEntry{}); err != nil {
		return err
	}
	return s.dev.ClearText(ctx)
}

// Key sends a key code.
func (s *Session) Key(ctx context.Context, code int) error {
	if err := s.record(actionlog.KeyEntry{KeyCode: code}); err != nil {
		return err
	}
	return s.dev.PressKey(ctx, code)
}

// Home presses the home button.
func (s *Session) Home(ctx context.Context) error {
	if err := s.record(actionlog.HomeEntry{}); err != nil {
		return err
	}
	return s.dev.GlobalAction(ctx, core.GlobalActionHome)
}

// Back presses the back button.
func (s *Session) Back(ctx context.Context) error {
	if err := s.record(actionlog.BackEntry{}); err != nil {
		return err
	}
	return s.dev.GlobalAction(ctx, core.GlobalActionBack)
}

// Sleep records a pause, then waits for it.
func (s *Session) Sleep(ctx context.Context, seconds float64) error {
	if seconds < 0 {
		return core.ErrInvalidEntry.WithMessage("sleep duration must not be negative")
	}
	if err := s.record(actionlog.SleepEntry{Duration: seconds}); err != nil {
		return err
	}
	return s.sleep(ctx, time.Duration(seconds*float64(time.Second)))
}

// Swipe drags between two points. Coordinate swipes are not recorded.
func (s *Session) Swipe(ctx context.Context, sx, sy, ex, ey, ms int) error {
	return s.dev.Swipe(ctx, sx, sy, ex, ey, ms)
}

// Ping checks the control service.
func (s *Session) Ping(ctx context.Context) error {
	return s.dev.Ping(ctx)
}

// record appends e to the log and acknowledges it.
func (s *Session) record(e actionlog.Entry) error {
	if err := s.log.Append(e); err != nil {
		return err
	}
	logger.Debug("recorder").Str("session", s.ID).Str("action", string(e.Kind())).Msg(actionlog.Describe(e))
	fmt.Fprintln(s.out, recordedStyle.Render("Recorded: "+actionlog.Describe(e)))
	return nil
}

func codeOf(err error) string {
	var e *core.ExecutionError
	if errors.As(err, &e) {
		return e.Code
	}
	return "unknown"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
