package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/devicelab-dev/droidreplay/pkg/core"
	"github.com/devicelab-dev/droidreplay/pkg/resolver"
	"github.com/devicelab-dev/droidreplay/pkg/routine"
)

// execute issues the device call(s) for step and returns the resolved element
// (taps only) and a human-readable message.
func (r *Runner) execute(ctx context.Context, step routine.Step) (*core.ElementInfo, string, error) {
	switch s := step.(type) {
	case *routine.HomeStep:
		return nil, "pressed home", r.driver.GlobalAction(ctx, core.GlobalActionHome)

	case *routine.BackStep:
		return nil, "pressed back", r.driver.GlobalAction(ctx, core.GlobalActionBack)

	case *routine.SleepStep:
		if err := r.sleep(ctx, s.Duration()); err != nil {
			return nil, "", core.ErrTimeout.WithCause(err)
		}
		return nil, fmt.Sprintf("slept %gs", s.Seconds), nil

	case *routine.ClearTextStep:
		return nil, "cleared text", r.driver.ClearText(ctx)

	case *routine.PressKeyStep:
		return nil, fmt.Sprintf("pressed key %d", s.KeyCode), r.driver.PressKey(ctx, s.KeyCode)

	case *routine.InputTextStep:
		return nil, fmt.Sprintf("typed %q", s.Text), r.driver.InputText(ctx, s.Text)

	case *routine.LongPressOnPointStep:
		msg := fmt.Sprintf("long pressed (%d,%d) for %dms", s.X, s.Y, s.DurationMs)
		return nil, msg, r.driver.Swipe(ctx, s.X, s.Y, s.X, s.Y, s.DurationMs)

	case *routine.TapOnStep:
		return r.tapOn(ctx, s)

	default:
		return nil, "", core.ErrUnknownAction.WithMessage(fmt.Sprintf("unsupported step: %s", step.Type()))
	}
}

// tapOn resolves the criteria against a freshly fetched tree and taps the
// center of the best match.
func (r *Runner) tapOn(ctx context.Context, s *routine.TapOnStep) (*core.ElementInfo, string, error) {
	m, err := resolver.Find(ctx, r.driver, s.Criteria)
	if err != nil {
		return nil, "", err
	}

	element := m.Element()
	x, y, err := m.Center()
	if err != nil {
		return element, "", err
	}

	msg := fmt.Sprintf("tapped %s at (%d,%d)", s.Criteria.Describe(), x, y)
	return element, msg, r.driver.Tap(ctx, x, y)
}

func skipMessage(ctx context.Context, err error) string {
	switch {
	case ctx.Err() != nil:
		return "run cancelled"
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrNoNodes):
		return "element not found, step skipped"
	case errors.Is(err, core.ErrNoBounds):
		return "element has no usable bounds, step skipped"
	default:
		return "device call failed, step skipped"
	}
}

func errorCode(err error) string {
	var e *core.ExecutionError
	if errors.As(err, &e) {
		return e.Code
	}
	return "unknown"
}
