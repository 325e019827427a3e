// Package actionlog handles the line-delimited JSON log of interactions
// captured during a recording session.
package actionlog

import (
	"encoding/json"
	"fmt"

	"github.com/devicelab-dev/droidreplay/pkg/core"
	"github.com/devicelab-dev/droidreplay/pkg/resolver"
)

// Action is the entry discriminator.
type Action string

// Recognized actions.
const (
	ActionHome      Action = "home"
	ActionBack      Action = "back"
	ActionSleep     Action = "sleep"
	ActionClear     Action = "clear"
	ActionKey       Action = "key"
	ActionInput     Action = "input"
	ActionTap       Action = "tap"
	ActionLongPress Action = "long_press"
)

// Payload defaults applied on decode.
const (
	DefaultSleepSeconds = 1.0
	DefaultLongPressMs  = 1000
)

// Entry is one recorded interaction.
type Entry interface {
	Kind() Action
}

// HomeEntry presses the home button.
type HomeEntry struct{}

// BackEntry presses the back button.
type BackEntry struct{}

// SleepEntry pauses replay.
type SleepEntry struct {
	Duration float64 // seconds
}

// ClearEntry clears the focused input field.
type ClearEntry struct{}

// KeyEntry sends an Android key code.
type KeyEntry struct {
	KeyCode int
}

// InputEntry types literal text.
type InputEntry struct {
	Text string
}

// TapEntry taps the element matching Criteria, re-resolved at replay time.
type TapEntry struct {
	Criteria      resolver.Criteria
	OriginalIndex *int // node index at record time, informational only
}

// LongPressEntry holds at fixed coordinates.
type LongPressEntry struct {
	X, Y          int
	Duration      int // milliseconds
	OriginalIndex *int
}

func (HomeEntry) Kind() Action      { return ActionHome }
func (BackEntry) Kind() Action      { return ActionBack }
func (SleepEntry) Kind() Action     { return ActionSleep }
func (ClearEntry) Kind() Action     { return ActionClear }
func (KeyEntry) Kind() Action       { return ActionKey }
func (InputEntry) Kind() Action     { return ActionInput }
func (TapEntry) Kind() Action       { return ActionTap }
func (LongPressEntry) Kind() Action { return ActionLongPress }

// wireEntry is the on-disk shape. Duration is seconds for sleep and
// milliseconds for long_press.
type wireEntry struct {
	Action        Action             `json:"action"`
	OriginalIndex *int               `json:"original_index,omitempty"`
	Criteria      *resolver.Criteria `json:"criteria,omitempty"`
	X             *int               `json:"x,omitempty"`
	Y             *int               `json:"y,omitempty"`
	Duration      *float64           `json:"duration,omitempty"`
	KeyCode       *int               `json:"key_code,omitempty"`
	Text          *string            `json:"text,omitempty"`
}

func toWire(e Entry) (wireEntry, error) {
	w := wireEntry{Action: e.Kind()}
	switch v := e.(type) {
	case HomeEntry, BackEntry, ClearEntry:
	case SleepEntry:
		d := v.Duration
		w.Duration = &d
	case KeyEntry:
		k := v.KeyCode
		w.KeyCode = &k
	case InputEntry:
		t := v.Text
		w.Text = &t
	case TapEntry:
		c := v.Criteria
		w.Criteria = &c
		w.OriginalIndex = v.OriginalIndex
	case LongPressEntry:
		x, y, d := v.X, v.Y, float64(v.Duration)
		w.X, w.Y, w.Duration = &x, &y, &d
		w.OriginalIndex = v.OriginalIndex
	default:
		return w, core.ErrUnknownAction.WithMessage(fmt.Sprintf("unsupported entry type %T", e))
	}
	return w, nil
}

func (w wireEntry) entry() (Entry, error) {
	switch w.Action {
	case ActionHome:
		return HomeEntry{}, nil
	case ActionBack:
		return BackEntry{}, nil
	case ActionClear:
		return ClearEntry{}, nil
	case ActionSleep:
		d := DefaultSleepSeconds
		if w.Duration != nil {
			d = *w.Duration
		}
		if d < 0 {
			return nil, invalid(w.Action, "duration must not be negative")
		}
		return SleepEntry{Duration: d}, nil
	case ActionKey:
		if w.KeyCode == nil {
			return nil, invalid(w.Action, "missing key_code")
		}
		return KeyEntry{KeyCode: *w.KeyCode}, nil
	case ActionInput:
		e := InputEntry{}
		if w.Text != nil {
			e.Text = *w.Text
		}
		return e, nil
	case ActionTap:
		e := TapEntry{OriginalIndex: w.OriginalIndex}
		if w.Criteria != nil {
			e.Criteria = *w.Criteria
		}
		return e, nil
	case ActionLongPress:
		if w.X == nil || w.Y == nil {
			return nil, invalid(w.Action, "missing x or y")
		}
		e := LongPressEntry{X: *w.X, Y: *w.Y, Duration: DefaultLongPressMs, OriginalIndex: w.OriginalIndex}
		if w.Duration != nil {
			e.Duration = int(*w.Duration)
		}
		return e, nil
	case "":
		return nil, core.ErrInvalidEntry.WithMessage("missing action")
	default:
		return nil, core.ErrUnknownAction.WithMessage(fmt.Sprintf("unknown action %q", w.Action))
	}
}

func invalid(a Action, msg string) error {
	return core.ErrInvalidEntry.WithMessage(fmt.Sprintf("%s: %s", a, msg))
}

// Marshal encodes e as a single JSON object without a trailing newline.
func Marshal(e Entry) ([]byte, error) {
	w, err := toWire(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// Unmarshal decodes and validates one log line.
func Unmarshal(line []byte) (Entry, error) {
	var w wireEntry
	if err := json.Unmarshal(line, &w); err != nil {
		return nil, core.ErrDecode.WithCause(err)
	}
	return w.entry()
}

// Describe returns a short human-readable summary of e.
func Describe(e Entry) string {
	switch v := e.(type) {
	case SleepEntry:
		return fmt.Sprintf("sleep %gs", v.Duration)
	case KeyEntry:
		return fmt.Sprintf("key %d", v.KeyCode)
	case InputEntry:
		return fmt.Sprintf("input %q", v.Text)
	case TapEntry:
		return "tap " + v.Criteria.DescribeQuoted()
	case LongPressEntry:
		return fmt.Sprintf("long_press (%d,%d) %dms", v.X, v.Y, v.Duration)
	default:
		return string(e.Kind())
	}
}
