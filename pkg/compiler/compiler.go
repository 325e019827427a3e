// Package compiler turns a recorded action log into a replayable routine.
package compiler

import (
	"errors"
	"fmt"

	"github.com/devicelab-dev/droidreplay/pkg/actionlog"
	"github.com/devicelab-dev/droidreplay/pkg/core"
	"github.com/devicelab-dev/droidreplay/pkg/logger"
	"github.com/devicelab-dev/droidreplay/pkg/routine"
)

// Options are baked into the routine header.
type Options struct {
	Name    string
	Session string
	Target  routine.Target
}

// Result is the outcome of compiling a log file.
type Result struct {
	Routine  *routine.Routine
	Warnings []*actionlog.ParseError // Lines skipped while reading the log
}

// Compile emits one step per entry, in order. The output depends only on its
// inputs. Taps keep their criteria; resolution happens at replay.
func Compile(entries []actionlog.Entry, opts Options) (*routine.Routine, error) {
	r := &routine.Routine{
		Header: routine.Header{
			Name:    opts.Name,
			Session: opts.Session,
			Target:  opts.Target,
		},
		Steps: make([]routine.Step, 0, len(entries)),
	}

	for i, e := range entries {
		step, err := StepFor(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		r.Steps = append(r.Steps, step)
	}
	return r, nil
}

// StepFor maps a single log entry to its routine step.
func StepFor(e actionlog.Entry) (routine.Step, error) {
	switch v := e.(type) {
	case actionlog.HomeEntry:
		return &routine.HomeStep{BaseStep: base(routine.StepHome)}, nil
	case actionlog.BackEntry:
		return &routine.BackStep{BaseStep: base(routine.StepBack)}, nil
	case actionlog.SleepEntry:
		return &routine.SleepStep{BaseStep: base(routine.StepSleep), Seconds: v.Duration}, nil
	case actionlog.ClearEntry:
		return &routine.ClearTextStep{BaseStep: base(routine.StepClearText)}, nil
	case actionlog.KeyEntry:
		return &routine.PressKeyStep{BaseStep: base(routine.StepPressKey), KeyCode: v.KeyCode}, nil
	case actionlog.InputEntry:
		return &routine.InputTextStep{BaseStep: base(routine.StepInputText), Text: v.Text}, nil
	case actionlog.TapEntry:
		return &routine.TapOnStep{
			BaseStep:      base(routine.StepTapOn),
			Criteria:      v.Criteria,
			OriginalIndex: copyInt(v.OriginalIndex),
		}, nil
	case actionlog.LongPressEntry:
		return &routine.LongPressOnPointStep{
			BaseStep:   base(routine.StepLongPressOnPoint),
			X:          v.X,
			Y:          v.Y,
			DurationMs: v.Duration,
		}, nil
	default:
		return nil, core.ErrUnknownAction.WithMessage(fmt.Sprintf("no step for entry %T", e))
	}
}

func base(t routine.StepType) routine.BaseStep {
	return routine.BaseStep{StepType: t}
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CompileFile reads the log at logPath and compiles every well-formed line.
// Malformed lines are logged, reported in Result.Warnings and skipped.
func CompileFile(logPath string, opts Options) (*Result, error) {
	timer := logger.Start("compiler", "compile")

	records, warnings, err := actionlog.ParseFile(logPath)
	if err != nil {
		timer.End(err)
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn("compiler").
			Str("path", w.Path).
			Int("line", w.Line).
			Str("code", codeOf(w.Err)).
			Msg(w.Message)
	}

	r, err := Compile(actionlog.Entries(records), opts)
	if err != nil {
		timer.End(err)
		return nil, err
	}
	r.Header.Source = logPath

	timer.End(nil)
	logger.Info("compiler").
		Str("path", logPath).
		Int("steps", len(r.Steps)).
		Int("skipped", len(warnings)).
		Msg("action log compiled")

	return &Result{Routine: r, Warnings: warnings}, nil
}

// CompileToFile compiles logPath and writes the routine to outPath.
func CompileToFile(logPath, outPath string, opts Options) (*Result, error) {
	res, err := CompileFile(logPath, opts)
	if err != nil {
		return nil, err
	}
	if err := routine.WriteFile(outPath, res.Routine); err != nil {
		return nil, fmt.Errorf("failed to write routine: %w", err)
	}
	res.Routine.SourcePath = outPath
	return res, nil
}

func codeOf(err error) string {
	var e *core.ExecutionError
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
