// Package executor replays compiled routines against a device.
package executor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/droidreplay/pkg/core"
	"github.com/devicelab-dev/droidreplay/pkg/logger"
	"github.com/devicelab-dev/droidreplay/pkg/routine"
)

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// RunnerConfig configures the replay runner.
type RunnerConfig struct {
	// Live progress callbacks
	OnStepStart    func(idx, total int, desc string)
	OnStepComplete func(idx int, result core.StepResult)
}

// Option customizes a Runner.
type Option func(*Runner)

// WithSleeper replaces the real-time pause used for settle and sleep steps.
func WithSleeper(s Sleeper) Option {
	return func(r *Runner) { r.sleep = s }
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(r *Runner) { r.runID = id }
}

// Runner replays routines one step at a time.
type Runner struct {
	config RunnerConfig
	driver core.Driver
	sleep  Sleeper
	runID  string
}

// New creates a new Runner.
func New(driver core.Driver, cfg RunnerConfig, opts ...Option) *Runner {
	r := &Runner{
		config: cfg,
		driver: driver,
		sleep:  Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run replays every step in order. A step that cannot act (device error,
// unresolved element, missing bounds) is marked skipped and replay continues.
// Cancelling ctx stops between steps or during a pause; the remaining steps
// are marked skipped.
func (r *Runner) Run(ctx context.Context, rt *routine.Routine) *core.RoutineResult {
	runID := r.runID
	if runID == "" {
		runID = uuid.NewString()
	}

	result := &core.RoutineResult{
		RunID:     runID,
		Name:      rt.DisplayName(),
		File:      rt.SourcePath,
		StartTime: time.Now(),
		Steps:     make([]core.StepResult, 0, len(rt.Steps)),
	}

	logger.Info("executor").
		Str("run", runID).
		Str("routine", result.Name).
		Int("steps", len(rt.Steps)).
		Msg("replay started")

	total := len(rt.Steps)
	for i, step := range rt.Steps {
		if ctx.Err() != nil {
			result.Cancelled = true
			result.Steps = append(result.Steps, core.StepResult{
				Index:   i,
				Command: string(step.Type()),
				Label:   step.Label(),
				Status:  core.StatusSkipped,
				Message: "run cancelled",
			})
			continue
		}

		if r.config.OnStepStart != nil {
			r.config.OnStepStart(i, total, describe(step))
		}

		sr := r.runStep(ctx, i, step)
		result.Steps = append(result.Steps, sr)

		if r.config.OnStepComplete != nil {
			r.config.OnStepComplete(i, sr)
		}
	}

	if ctx.Err() != nil {
		result.Cancelled = true
	}
	result.Duration = time.Since(result.StartTime)
	result.ComputeSummary()

	logger.Info("executor").
		Str("run", runID).
		Int("passed", result.PassedSteps).
		Int("skipped", result.SkippedSteps).
		Bool("cancelled", result.Cancelled).
		Dur("duration", result.Duration).
		Msg("replay finished")

	return result
}

func (r *Runner) runStep(ctx context.Context, idx int, step routine.Step) core.StepResult {
	sr := core.StepResult{
		Index:     idx,
		Command:   string(step.Type()),
		Label:     step.Label(),
		Status:    core.StatusRunning,
		StartTime: time.Now(),
	}

	element, msg, err := r.execute(ctx, step)
	sr.Element = element

	if err != nil {
		sr.Status = core.StatusSkipped
		sr.Category = core.CategoryOf(err)
		sr.Error = err.Error()
		sr.Message = skipMessage(ctx, err)
		logger.Warn("executor").
			Int("step", idx+1).
			Str("command", sr.Command).
			Str("code", errorCode(err)).
			Err(err).
			Msg(sr.Message)
	} else {
		sr.Status = core.StatusPassed
		sr.Message = msg
		logger.Debug("executor").Int("step", idx+1).Msg(sr.Message)
	}

	// Settle even after a skipped step; the next tree fetch must see a quiet UI.
	_ = r.sleep(ctx, step.Settle())

	sr.Duration = time.Since(sr.StartTime)
	return sr
}

func describe(step routine.Step) string {
	if l := step.Label(); l != "" {
		return l
	}
	return step.Describe()
}
