package executor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/devicelab-dev/droidreplay/pkg/core"
	"github.com/devicelab-dev/droidreplay/pkg/driver/mock"
	"github.com/devicelab-dev/droidreplay/pkg/resolver"
	"github.com/devicelab-dev/droidreplay/pkg/routine"
)

// recordingSleeper records requested pauses without sleeping.
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return ctx.Err()
}

const okTree = `{"result":"{\"className\":\"FrameLayout\",\"children\":[{\"text\":\"OK\",\"className\":\"android.widget.Button\",\"bounds\":\"[0,0][200,100]\"}]}"}`

func base(t routine.StepType) routine.BaseStep {
	return routine.BaseStep{StepType: t}
}

func tapOn(text string) routine.Step {
	return &routine.TapOnStep{BaseStep: base(routine.StepTapOn), Criteria: resolver.Criteria{Text: text}}
}

func TestRunner_EndToEnd(t *testing.T) {
	d := mock.New(mock.Config{Trees: [][]byte{[]byte(okTree)}})
	s := &recordingSleeper{}
	r := New(d, RunnerConfig{}, WithSleeper(s.sleep), WithRunID("run-1"))

	rt := &routine.Routine{
		Header: routine.Header{Name: "ok"},
		Steps: []routine.Step{
			tapOn("OK"),
			&routine.SleepStep{BaseStep: base(routine.StepSleep), Seconds: 1.0},
			&routine.HomeStep{BaseStep: base(routine.StepHome)},
		},
	}

	res := r.Run(context.Background(), rt)

	wantCalls := []mock.Call{
		{Method: "AccessibilityTree"},
		{Method: "Tap", Args: []int{100, 50}},
		{Method: "GlobalAction", Args: []int{core.GlobalActionHome}},
	}
	if diff := cmp.Diff(wantCalls, d.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}

	wantWaits := []time.Duration{1500 * time.Millisecond, time.Second, 0, time.Second}
	if diff := cmp.Diff(wantWaits, s.waits); diff != "" {
		t.Errorf("pauses mismatch (-want +got):\n%s", diff)
	}

	if res.RunID != "run-1" || res.Name != "ok" {
		t.Errorf("RunID/Name = %q/%q", res.RunID, res.Name)
	}
	if !res.Complete() || res.PassedSteps != 3 {
		t.Errorf("result = %+v", res)
	}
	el := res.Steps[0].Element
	if el == nil || el.Index != 1 || el.X != 100 || el.Y != 50 || el.Score != 4 {
		t.Errorf("element = %+v", el)
	}
}

func TestRunner_UnresolvedTapSkips(t *testing.T) {
	d := mock.New(mock.Config{Trees: [][]byte{[]byte(okTree)}})
	s := &recordingSleeper{}
	r := New(d, RunnerConfig{}, WithSleeper(s.sleep))

	rt := &routine.Routine{Steps: []routine.Step{
		tapOn("Cancel"),
		&routine.BackStep{BaseStep: base(routine.StepBack)},
	}}

	res := r.Run(context.Background(), rt)

	if got := d.Methods(); !cmp.Equal(got, []string{"AccessibilityTree", "GlobalAction"}) {
		t.Errorf("methods = %v", got)
	}
	if res.Steps[0].Status != core.StatusSkipped || res.Steps[0].Category != core.ErrCategoryResolution {
		t.Errorf("step 0 = %+v", res.Steps[0])
	}
	if res.Steps[0].Message != "element not found, step skipped" {
		t.Errorf("Message = %q", res.Steps[0].Message)
	}
	if res.Steps[1].Status != core.StatusPassed {
		t.Errorf("step 1 = %+v", res.Steps[1])
	}
	if res.SkippedSteps != 1 || res.PassedSteps != 1 || res.Complete() {
		t.Errorf("summary = %+v", res)
	}
	// Settle still applies after the skipped tap.
	if len(s.waits) != 2 || s.waits[0] != 1500*time.Millisecond {
		t.Errorf("waits = %v", s.waits)
	}
}

func TestRunner_SkipCategories(t *testing.T) {
	tests := []struct {
		name string
		cfg  mock.Config
		step routine.Step
		want core.ErrorCategory
	}{
		{
			name: "no bounds",
			cfg:  mock.Config{Trees: [][]byte{[]byte(`{"text":"OK"}`)}},
			step: tapOn("OK"),
			want: core.ErrCategoryBounds,
		},
		{
			name: "empty tree",
			cfg:  mock.Config{Trees: [][]byte{[]byte(`{"result":null}`)}},
			step: tapOn("OK"),
			want: core.ErrCategoryResolution,
		},
		{
			name: "undecodable tree",
			cfg:  mock.Config{Trees: [][]byte{[]byte(`<html>`)}},
			step: tapOn("OK"),
			want: core.ErrCategoryResolution,
		},
		{
			name: "tree fetch fails",
			cfg:  mock.Config{Fail: map[string]error{"AccessibilityTree": core.ErrTransport}},
			step: tapOn("OK"),
			want: core.ErrCategoryTransport,
		},
		{
			name: "tap fails",
			cfg:  mock.Config{Trees: [][]byte{[]byte(okTree)}, Fail: map[string]error{"Tap": core.ErrHTTPStatus}},
			step: tapOn("OK"),
			want: core.ErrCategoryTransport,
		},
		{
			name: "key fails",
			cfg:  mock.Config{Fail: map[string]error{"PressKey": core.ErrTimeout}},
			step: &routine.PressKeyStep{BaseStep: base(routine.StepPressKey), KeyCode: 66},
			want: core.ErrCategoryTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &recordingSleeper{}
			r := New(mock.New(tt.cfg), RunnerConfig{}, WithSleeper(s.sleep))
			res := r.Run(context.Background(), &routine.Routine{Steps: []routine.Step{tt.step}})

			sr := res.Steps[0]
			if sr.Status != core.StatusSkipped {
				t.Fatalf("Status = %v, want skipped", sr.Status)
			}
			if sr.Category != tt.want {
				t.Errorf("Category = %v, want %v", sr.Category, tt.want)
			}
			if sr.Error == "" {
				t.Error("Error is empty")
			}
		})
	}
}

func TestRunner_DirectActions(t *testing.T) {
	d := mock.New(mock.Config{})
	s := &recordingSleeper{}
	r := New(d, RunnerConfig{}, WithSleeper(s.sleep))

	settle := 0
	rt := &routine.Routine{Steps: []routine.Step{
		&routine.BackStep{BaseStep: base(routine.StepBack)},
		&routine.ClearTextStep{BaseStep: base(routine.StepClearText)},
		&routine.PressKeyStep{BaseStep: routine.BaseStep{StepType: routine.StepPressKey, SettleMs: &settle}, KeyCode: 66},
		&routine.InputTextStep{BaseStep: base(routine.StepInputText), Text: "สวัสดี"},
		&routine.LongPressOnPointStep{BaseStep: base(routine.StepLongPressOnPoint), X: 10, Y: 20, DurationMs: 1200},
	}}

	res := r.Run(context.Background(), rt)
	if !res.Complete() {
		t.Fatalf("result = %+v", res)
	}

	want := []mock.Call{
		{Method: "GlobalAction", Args: []int{core.GlobalActionBack}},
		{Method: "ClearText"},
		{Method: "PressKey", Args: []int{66}},
		{Method: "InputText", Text: "สวัสดี"},
		{Method: "Swipe", Args: []int{10, 20, 10, 20, 1200}},
	}
	if diff := cmp.Diff(want, d.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}

	wantWaits := []time.Duration{time.Second, 500 * time.Millisecond, 0, time.Second, time.Second}
	if diff := cmp.Diff(wantWaits, s.waits); diff != "" {
		t.Errorf("pauses mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_Cancellation(t *testing.T) {
	d := mock.New(mock.Config{})
	ctx, cancel := context.WithCancel(context.Background())

	var started []int
	r := New(d, RunnerConfig{
		OnStepStart: func(idx, total int, desc string) { started = append(started, idx) },
	}, WithSleeper(func(ctx context.Context, dur time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	rt := &routine.Routine{Steps: []routine.Step{
		&routine.HomeStep{BaseStep: base(routine.StepHome)},
		&routine.BackStep{BaseStep: base(routine.StepBack)},
		&routine.HomeStep{BaseStep: base(routine.StepHome)},
	}}
	res := r.Run(ctx, rt)

	if !res.Cancelled {
		t.Error("Cancelled = false")
	}
	if len(started) != 1 {
		t.Errorf("started = %v", started)
	}
	if res.Steps[0].Status != core.StatusPassed {
		t.Errorf("step 0 = %v", res.Steps[0].Status)
	}
	for _, sr := range res.Steps[1:] {
		if sr.Status != core.StatusSkipped || sr.Message != "run cancelled" {
			t.Errorf("step %d = %+v", sr.Index, sr)
		}
	}
	if len(d.Calls()) != 1 {
		t.Errorf("calls = %v", d.Methods())
	}
}

func TestRunner_Callbacks(t *testing.T) {
	var descs []string
	var completed []core.StepStatus
	r := New(mock.New(mock.Config{}), RunnerConfig{
		OnStepStart:    func(idx, total int, desc string) { descs = append(descs, desc) },
		OnStepComplete: func(idx int, sr core.StepResult) { completed = append(completed, sr.Status) },
	}, WithSleeper((&recordingSleeper{}).sleep))

	rt := &routine.Routine{Steps: []routine.Step{
		&routine.SleepStep{BaseStep: routine.BaseStep{StepType: routine.StepSleep, StepLabel: "wait"}, Seconds: 2},
		tapOn("Missing"),
	}}
	r.Run(context.Background(), rt)

	if diff := cmp.Diff([]string{"wait", `tapOn text="Missing"`}, descs); diff != "" {
		t.Errorf("descs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]core.StepStatus{core.StatusPassed, core.StatusSkipped}, completed); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestSleep(t *testing.T) {
	if err := Sleep(context.Background(), 0); err != nil {
		t.Errorf("Sleep(0) = %v", err)
	}
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("Sleep(1ms) = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep(cancelled) = %v", err)
	}
}
