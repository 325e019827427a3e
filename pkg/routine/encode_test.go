package routine

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/devicelab-dev/droidreplay/pkg/resolver"
)

func sampleRoutine() *Routine {
	return &Routine{
		Header: Header{Name: "demo", Source: "log.txt", Target: Target{Host: "10.0.0.2", Port: 8080}},
		Steps: []Step{
			&TapOnStep{BaseStep: BaseStep{StepType: StepTapOn}, Criteria: resolver.Criteria{Text: "OK", ClassName: "android.widget.Button"}, OriginalIndex: intPtr(4)},
			&SleepStep{BaseStep: BaseStep{StepType: StepSleep}, Seconds: 1},
			&HomeStep{BaseStep: BaseStep{StepType: StepHome}},
			&InputTextStep{BaseStep: BaseStep{StepType: StepInputText, StepLabel: "greet"}, Text: "hello: world"},
			&PressKeyStep{BaseStep: BaseStep{StepType: StepPressKey, SettleMs: intPtr(0)}, KeyCode: 66},
			&LongPressOnPointStep{BaseStep: BaseStep{StepType: StepLongPressOnPoint}, X: 5, Y: 6, DurationMs: 1000},
		},
	}
}

func TestEncode_Format(t *testing.T) {
	data, err := Encode(sampleRoutine())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	want := `name: demo
source: log.txt
target:
  host: 10.0.0.2
  port: 8080
---
- tapOn:
    text: OK
    className: android.widget.Button
    originalIndex: 4
- sleep:
    seconds: 1
- home
- inputText:
    label: greet
    text: 'hello: world'
- pressKey:
    settleMs: 0
    keyCode: 66
- longPressOnPoint:
    x: 5
    "y": 6
    duration: 1000
`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	orig := sampleRoutine()
	path := filepath.Join(t.TempDir(), "r.yaml")
	if err := WriteFile(path, orig); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if diff := cmp.Diff(orig.Header, got.Header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(orig.Steps, got.Steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	a, err := Encode(sampleRoutine())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encode(sampleRoutine())
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("encoding is not deterministic")
	}
}

func TestEncode_Empty(t *testing.T) {
	data, err := Encode(&Routine{})
	if err != nil {
		t.Fatal(err)
	}
	r, err := Parse(data, "empty.yaml")
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", data, err)
	}
	if len(r.Steps) != 0 {
		t.Errorf("got %d steps", len(r.Steps))
	}
}

func TestEncode_TapOnKeepsCriteria(t *testing.T) {
	orig := &Routine{Steps: []Step{
		&TapOnStep{
			BaseStep: BaseStep{StepType: StepTapOn, StepLabel: "L", SettleMs: intPtr(200)},
			Criteria: resolver.Criteria{
				Text:               "OK",
				ContentDescription: "d",
				ResourceID:         "r",
				ClassName:          "c",
			},
			OriginalIndex: intPtr(7),
		},
	}}

	data, err := Encode(orig)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := `{}
---
- tapOn:
    label: L
    settleMs: 200
    text: OK
    contentDescription: d
    resourceId: r
    className: c
    originalIndex: 7
`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	got, err := Parse(data, "r.yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if diff := cmp.Diff(orig.Steps, got.Steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
}
