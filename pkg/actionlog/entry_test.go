package actionlog

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/devicelab-dev/droidreplay/pkg/core"
	"github.com/devicelab-dev/droidreplay/pkg/resolver"
)

func intPtr(v int) *int { return &v }

func TestUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Entry
	}{
		{"home", `{"action":"home"}`, HomeEntry{}},
		{"back", `{"action":"back"}`, BackEntry{}},
		{"clear", `{"action":"clear"}`, ClearEntry{}},
		{"sleep", `{"action":"sleep","duration":2.5}`, SleepEntry{Duration: 2.5}},
		{"sleep default", `{"action":"sleep"}`, SleepEntry{Duration: 1.0}},
		{"key", `{"action":"key","key_code":66}`, KeyEntry{KeyCode: 66}},
		{"input", `{"action":"input","text":"สวัสดี"}`, InputEntry{Text: "สวัสดี"}},
		{"input without text", `{"action":"input"}`, InputEntry{}},
		{
			"tap",
			`{"action":"tap","original_index":7,"criteria":{"text":"OK","contentDescription":null,"resourceId":"id/ok","className":"android.widget.Button"}}`,
			TapEntry{Criteria: resolver.Criteria{Text: "OK", ResourceID: "id/ok", ClassName: "android.widget.Button"}, OriginalIndex: intPtr(7)},
		},
		{"tap without criteria", `{"action":"tap"}`, TapEntry{}},
		{"long press", `{"action":"long_press","x":10,"y":20,"duration":1500}`, LongPressEntry{X: 10, Y: 20, Duration: 1500}},
		{"long press default", `{"action":"long_press","x":10,"y":20}`, LongPressEntry{X: 10, Y: 20, Duration: 1000}},
		{"unknown fields ignored", `{"action":"home","extra":true}`, HomeEntry{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unmarshal([]byte(tt.line))
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnmarshal_Rejects(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"invalid json", `{"action":`, core.ErrDecode},
		{"not an object", `[1,2]`, core.ErrDecode},
		{"missing action", `{"x":1}`, core.ErrInvalidEntry},
		{"unknown action", `{"action":"teleport"}`, core.ErrUnknownAction},
		{"key without code", `{"action":"key"}`, core.ErrInvalidEntry},
		{"long press without y", `{"action":"long_press","x":1}`, core.ErrInvalidEntry},
		{"negative sleep", `{"action":"sleep","duration":-1}`, core.ErrInvalidEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.line))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMarshal(t *testing.T) {
	tests := []struct {
		entry Entry
		want  string
	}{
		{HomeEntry{}, `{"action":"home"}`},
		{SleepEntry{Duration: 1.5}, `{"action":"sleep","duration":1.5}`},
		{KeyEntry{KeyCode: 0}, `{"action":"key","key_code":0}`},
		{InputEntry{Text: ""}, `{"action":"input","text":""}`},
		{TapEntry{Criteria: resolver.Criteria{Text: "OK"}, OriginalIndex: intPtr(3)}, `{"action":"tap","original_index":3,"criteria":{"text":"OK"}}`},
		{LongPressEntry{X: 1, Y: 2, Duration: 1000}, `{"action":"long_press","x":1,"y":2,"duration":1000}`},
	}

	for _, tt := range tests {
		got, err := Marshal(tt.entry)
		if err != nil {
			t.Fatalf("Marshal(%v) error = %v", tt.entry, err)
		}
		if string(got) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", tt.entry, got, tt.want)
		}
	}
}

type bogusEntry struct{}

func (bogusEntry) Kind() Action { return "bogus" }

func TestMarshal_UnknownType(t *testing.T) {
	if _, err := Marshal(bogusEntry{}); !errors.Is(err, core.ErrUnknownAction) {
		t.Errorf("err = %v, want ErrUnknownAction", err)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		entry Entry
		want  string
	}{
		{HomeEntry{}, "home"},
		{SleepEntry{Duration: 1}, "sleep 1s"},
		{KeyEntry{KeyCode: 66}, "key 66"},
		{InputEntry{Text: "hi"}, `input "hi"`},
		{TapEntry{Criteria: resolver.Criteria{Text: "OK"}}, `tap text="OK"`},
		{LongPressEntry{X: 1, Y: 2, Duration: 900}, "long_press (1,2) 900ms"},
	}
	for _, tt := range tests {
		if got := Describe(tt.entry); got != tt.want {
			t.Errorf("Describe() = %q, want %q", got, tt.want)
		}
	}
}
