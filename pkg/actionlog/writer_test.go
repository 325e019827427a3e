package actionlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/devicelab-dev/droidreplay/pkg/resolver"
)

func TestWriter_TruncatesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "action_log.txt")
	if err := os.WriteFile(path, []byte("{\"action\":\"home\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer w.Close()

	data, _ := os.ReadFile(path)
	if len(data) != 0 {
		t.Fatalf("log not truncated: %q", data)
	}

	entries := []Entry{
		TapEntry{Criteria: resolver.Criteria{Text: "<OK & go>"}},
		InputEntry{Text: "ภาษาไทย"},
		BackEntry{},
	}
	for i, e := range entries {
		if err := w.Append(e); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		// Every append is visible on disk before Append returns.
		data, _ := os.ReadFile(path)
		if n := strings.Count(string(data), "\n"); n != i+1 {
			t.Errorf("after append %d: %d lines on disk", i, n)
		}
	}

	data, _ = os.ReadFile(path)
	if !strings.Contains(string(data), "<OK & go>") || !strings.Contains(string(data), "ภาษาไทย") {
		t.Errorf("text was escaped: %s", data)
	}

	records, warnings, err := ParseFile(path)
	if err != nil || len(warnings) != 0 {
		t.Fatalf("ParseFile() = %v, %v", warnings, err)
	}
	if diff := cmp.Diff(entries, Entries(records)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestWriter_AppendAfterClose(t *testing.T) {
	w, err := Create(filepath.Join(t.TempDir(), "log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Append(HomeEntry{}); err == nil {
		t.Error("expected error appending to closed writer")
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
