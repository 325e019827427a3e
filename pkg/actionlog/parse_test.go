package actionlog

import (
	"errors"
	"strings"
	"testing"

	"github.com/devicelab-dev/droidreplay/pkg/core"
)

func TestParse_SkipsMalformedLines(t *testing.T) {
	log := strings.Join([]string{
		`{"action":"home"}`,
		`{"action":"sleep","duration":1.0}`,
		`{"action":"tap","criteria":{"text":"OK"}}`,
		`{"action":"key","key_code":66`,
		`{"action":"back"}`,
		`{"action":"clear"}`,
	}, "\n")

	records, warnings, err := Parse(strings.NewReader(log), "log.txt")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 5 {
		t.Errorf("got %d records, want 5", len(records))
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	if warnings[0].Line != 4 {
		t.Errorf("warning line = %d, want 4", warnings[0].Line)
	}
	if !errors.Is(warnings[0], core.ErrDecode) {
		t.Errorf("warning = %v, want decode error", warnings[0])
	}
	if !strings.HasPrefix(warnings[0].Error(), "log.txt:4: ") {
		t.Errorf("Error() = %q", warnings[0].Error())
	}

	wantLines := []int{1, 2, 3, 5, 6}
	for i, r := range records {
		if r.Line != wantLines[i] {
			t.Errorf("records[%d].Line = %d, want %d", i, r.Line, wantLines[i])
		}
	}
}

func TestParse_BlankLinesAndUnknownActions(t *testing.T) {
	log := "\n{\"action\":\"home\"}\n   \n{\"action\":\"fly\"}\n\n"

	records, warnings, err := Parse(strings.NewReader(log), "log.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Line != 2 {
		t.Errorf("records = %+v", records)
	}
	if len(warnings) != 1 || warnings[0].Line != 4 || !errors.Is(warnings[0], core.ErrUnknownAction) {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, _, err := ParseFile("/nonexistent/log.txt"); err == nil {
		t.Error("expected error")
	}
}

func TestParse_OverlongLineIsSkipped(t *testing.T) {
	huge := `{"action":"input","text":"` + strings.Repeat("x", 2<<20) + `"}`
	log := strings.Join([]string{`{"action":"home"}`, huge, `{"action":"back"}`}, "\n")

	records, warnings, err := Parse(strings.NewReader(log), "log.txt")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 2 || records[0].Line != 1 || records[1].Line != 3 {
		t.Fatalf("records = %+v, want lines 1 and 3", records)
	}
	if _, ok := records[1].Entry.(BackEntry); !ok {
		t.Errorf("records[1] = %T, want BackEntry", records[1].Entry)
	}
	if len(warnings) != 1 || warnings[0].Line != 2 {
		t.Fatalf("warnings = %v, want one on line 2", warnings)
	}
	if !errors.Is(warnings[0], core.ErrInvalidEntry) {
		t.Errorf("warning = %v, want invalid entry", warnings[0])
	}
}

func TestParse_LastLineWithoutNewline(t *testing.T) {
	records, warnings, err := Parse(strings.NewReader("{\"action\":\"home\"}\r\n{\"action\":\"back\"}"), "log.txt")
	if err != nil || len(warnings) != 0 {
		t.Fatalf("Parse() err = %v, warnings = %v", err, warnings)
	}
	if len(records) != 2 || records[1].Line != 2 {
		t.Errorf("records = %+v", records)
	}
}
