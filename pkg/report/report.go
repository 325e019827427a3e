// Package report writes replay results for people and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/devicelab-dev/droidreplay/pkg/core"
)

// WriteJSON writes r to path atomically (temp file + rename).
func WriteJSON(path string, r *core.RoutineResult) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return atomicWrite(path, data)
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var (
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	skipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// PrintStep writes one progress line for a finished step.
func PrintStep(w io.Writer, total int, sr core.StepResult) {
	mark := passStyle.Render("✓")
	if sr.Status != core.StatusPassed {
		mark = skipStyle.Render("↷")
	}
	line := fmt.Sprintf("%s [%d/%d] %s", mark, sr.Index+1, total, sr.Message)
	if sr.Status != core.StatusPassed && sr.Category != core.ErrCategoryNone {
		line += mutedStyle.Render(fmt.Sprintf(" (%s)", sr.Category))
	}
	fmt.Fprintln(w, line)
}

// PrintSummary writes the end-of-run summary.
func PrintSummary(w io.Writer, r *core.RoutineResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render(r.Name))

	parts := []string{
		passStyle.Render(fmt.Sprintf("%d passed", r.PassedSteps)),
		skipStyle.Render(fmt.Sprintf("%d skipped", r.SkippedSteps)),
	}
	fmt.Fprintf(w, "  %s of %d steps in %s\n", strings.Join(parts, ", "), r.TotalSteps, r.Duration.Round(time.Millisecond))

	if r.Cancelled {
		fmt.Fprintln(w, skipStyle.Render("  replay cancelled"))
	}
	for _, sr := range r.Steps {
		if sr.Status == core.StatusSkipped && sr.Error != "" {
			fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render(fmt.Sprintf("step %d:", sr.Index+1)), sr.Error)
		}
	}
	fmt.Fprintln(w, mutedStyle.Render("  run "+r.RunID))
}
