// Package validator checks routine files before replay.
// It parses every file upfront and reports steps that cannot act as written.
package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/devicelab-dev/droidreplay/pkg/routine"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	File    string
	Step    int // 1-based; 0 for file-level errors
	Message string
}

func (e *ValidationError) Error() string {
	if e.Step > 0 {
		return fmt.Sprintf("%s: step %d: %s", e.File, e.Step, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Result contains the validation result.
type Result struct {
	// Files lists the routine files that parsed, in walk order.
	Files []string
	// Routines holds the parsed routines, parallel to Files.
	Routines []*routine.Routine
	// Errors contains all validation errors found.
	Errors []error
}

// IsValid returns true if there are no validation errors.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Validate validates a routine file or every .yaml/.yml file under a directory.
func Validate(path string) *Result {
	result := &Result{}

	info, err := os.Stat(path)
	if err != nil {
		result.Errors = append(result.Errors, &ValidationError{
			File:    path,
			Message: fmt.Sprintf("cannot access: %v", err),
		})
		return result
	}

	files := []string{path}
	if info.IsDir() {
		files, err = collectRoutineFiles(path)
		if err != nil {
			result.Errors = append(result.Errors, &ValidationError{
				File:    path,
				Message: fmt.Sprintf("failed to scan directory: %v", err),
			})
			return result
		}
	}

	for _, file := range files {
		rt, err := routine.ParseFile(file)
		if err != nil {
			result.Errors = append(result.Errors, &ValidationError{
				File:    file,
				Message: fmt.Sprintf("parse error: %v", err),
			})
			continue
		}
		result.Files = append(result.Files, file)
		result.Routines = append(result.Routines, rt)
		result.Errors = append(result.Errors, Routine(rt)...)
	}

	return result
}

// Routine checks each step of rt.
func Routine(rt *routine.Routine) []error {
	var errs []error
	if len(rt.Steps) == 0 {
		errs = append(errs, &ValidationError{File: rt.SourcePath, Message: "routine has no steps"})
	}
	for i, step := range rt.Steps {
		if msg := checkStep(step); msg != "" {
			errs = append(errs, &ValidationError{
				File:    rt.SourcePath,
				Step:    i + 1,
				Message: fmt.Sprintf("%s: %s", step.Type(), msg),
			})
		}
	}
	return errs
}

// checkStep returns a problem description, or "" when the step is sound.
func checkStep(step routine.Step) string {
	if step.Settle() < 0 {
		return "settleMs must not be negative"
	}

	switch s := step.(type) {
	case *routine.SleepStep:
		if s.Seconds < 0 {
			return "seconds must not be negative"
		}
	case *routine.PressKeyStep:
		if s.KeyCode < 0 {
			return "keyCode must not be negative"
		}
	case *routine.InputTextStep:
		if s.Text == "" {
			return "text is empty"
		}
	case *routine.TapOnStep:
		if s.Criteria.IsEmpty() {
			return "needs text, contentDescription or resourceId"
		}
	case *routine.LongPressOnPointStep:
		if s.X < 0 || s.Y < 0 {
			return fmt.Sprintf("point (%d,%d) is off screen", s.X, s.Y)
		}
		if s.DurationMs <= 0 {
			return "duration must be positive"
		}
	}
	return ""
}

// collectRoutineFiles finds all .yaml/.yml files in a directory.
func collectRoutineFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}
