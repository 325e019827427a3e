// Package logger provides the process-wide structured logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	globalLogger = zerolog.Nop()
	logFile      *os.File
	mu           sync.RWMutex
)

// Options configures Init.
type Options struct {
	Path    string // Log file; empty disables file output
	Console bool   // Also write human-readable lines to stderr
	Verbose bool   // Debug level instead of Info
}

// Init initializes the global logger. Until Init is called every helper is a
// no-op.
func Init(opts Options) error {
	var writers []io.Writer

	var f *os.File
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		var err error
		f, err = os.OpenFile(opts.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //#nosec G302 G304 -- log path from config
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		writers = append(writers, f)
	}
	if opts.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	mu.Lock()
	defer mu.Unlock()

	// Close previous log file if exists
	if logFile != nil {
		logFile.Close()
	}
	logFile = f

	if len(writers) == 0 {
		globalLogger = zerolog.Nop()
		return nil
	}
	globalLogger = newLogger(zerolog.MultiLevelWriter(writers...), opts.Verbose)
	return nil
}

// SetOutput routes the logger to w, replacing any previous destination.
func SetOutput(w io.Writer, verbose bool) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = newLogger(w, verbose)
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Close closes the log file and disables logging.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	globalLogger = zerolog.Nop()
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := globalLogger
	return &l
}

// Debug starts a debug event tagged with module.
func Debug(module string) *zerolog.Event {
	return current().Debug().Str("module", module)
}

// Info starts an info event tagged with module.
func Info(module string) *zerolog.Event {
	return current().Info().Str("module", module)
}

// Warn starts a warning event tagged with module.
func Warn(module string) *zerolog.Event {
	return current().Warn().Str("module", module)
}

// Error starts an error event tagged with module.
func Error(module string) *zerolog.Event {
	return current().Error().Str("module", module)
}

// Timer measures one operation.
type Timer struct {
	module    string
	operation string
	start     time.Time
}

// Start begins timing operation.
func Start(module, operation string) *Timer {
	return &Timer{module: module, operation: operation, start: time.Now()}
}

// End logs the elapsed time at debug level, or at warn level when err is set.
func (t *Timer) End(err error) {
	elapsed := time.Since(t.start)
	ev := Debug(t.module)
	if err != nil {
		ev = Warn(t.module).Err(err)
	}
	ev.Str("operation", t.operation).
		Int64("duration_ms", elapsed.Milliseconds()).
		Msg("operation finished")
}
