package actionlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Writer appends entries to a log file, one JSON object per line.
type Writer struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// Create truncates (or creates) the log at path and opens it for appending.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create action log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY|os.O_APPEND, 0o644) //#nosec G302 G304 -- user-chosen log path
	if err != nil {
		return nil, fmt.Errorf("failed to create action log: %w", err)
	}
	return &Writer{path: path, f: f}, nil
}

// Path returns the log file path.
func (w *Writer) Path() string {
	return w.path
}

// Append writes e as a single line and syncs it to disk before returning.
func (w *Writer) Append(e Entry) error {
	wire, err := toWire(e)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wire); err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return os.ErrClosed
	}
	if _, err := w.f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}
	return w.f.Sync()
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}
