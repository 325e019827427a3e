package compiler

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/devicelab-dev/droidreplay/pkg/logger"
)

// WatchDebounce is how long the log must stay quiet before recompiling.
var WatchDebounce = 300 * time.Millisecond

// Watch compiles logPath to outPath once, then again after every change to the
// log, until ctx is done. onCompile, if set, receives each outcome on the
// calling goroutine, and never after Watch returns.
func Watch(ctx context.Context, logPath, outPath string, opts Options, onCompile func(*Result, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// The recorder truncates and recreates the log, so watch its directory.
	target := filepath.Clean(logPath)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", logPath, err)
	}

	compile := func() {
		res, err := CompileToFile(logPath, outPath, opts)
		if err != nil {
			logger.Warn("compiler").Err(err).Str("path", logPath).Msg("recompile failed")
		}
		if onCompile != nil {
			onCompile(res, err)
		}
	}

	compile()
	logger.Info("compiler").Str("path", logPath).Msg("watching action log")

	// Recompiles run on this goroutine, so none can outlive Watch.
	var (
		debounceTimer *time.Timer
		debounce      <-chan time.Time
	)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-debounce:
			debounce = nil
			if ctx.Err() != nil {
				return nil
			}
			compile()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if debounceTimer == nil {
				debounceTimer = time.NewTimer(WatchDebounce)
			} else {
				debounceTimer.Reset(WatchDebounce)
			}
			debounce = debounceTimer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("compiler").Err(err).Msg("watcher error")
		}
	}
}
