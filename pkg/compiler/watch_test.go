package compiler

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func setDebounce(t *testing.T, d time.Duration) {
	t.Helper()
	orig := WatchDebounce
	WatchDebounce = d
	t.Cleanup(func() { WatchDebounce = orig })
}

func TestWatch_Recompiles(t *testing.T) {
	setDebounce(t, 20*time.Millisecond)

	dir := t.TempDir()
	logPath := filepath.Join(dir, "action_wifi_log.txt")
	outPath := filepath.Join(dir, "routine.yaml")
	if err := os.WriteFile(logPath, []byte("{\"action\":\"home\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	results := make(chan int, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, logPath, outPath, Options{}, func(res *Result, err error) {
			if err != nil {
				results <- -1
				return
			}
			results <- len(res.Routine.Steps)
		})
	}()

	waitFor := func(want int) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case n := <-results:
				if n == want {
					return
				}
			case <-deadline:
				t.Fatalf("timed out waiting for %d steps", want)
			}
		}
	}

	waitFor(1)

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("{\"action\":\"back\"}\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	waitFor(2)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}

	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("routine not written: %v", err)
	}
}

func TestWatch_MissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "no", "log.txt"), "out.yaml", Options{}, nil)
	if err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWatch_NoCompileAfterReturn(t *testing.T) {
	setDebounce(t, 100*time.Millisecond)

	dir := t.TempDir()
	logPath := filepath.Join(dir, "action_wifi_log.txt")
	if err := os.WriteFile(logPath, []byte("{\"action\":\"home\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	first := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, logPath, filepath.Join(dir, "routine.yaml"), Options{}, func(*Result, error) {
			if calls.Add(1) == 1 {
				close(first)
			}
		})
	}()
	<-first

	// Leave a recompile pending, then stop before it is due.
	if err := os.WriteFile(logPath, []byte("{\"action\":\"back\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
	after := calls.Load()

	time.Sleep(3 * WatchDebounce)
	if got := calls.Load(); got != after {
		t.Errorf("onCompile ran %d time(s) after Watch returned", got-after)
	}
}
