package watcher

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nguyentantai21042004/summary-flow/internal/logger"
)

func TestIsJobFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"inbox/talk.url", true},
		{"inbox/batch.URLS", true},
		{"inbox/list.txt", true},
		{"inbox/video.mp4", false},
		{"inbox/.hidden.url", false},
		{"inbox/noext", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := isJobFile(tt.path); got != tt.want {
				t.Errorf("isJobFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestNewMissingDir(t *testing.T) {
	log := logger.NewWithWriter(io.Discard, "debug", "text")
	if _, err := New(filepath.Join(t.TempDir(), "missing"), nil, log, 1, 0); err == nil {
		t.Error("New() expected error for missing inbox, got nil")
	}
}

func TestWatcherDispatchesJobFiles(t *testing.T) {
	inbox := t.TempDir()
	log := logger.NewWithWriter(io.Discard, "debug", "text")

	// left over from a previous run
	pending := filepath.Join(inbox, "pending.urls")
	if err := os.WriteFile(pending, []byte("https://a\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got := make(chan string, 4)
	handler := func(ctx context.Context, path string) error {
		got <- filepath.Base(path)
		return nil
	}

	w, err := New(inbox, handler, log, 1, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	expect := func(want string) {
		t.Helper()
		select {
		case name := <-got:
			if name != want {
				t.Errorf("handled %q, want %q", name, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}

	expect("pending.urls")

	if err := os.WriteFile(filepath.Join(inbox, "ignored.mp4"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(inbox, "new.url"), []byte("https://b\n"), 0644); err != nil {
		t.Fatal(err)
	}
	expect("new.url")

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}

	select {
	case name := <-got:
		t.Errorf("unexpected job handled: %s", name)
	default:
	}
}

func TestWatcherDrainsInFlightJobsOnCancel(t *testing.T) {
	inbox := t.TempDir()
	log := logger.NewWithWriter(io.Discard, "debug", "text")

	// already queued, so the startup scan dispatches it
	if err := os.WriteFile(filepath.Join(inbox, "slow.url"), []byte("https://a\n"), 0644); err != nil {
		t.Fatal(err)
	}

	started := make(chan struct{})
	var finished atomic.Bool
	handler := func(ctx context.Context, path string) error {
		close(started)
		time.Sleep(300 * time.Millisecond)
		finished.Store(true)
		return nil
	}

	w, err := New(inbox, handler, log, 1, 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("handler never started")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start() error = %v, want context.Canceled", err)
		}
		if !finished.Load() {
			t.Error("Start() returned while a handler was still running")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}

func TestDispatchSkipsPathInFlight(t *testing.T) {
	inbox := t.TempDir()
	log := logger.NewWithWriter(io.Discard, "debug", "text")

	release := make(chan struct{})
	var calls atomic.Int32
	handler := func(ctx context.Context, path string) error {
		calls.Add(1)
		<-release
		return nil
	}

	wt, err := New(inbox, handler, log, 2, 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer wt.Stop()
	w := wt.(*implWatcher)

	ctx := context.Background()
	path := filepath.Join(inbox, "job.url")
	w.dispatch(ctx, path)
	w.dispatch(ctx, path)
	close(release)
	w.wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("handler called %d times, want 1", n)
	}

	// handled paths may be dispatched again
	w.dispatch(ctx, path)
	w.wg.Wait()
	if n := calls.Load(); n != 2 {
		t.Errorf("handler called %d times after redispatch, want 2", n)
	}
}
