package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/summary-flow/internal/logger"
)

var jobExtensions = []string{".url", ".urls", ".txt"}

type implWatcher struct {
	inboxDir      string
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	settle        time.Duration
	semaphore     chan struct{}
	wg            sync.WaitGroup

	mu       sync.Mutex
	inFlight map[string]bool
}

// Start handles job files already in the inbox, then monitors it for new ones
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Inbox watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.inboxDir)
	w.logger.Info(ctx, "Job files: %s", strings.Join(jobExtensions, ", "))

	if err := w.scanExisting(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing jobs to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "Inbox watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			// Only process CREATE events
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isJobFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-job file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New job file detected: %s", event.Name)
			w.dispatch(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

// dispatch hands path to the handler once a semaphore slot is free
func (w *implWatcher) dispatch(ctx context.Context, path string) {
	// Small delay to ensure file is fully written
	if w.settle > 0 {
		select {
		case <-time.After(w.settle):
		case <-ctx.Done():
			return
		}
	}

	// a file created while the startup scan runs is seen twice
	if !w.claim(path) {
		w.logger.Debug(ctx, "Already handling %s", path)
		return
	}

	select {
	case w.semaphore <- struct{}{}:
		w.wg.Add(1)
		go func(filePath string) {
			defer w.wg.Done()
			defer w.unclaim(filePath)
			defer func() { <-w.semaphore }()

			if err := w.handler(ctx, filePath); err != nil {
				w.logger.Error(ctx, "Failed to process %s: %v", filePath, err)
			}
		}(path)
	case <-ctx.Done():
		w.unclaim(path)
	}
}

func (w *implWatcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight[path] {
		return false
	}
	w.inFlight[path] = true
	return true
}

func (w *implWatcher) unclaim(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, path)
}

// scanExisting queues job files left in the inbox from a previous run
func (w *implWatcher) scanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.inboxDir)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}

	for _, e := range entries {
		if !e.Type().IsRegular() || !isJobFile(e.Name()) {
			continue
		}
		path := filepath.Join(w.inboxDir, e.Name())
		w.logger.Info(ctx, "Pending job file: %s", path)
		w.dispatch(ctx, path)
	}
	return nil
}

// isJobFile checks if the file has a supported job extension
func isJobFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range jobExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
