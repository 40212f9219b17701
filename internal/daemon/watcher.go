package daemon

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes a source tree and triggers a debounced re-run on
// changes. Hidden directories and build output (target/) are ignored.
type Watcher struct {
	root     string
	debounce time.Duration
	trigger  func(reason string)
	fs       *fsnotify.Watcher
}

// NewWatcher creates a watcher rooted at root. A missing root is not an
// error; the watcher just starts with nothing to observe (the scheduler
// still provides periodic runs).
func NewWatcher(root string, debounce time.Duration, trigger func(string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	return &Watcher{root: root, debounce: debounce, trigger: trigger, fs: fsw}, nil
}

// Start registers the directory tree and begins the event loop.
func (w *Watcher) Start(ctx context.Context) error {
	if info, err := os.Stat(w.root); err != nil || !info.IsDir() {
		slog.Warn("Watch root missing, filesystem triggers disabled", "root", w.root)
		go w.loop(ctx)
		return nil
	}
	if err := w.addTree(w.root); err != nil {
		return err
	}
	slog.Info("Watching for source changes", "root", w.root)
	go w.loop(ctx)
	return nil
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error { return w.fs.Close() }

// addTree registers root and every non-ignored subdirectory. fsnotify has
// no recursive mode, so each directory is added individually.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && ignoredDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func ignoredDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "target"
}

func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			// New directories need registering so edits inside them are seen.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !ignoredDir(filepath.Base(event.Name)) {
					_ = w.fs.Add(event.Name)
				}
			}
			// Each event arms a fresh timer owning its own name; the timer
			// callback runs on a separate goroutine and must not share
			// mutable state with this loop.
			name := event.Name
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				w.trigger("fs:" + name)
			})
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "error", err)
		}
	}
}

// relevant filters out chmod-only noise and events on ignored paths.
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(event.Name), "/") {
		if part == "target" {
			return false
		}
	}
	return true
}
