// Package watch regenerates a project's artifacts whenever the project file
// or one of the files it pulls in changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/xovigen/internal/generate"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before regenerating.
const DefaultDebounce = 100 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	Generator *generate.Generator
	Request   generate.Request
	Logger    *slog.Logger
	Debounce  time.Duration
	// OnRun, if set, is called after every generator run once the watch
	// list has been updated.
	OnRun func(*generate.Build, error)
}

// Watcher reruns a generator request on file changes.
type Watcher struct {
	cfg     Config
	logger  *slog.Logger
	tracked map[string]bool
	dirs    map[string]bool
}

// New creates a watcher.
func New(cfg Config) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		cfg:     cfg,
		logger:  logger,
		tracked: make(map[string]bool),
		dirs:    make(map[string]bool),
	}
}

// Run generates once and then again after every change, until ctx is
// cancelled. Generator failures are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	w.generate(fw)
	w.logger.Info("watching for changes", "input", w.cfg.Request.Input, "files", len(w.tracked))

	// Debounce timer
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.tracked[filepath.Clean(event.Name)] {
				continue
			}
			w.logger.Debug("file changed", "file", event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
			} else {
				timer.Reset(w.cfg.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.generate(fw)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// generate runs the request, refreshes the watch list and reports the run.
func (w *Watcher) generate(fw *fsnotify.Watcher) {
	b, err := w.cfg.Generator.Run(w.cfg.Request)
	if err != nil {
		w.logger.Error("generation failed", "error", err)
	}

	files := []string{w.cfg.Request.Input}
	if b != nil {
		files = b.Files
	}
	w.track(fw, files)

	if w.cfg.OnRun != nil {
		w.cfg.OnRun(b, err)
	}
}

// track adds files to the tracked set. Directories are watched rather than
// files so that editors replacing a file on save are still noticed.
func (w *Watcher) track(fw *fsnotify.Watcher, files []string) {
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		abs = filepath.Clean(abs)
		w.tracked[abs] = true

		dir := filepath.Dir(abs)
		if w.dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			w.logger.Warn("failed to watch directory", "dir", dir, "error", err)
			continue
		}
		w.dirs[dir] = true
	}
}
