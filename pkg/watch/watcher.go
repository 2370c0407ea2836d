package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches a fixed set of files and triggers a callback when any
// of them changes. It registers the parent directories rather than the files
// themselves, so atomic-rename saves (the common editor write pattern) are
// still observed, and it debounces rapid event bursts.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *Config
	debounce *Debouncer

	// paths holds the cleaned absolute form of every watched file
	paths map[string]struct{}

	// State
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Config contains configuration for the file watcher.
type Config struct {
	// Paths is the list of files to watch.
	Paths []string

	// DebounceInterval is the time to wait before triggering the callback
	// after detecting file changes (default: 100ms)
	DebounceInterval time.Duration
}

// DefaultConfig returns the default watcher configuration for the given
// files.
func DefaultConfig(paths ...string) *Config {
	return &Config{
		Paths:            paths,
		DebounceInterval: 100 * time.Millisecond,
	}
}

// NewFileWatcher creates a new file watcher.
func NewFileWatcher(config *Config, logger *slog.Logger) (*FileWatcher, error) {
	if config == nil || len(config.Paths) == 0 {
		return nil, fmt.Errorf("watch: at least one path is required")
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 100 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: failed to create fsnotify watcher: %w", err)
	}

	paths := make(map[string]struct{}, len(config.Paths))
	for _, p := range config.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch: failed to resolve path %q: %w", p, err)
		}
		paths[abs] = struct{}{}
	}

	fw := &FileWatcher{
		watcher:  watcher,
		logger:   logger,
		config:   config,
		debounce: NewDebouncer(config.DebounceInterval),
		paths:    paths,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	return fw, nil
}

// Watch starts watching for file changes and invokes onChange after each
// debounced burst of events. This is a blocking operation that runs until the
// context is cancelled or Stop is called.
func (fw *FileWatcher) Watch(ctx context.Context, onChange func()) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return fmt.Errorf("watch: watcher already running")
	}
	fw.running = true
	fw.mu.Unlock()

	defer func() {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		close(fw.doneCh)
	}()

	// Watch each file's parent directory once.
	dirs := make(map[string]struct{})
	for path := range fw.paths {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch: failed to watch directory %q: %w", dir, err)
		}
		fw.logger.Debug("watching directory", "path", dir)
	}

	fw.logger.Info("file watcher started",
		"paths", len(fw.paths),
		"debounce_ms", fw.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("file watcher stopped (context cancelled)")
			return nil

		case <-fw.stopCh:
			fw.logger.Info("file watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return fmt.Errorf("watch: events channel closed")
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.logger.Debug("file event detected",
				"path", event.Name,
				"op", event.Op.String(),
			)

			fw.debounce.Trigger(func() {
				fw.logger.Info("re-running validation",
					"path", event.Name,
					"op", event.Op.String(),
				)
				onChange()
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watch: errors channel closed")
			}
			fw.logger.Error("file watcher error", "error", err)
			// Continue watching despite errors
		}
	}
}

// Stop stops the file watcher.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return fw.watcher.Close()
	}
	fw.mu.Unlock()

	close(fw.stopCh)
	<-fw.doneCh

	fw.debounce.Stop()

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("watch: failed to close watcher: %w", err)
	}

	return nil
}

// shouldProcessEvent reports whether an event concerns one of the watched
// files.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, watched := fw.paths[abs]
	return watched
}

// Debouncer coalesces rapid events and triggers the callback only after a
// quiet period.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopCh   chan struct{}
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Trigger triggers the debouncer with a new event. The callback will be
// called after the debounce interval if no new events occur.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
			d.mu.Lock()
			cb := d.callback
			d.mu.Unlock()

			if cb != nil {
				cb()
			}
		}
	})
}

// Stop stops the debouncer and cancels any pending callbacks.
func (d *Debouncer) Stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
