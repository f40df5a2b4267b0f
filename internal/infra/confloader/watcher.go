package confloader

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// DefaultSettle is how long a file must stay quiet before a change is
// reported. Editors often write a file in several steps.
const DefaultSettle = 200 * time.Millisecond

// Watcher reports changes to a single configuration file.
type Watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	settle   time.Duration
	onChange func(path string)
	logger   logger.Logger
	changes  atomic.Uint64
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = l
	}
}

// WithSettle sets the quiet period. Zero reports every event at once.
func WithSettle(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.settle = d
	}
}

// NewWatcher watches path and calls onChange after it is written or
// recreated. The parent directory is watched so that editors which replace
// the file are still seen.
func NewWatcher(path string, onChange func(path string), opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		path:     filepath.Clean(path),
		settle:   DefaultSettle,
		onChange: onChange,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	return w, nil
}

// Run delivers changes until ctx is done, then releases the underlying
// watcher. A Watcher can be run once.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	w.logger.Debug("watching configuration file", "file", w.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if w.settle <= 0 {
				w.deliver()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.settle)
			} else {
				timer.Reset(w.settle)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.deliver()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("configuration watcher error", "error", err)
		}
	}
}

// Changes returns how many changes have been delivered.
func (w *Watcher) Changes() uint64 {
	return w.changes.Load()
}

func (w *Watcher) deliver() {
	w.changes.Add(1)
	w.logger.Info("configuration file changed", "file", w.path)
	if w.onChange != nil {
		w.onChange(w.path)
	}
}
