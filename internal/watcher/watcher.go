// Package watcher reports content changes of the scorecard input file.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"scorecard/internal/scorecard"
)

const (
	eventChannelBuffer = 16
	minDebounce        = 50 * time.Millisecond
)

// Operation indicates the type of file change.
type Operation string

const (
	OpCreate Operation = "create"
	OpModify Operation = "modify"
	OpDelete Operation = "delete"
)

// Event is emitted once per settled change of the watched file.
type Event struct {
	Path   string
	Op     Operation
	Digest string
}

// FileWatcher watches one file. Editors often replace files instead of
// writing them in place, so the parent directory is watched and events are
// filtered by name. Writes that leave the content unchanged are suppressed.
type FileWatcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu  sync.Mutex
	pending    fsnotify.Op
	dirty      bool
	lastChange time.Time

	digestMu sync.Mutex
	digest   string
	exists   bool

	events  chan Event
	dropped atomic.Int64
}

// New creates a watcher for path. Nothing is watched until Start.
func New(path string, debounce time.Duration, logger *slog.Logger) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	if debounce < minDebounce {
		debounce = minDebounce
	}

	return &FileWatcher{
		path:     abs,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger.With(slog.String("component", "watcher")),
		events:   make(chan Event, eventChannelBuffer),
	}, nil
}

// Events returns the channel of change events. It is closed when the
// watcher stops.
func (w *FileWatcher) Events() <-chan Event {
	return w.events
}

// Path is the absolute path being watched.
func (w *FileWatcher) Path() string {
	return w.path
}

// Dropped counts events discarded because nobody was reading.
func (w *FileWatcher) Dropped() int64 {
	return w.dropped.Load()
}

// Start records the current digest and begins watching until ctx is done or
// Stop is called.
func (w *FileWatcher) Start(ctx context.Context) error {
	if digest, ok, err := w.read(); err != nil {
		w.logger.Warn("initial read failed", slog.String("path", w.path), slog.String("error", err.Error()))
	} else {
		w.setDigest(digest, ok)
	}

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go w.processEvents(ctx)

	w.logger.Info("file watcher started",
		slog.String("path", w.path),
		slog.Duration("debounce", w.debounce))
	return nil
}

// Stop stops the watcher. The events channel is closed by processEvents.
func (w *FileWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *FileWatcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = w.watcher.Close()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.pendingMu.Lock()
			w.pending |= event.Op
			w.dirty = true
			w.lastChange = time.Now()
			w.pendingMu.Unlock()
			w.logger.Debug("change detected", slog.String("op", event.Op.String()))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", slog.String("error", err.Error()))

		case <-ticker.C:
			w.flushPending()
		}
	}
}

// flushPending turns the changes collected so far into at most one event,
// once the file has been quiet for the debounce period.
func (w *FileWatcher) flushPending() {
	w.pendingMu.Lock()
	if !w.dirty || time.Since(w.lastChange) < w.debounce {
		w.pendingMu.Unlock()
		return
	}
	op := w.pending
	w.pending = 0
	w.dirty = false
	w.pendingMu.Unlock()

	digest, exists, err := w.read()
	if err != nil {
		w.logger.Warn("failed to read changed file", slog.String("error", err.Error()))
		return
	}

	prev, existed := w.current()
	switch {
	case !exists && !existed:
		return
	case !exists:
		w.setDigest("", false)
		w.send(Event{Path: w.path, Op: OpDelete})
	case existed && prev == digest:
		w.logger.Debug("content unchanged", slog.String("op", op.String()))
	default:
		w.setDigest(digest, true)
		evOp := OpModify
		if !existed {
			evOp = OpCreate
		}
		w.send(Event{Path: w.path, Op: evOp, Digest: digest})
	}
}

func (w *FileWatcher) read() (string, bool, error) {
	content, err := os.ReadFile(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return scorecard.Digest(content), true, nil
}

func (w *FileWatcher) current() (string, bool) {
	w.digestMu.Lock()
	defer w.digestMu.Unlock()
	return w.digest, w.exists
}

func (w *FileWatcher) setDigest(digest string, exists bool) {
	w.digestMu.Lock()
	defer w.digestMu.Unlock()
	w.digest = digest
	w.exists = exists
}

func (w *FileWatcher) send(event Event) {
	select {
	case w.events <- event:
		w.logger.Info("input changed",
			slog.String("op", string(event.Op)),
			slog.String("digest", event.Digest))
	default:
		w.dropped.Add(1)
		w.logger.Warn("event channel full, dropping event", slog.String("op", string(event.Op)))
	}
}
