package fs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/qtex/pkg/core"
)

// DefaultPattern selects the documents a Watcher reports.
const DefaultPattern = "**/*.tex"

// Watcher reports changes to documents below a directory.
type Watcher struct {
	Dir string

	pattern      string
	delay        time.Duration
	logger       *slog.Logger
	errorHandler func(error)

	mu        sync.RWMutex
	active    bool
	delivered int
	lastEvent *time.Time
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithPattern sets the doublestar pattern, relative to the watched directory.
func WithPattern(pattern string) WatchOption {
	return func(w *Watcher) {
		if pattern != "" {
			w.pattern = pattern
		}
	}
}

// WithDebounce sets how long a path must stay quiet before it is reported.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) { w.delay = d }
}

// WithWatchLogger sets the logger.
func WithWatchLogger(l *slog.Logger) WatchOption {
	return func(w *Watcher) { w.logger = l }
}

// WithErrorHandler receives watcher errors that do not stop the watch.
func WithErrorHandler(fn func(error)) WatchOption {
	return func(w *Watcher) { w.errorHandler = fn }
}

// NewWatcher creates a Watcher for dir.
func NewWatcher(dir string, opts ...WatchOption) *Watcher {
	w := &Watcher{
		Dir:     dir,
		pattern: DefaultPattern,
		delay:   50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return w
}

// Watch starts watching and returns the event channel. The channel is
// closed once ctx is cancelled and the worker has stopped.
func (w *Watcher) Watch(ctx context.Context) (<-chan core.Event, error) {
	events := make(chan core.Event)
	worker := newWatchWorker(w, events)
	if err := worker.Start(ctx); err != nil {
		return nil, err
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := worker.Stop(stopCtx)
		close(events)
		return err
	}, lifecycle.WithErrorHandler(w.handleError))

	return events, nil
}

func (w *Watcher) handleError(err error) {
	w.logger.Error("watcher error", "error", err)
	if w.errorHandler != nil {
		w.errorHandler(err)
	}
}

// recursiveAdd registers dir and every visible subdirectory.
func (w *Watcher) recursiveAdd(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

// relative returns the slash path of name below Dir.
func (w *Watcher) relative(name string) (string, error) {
	rel, err := filepath.Rel(w.Dir, name)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func (w *Watcher) shouldIgnore(rel string) bool {
	if strings.HasPrefix(filepath.Base(rel), TempFilePrefix) || hidden(rel) {
		return true
	}
	ok, err := doublestar.Match(w.pattern, rel)
	return err != nil || !ok
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	}
	return ""
}

func (w *Watcher) setActive(active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = active
}

func (w *Watcher) recordEvent() {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	w.delivered++
	w.lastEvent = &now
}
