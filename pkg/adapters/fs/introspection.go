package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// WatcherState exposes internal state for observability.
type WatcherState struct {
	Dir       string     `json:"dir"`
	Pattern   string     `json:"pattern"`
	Debounce  string     `json:"debounce"`
	Active    bool       `json:"active"`
	Delivered int        `json:"delivered"`
	LastEvent *time.Time `json:"last_event,omitempty"`
}

// State implements introspection.Introspectable.
func (w *Watcher) State() any {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return WatcherState{
		Dir:       w.Dir,
		Pattern:   w.pattern,
		Debounce:  w.delay.String(),
		Active:    w.active,
		Delivered: w.delivered,
		LastEvent: w.lastEvent,
	}
}

// ComponentType implements introspection.Component.
func (w *Watcher) ComponentType() string {
	return "watcher"
}

var _ introspection.Introspectable = (*Watcher)(nil)
var _ introspection.Component = (*Watcher)(nil)
