// Package lifecycle bridges watcher events into the lifecycle runtime.
package lifecycle

import (
	"context"
	"slices"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/qtex/pkg/core"
)

// Option narrows what a Source forwards.
type Option func(*eventSource)

// Only forwards events of the given types and drops the rest.
func Only(types ...core.EventType) Option {
	return func(s *eventSource) { s.types = types }
}

type eventSource struct {
	in    <-chan core.Event
	out   chan lifecycle.Event
	types []core.EventType
}

// NewSource adapts a watcher channel to a lifecycle.Source. The output closes
// when the input closes or the start context ends.
func NewSource(events <-chan core.Event, opts ...Option) lifecycle.Source {
	s := &eventSource{in: events, out: make(chan lifecycle.Event)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *eventSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *eventSource) wants(e core.Event) bool {
	return len(s.types) == 0 || slices.Contains(s.types, e.Type)
}

func (s *eventSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			var e core.Event
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-s.in:
				if !ok {
					return nil
				}
				e = ev
			}
			if !s.wants(e) {
				continue
			}
			select {
			case s.out <- e:
			case <-ctx.Done():
				return nil
			}
		}
	})
	return nil
}
