package fs

import (
	"sync"
	"time"

	"github.com/aretw0/qtex/pkg/core"
)

// debouncer coalesces bursts of events on the same path. Editors often
// write a file several times in a row; only the last event is delivered.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*pendingEvent
	wg      sync.WaitGroup
	stopped bool
}

type pendingEvent struct {
	event core.Event
	timer *time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]*pendingEvent),
	}
}

// add schedules fire for e, replacing an event still waiting for the same path.
func (d *debouncer) add(e core.Event, fire func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if p, ok := d.pending[e.Path]; ok && p.timer.Stop() {
		// The stopped timer never runs, so its wait group slot carries over.
		p.event = merge(p.event, e)
		p.timer = time.AfterFunc(d.delay, d.deliver(e.Path, p, fire))
		return
	}

	p := &pendingEvent{event: e}
	d.pending[e.Path] = p
	d.wg.Add(1)
	p.timer = time.AfterFunc(d.delay, d.deliver(e.Path, p, fire))
}

func (d *debouncer) deliver(key string, p *pendingEvent, fire func(core.Event)) func() {
	return func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.pending[key] == p {
			delete(d.pending, key)
		}
		e := p.event
		d.mu.Unlock()
		fire(e)
	}
}

// merge keeps a creation visible when it is followed by writes.
func merge(prev, next core.Event) core.Event {
	if prev.Type == core.EventCreate && next.Type == core.EventModify {
		next.Type = core.EventCreate
	}
	return next
}

// stopAndWait drops events not yet due and waits for running deliveries.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, p := range d.pending {
		if p.timer.Stop() {
			d.wg.Done()
		}
		delete(d.pending, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
