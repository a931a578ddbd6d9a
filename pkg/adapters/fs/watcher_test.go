package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/qtex/pkg/core"
)

func nextEvent(t *testing.T, events <-chan core.Event) core.Event {
	t.Helper()
	select {
	case e, ok := <-events:
		require.True(t, ok, "events channel closed")
		return e
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for event")
		return core.Event{}
	}
}

func TestWatcher_ReportsDocuments(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher(dir, WithDebounce(20*time.Millisecond))
	events, err := w.Watch(ctx)
	require.NoError(t, err)
	waitForActive(t, w, true)

	// Non-matching files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, WriteFile(filepath.Join(dir, "exam.tex"), []byte(`\question{Q}`)))

	e := nextEvent(t, events)
	assert.Equal(t, "exam.tex", e.Path)
	assert.Contains(t, []core.EventType{core.EventCreate, core.EventModify}, e.Type)

	require.Eventually(t, func() bool {
		state := w.State().(WatcherState)
		return state.Delivered == 1 && state.LastEvent != nil
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 3*time.Second, 10*time.Millisecond, "events channel not closed after cancel")
	waitForActive(t, w, false)
}

func TestWatcher_NewFolders(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher(dir, WithPattern("chapters/**/*.tex"), WithDebounce(20*time.Millisecond))
	events, err := w.Watch(ctx)
	require.NoError(t, err)
	waitForActive(t, w, true)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "chapters"), 0755))
	// Give the watcher a moment to register the new folder.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chapters", "one.tex"), []byte("x"), 0644))

	e := nextEvent(t, events)
	assert.Equal(t, "chapters/one.tex", e.Path)
}

func TestShouldIgnore(t *testing.T) {
	w := NewWatcher("/tmp")
	assert.False(t, w.shouldIgnore("exam.tex"))
	assert.False(t, w.shouldIgnore("sub/exam.tex"))
	assert.True(t, w.shouldIgnore("exam.xml"))
	assert.True(t, w.shouldIgnore(TempFilePrefix+"123"))
	assert.True(t, w.shouldIgnore(".qtex/cache.tex"))
}

func TestDebouncer(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)

	var (
		mu  sync.Mutex
		got []core.Event
	)
	fire := func(e core.Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e)
	}

	d.add(core.Event{Type: core.EventCreate, Path: "a.tex"}, fire)
	d.add(core.Event{Type: core.EventModify, Path: "a.tex"}, fire)
	d.add(core.Event{Type: core.EventModify, Path: "b.tex"}, fire)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	byPath := map[string]core.EventType{}
	for _, e := range got {
		byPath[e.Path] = e.Type
	}
	mu.Unlock()
	assert.Equal(t, core.EventCreate, byPath["a.tex"])
	assert.Equal(t, core.EventModify, byPath["b.tex"])

	d.add(core.Event{Type: core.EventDelete, Path: "c.tex"}, fire)
	d.stopAndWait(time.Second)
	d.add(core.Event{Type: core.EventDelete, Path: "d.tex"}, fire)
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, got, 2, "events pending at stop are dropped")
}
