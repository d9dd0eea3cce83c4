// Package watcher provides a FileWatcher backed by fsnotify.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
	"github.com/custodia-labs/reqscan/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.FileWatcher = (*Watcher)(nil)

// Default timings.
const (
	// DefaultDebounce is how long a file must be quiet before it is reported.
	// Editors and copy tools write in several bursts.
	DefaultDebounce = 750 * time.Millisecond

	// tickInterval is how often settled files are flushed.
	tickInterval = 100 * time.Millisecond
)

// Watcher reports settled file changes in a single directory.
type Watcher struct {
	debounce time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a Watcher.
func New(opts ...Option) *Watcher {
	w := &Watcher{debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// pending is a change waiting for its debounce window to pass.
type pending struct {
	at  time.Time
	typ driven.FileEventType
}

// Watch streams settled events for regular files in dir until ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan driven.FileEvent, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", abs)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(abs); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", abs, err)
	}
	logger.Debug("watcher: watching %s", abs)

	out := make(chan driven.FileEvent)
	l := &loop{
		fw:       fw,
		out:      out,
		debounce: w.debounce,
		pending:  make(map[string]pending),
	}
	go l.run(ctx)
	return out, nil
}

// loop owns one fsnotify watcher and its debounce state.
type loop struct {
	mu       sync.Mutex
	fw       *fsnotify.Watcher
	out      chan driven.FileEvent
	debounce time.Duration
	pending  map[string]pending
}

func (l *loop) run(ctx context.Context) {
	defer close(l.out)
	defer func() {
		if err := l.fw.Close(); err != nil {
			logger.Warn("watcher: close: %v", err)
		}
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-l.fw.Events:
			if !ok {
				return
			}
			l.handleEvent(event)

		case err, ok := <-l.fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher: %v", err)

		case <-ticker.C:
			for _, ev := range l.settled(time.Now()) {
				select {
				case l.out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleEvent records a create or write. Other operations are ignored;
// a rename into the directory arrives as a create.
func (l *loop) handleEvent(event fsnotify.Event) {
	var typ driven.FileEventType
	switch {
	case event.Op&fsnotify.Create != 0:
		typ = driven.FileCreated
	case event.Op&fsnotify.Write != 0:
		typ = driven.FileUpdated
	default:
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if prev, ok := l.pending[event.Name]; ok && prev.typ == driven.FileCreated {
		typ = driven.FileCreated
	}
	l.pending[event.Name] = pending{at: time.Now(), typ: typ}
}

// settled removes and returns changes that have been quiet for the debounce
// window, in path order. Paths that vanished or are not regular files are dropped.
func (l *loop) settled(now time.Time) []driven.FileEvent {
	l.mu.Lock()
	var ready []driven.FileEvent
	for path, p := range l.pending {
		if now.Sub(p.at) < l.debounce {
			continue
		}
		delete(l.pending, path)
		ready = append(ready, driven.FileEvent{Path: path, Type: p.typ})
	}
	l.mu.Unlock()

	out := ready[:0]
	for _, ev := range ready {
		info, err := os.Stat(ev.Path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
