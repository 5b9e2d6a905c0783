// Package watcher reports changes to environment specs on disk.
package watcher

import (
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/nixster/internal/core/ports"
)

// DefaultDebounceWindow is how long the watcher waits for events to settle.
const DefaultDebounceWindow = 200 * time.Millisecond

// Debouncer coalesces rapid file system events into batches. Only the latest
// operation per path is kept.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[string]ports.WatchOp
	timer    *time.Timer
	window   time.Duration
	callback func(events []ports.WatchEvent)
}

// NewDebouncer creates a new debouncer with the given time window and callback.
func NewDebouncer(window time.Duration, callback func(events []ports.WatchEvent)) *Debouncer {
	return &Debouncer{
		pending:  make(map[string]ports.WatchOp),
		window:   window,
		callback: callback,
	}
}

// Add records an event and restarts the window.
func (d *Debouncer) Add(event ports.WatchEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[event.Path] = event.Operation

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// Flush delivers the pending events immediately and waits for the callback.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			// Already firing.
			d.mu.Unlock()
			return
		}
		d.timer = nil
	}
	events := d.drainLocked()
	d.mu.Unlock()

	d.deliver(events)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	d.timer = nil
	events := d.drainLocked()
	d.mu.Unlock()

	d.deliver(events)
}

// drainLocked must be called with mu held. Events are sorted by path.
func (d *Debouncer) drainLocked() []ports.WatchEvent {
	if len(d.pending) == 0 {
		return nil
	}
	events := make([]ports.WatchEvent, 0, len(d.pending))
	for path, op := range d.pending {
		events = append(events, ports.WatchEvent{Path: path, Operation: op})
	}
	d.pending = make(map[string]ports.WatchOp)

	slices.SortFunc(events, func(a, b ports.WatchEvent) int {
		return strings.Compare(a.Path, b.Path)
	})
	return events
}

func (d *Debouncer) deliver(events []ports.WatchEvent) {
	if len(events) > 0 && d.callback != nil {
		d.callback(events)
	}
}
