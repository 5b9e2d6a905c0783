package watcher

import (
	"context"
	"iter"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

const batchChannelBuffer = 16

// Watcher implements ports.Watcher for a single directory using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger
	debouncer *Debouncer

	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	stop    sync.Once
	batches chan []ports.WatchEvent
}

// NewWatcher creates a watcher that batches events over window.
func NewWatcher(logger ports.Logger, window time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create file watcher")
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		logger:    logger,
		done:      make(chan struct{}),
		batches:   make(chan []ports.WatchEvent, batchChannelBuffer),
	}
	w.debouncer = NewDebouncer(window, w.publish)
	return w, nil
}

// Start watches dir, creating it when missing.
func (w *Watcher) Start(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create watched directory"), "path", dir)
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to watch directory"), "path", dir)
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and ends the Events iterator.
func (w *Watcher) Stop() error {
	var err error
	w.stop.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()

		w.mu.Lock()
		w.closed = true
		close(w.batches)
		w.mu.Unlock()
	})
	return err
}

// Events returns an iterator of debounced batches. It ends when the watcher stops.
func (w *Watcher) Events() iter.Seq[[]ports.WatchEvent] {
	return func(yield func([]ports.WatchEvent) bool) {
		for batch := range w.batches {
			if !yield(batch) {
				return
			}
		}
	}
}

func (w *Watcher) publish(events []ports.WatchEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	select {
	case w.batches <- events:
	case <-w.done:
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer func() { _ = w.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if watchEvent, ok := convertEvent(event); ok {
				w.debouncer.Add(watchEvent)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("watcher: " + err.Error())
			}
		}
	}
}

// convertEvent maps an fsnotify event to a ports.WatchEvent. Chmod is ignored.
func convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	switch {
	case event.Has(fsnotify.Write):
		return ports.WatchEvent{Path: event.Name, Operation: ports.OpWrite}, true
	case event.Has(fsnotify.Create):
		return ports.WatchEvent{Path: event.Name, Operation: ports.OpCreate}, true
	case event.Has(fsnotify.Remove):
		return ports.WatchEvent{Path: event.Name, Operation: ports.OpRemove}, true
	case event.Has(fsnotify.Rename):
		return ports.WatchEvent{Path: event.Name, Operation: ports.OpRename}, true
	default:
		return ports.WatchEvent{}, false
	}
}
