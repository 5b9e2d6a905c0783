package ports

import (
	"context"
	"iter"
)

// WatchOp represents the type of file system operation.
type WatchOp uint8

const (
	// OpCreate indicates a spec was created.
	OpCreate WatchOp = iota
	// OpWrite indicates a spec was modified.
	OpWrite
	// OpRemove indicates a spec was removed.
	OpRemove
	// OpRename indicates a spec was renamed.
	OpRename
)

// WatchEvent is a change to a file in a watched directory.
type WatchEvent struct {
	// Path is the absolute path of the file that changed.
	Path string
	// Operation is the type of change that occurred.
	Operation WatchOp
}

// Watcher watches a directory for file changes.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching dir. Subdirectories are not watched.
	Start(ctx context.Context, dir string) error
	// Stop stops the watcher and releases all resources.
	Stop() error
	// Events returns an iterator of debounced batches of changes.
	Events() iter.Seq[[]WatchEvent]
}
