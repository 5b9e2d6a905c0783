package app

import (
	"context"
	"errors"

	"go.trai.ch/nixster/internal/core/ports"
)

// shutdowner is implemented by tracers that buffer spans.
type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App     *App
	Logger  ports.Logger
	Tracer  ports.Tracer
	Catalog ports.CatalogStore
	Watcher ports.Watcher
}

// Close flushes the tracer, stops the file watcher and releases the catalog database.
func (c *Components) Close(ctx context.Context) error {
	var errs error
	if s, ok := c.Tracer.(shutdowner); ok {
		errs = errors.Join(errs, s.Shutdown(ctx))
	}
	if c.Watcher != nil {
		errs = errors.Join(errs, c.Watcher.Stop())
	}
	if c.Catalog != nil {
		errs = errors.Join(errs, c.Catalog.Close())
	}
	return errs
}

// leveled is implemented by loggers whose format and level can change.
type leveled interface {
	SetJSON(enable bool)
	SetVerbose(enable bool)
}

// SetLogging switches the logger to JSON output and to debug level.
func (a *App) SetLogging(json, verbose bool) {
	if l, ok := a.logger.(leveled); ok {
		l.SetJSON(json)
		l.SetVerbose(verbose)
	}
}
