// Package app implements the application layer for nixster.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.trai.ch/nixster/internal/adapters/catalog" //nolint:depguard // Wired in app layer
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	refresh "go.trai.ch/nixster/internal/engine/catalog"
	"go.trai.ch/nixster/internal/engine/environment"
	"go.trai.ch/nixster/internal/engine/resolver"
	"go.trai.ch/nixster/internal/engine/session"
	"go.trai.ch/nixster/internal/ui/style"
)

// maxSuggestions bounds the alternatives offered for a package without a match.
const maxSuggestions = 5

// App represents the main application logic.
type App struct {
	settings  *domain.Settings
	envs      *environment.Service
	resolver  *resolver.Resolver
	refresher *refresh.Refresher
	catalog   ports.CatalogStore
	sessions  *session.Manager
	watcher   ports.Watcher
	logger    ports.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// New creates a new App instance.
func New(
	settings *domain.Settings,
	envs *environment.Service,
	res *resolver.Resolver,
	refresher *refresh.Refresher,
	store ports.CatalogStore,
	sessions *session.Manager,
	watcher ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		settings:  settings,
		envs:      envs,
		resolver:  res,
		refresher: refresher,
		catalog:   store,
		sessions:  sessions,
		watcher:   watcher,
		logger:    log,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
}

// WithStreams replaces the standard streams used for results and sessions.
// This is primarily used for testing.
func (a *App) WithStreams(stdin io.Reader, stdout, stderr io.Writer) *App {
	a.stdin, a.stdout, a.stderr = stdin, stdout, stderr
	return a
}

// CreateOptions configuration for the Create method.
type CreateOptions struct {
	Description string
	Extends     []string
	Adds        []string
	Removes     []string
	Force       bool
}

// Create writes and builds a new environment.
func (a *App) Create(ctx context.Context, name string, opts CreateOptions) error {
	env, err := a.envs.Create(ctx, name, domain.Environment{
		Description: opts.Description,
		Extends:     opts.Extends,
		Adds:        opts.Adds,
		Removes:     opts.Removes,
	}, opts.Force)
	if err != nil {
		return a.suggest(ctx, err)
	}
	a.logger.Info(fmt.Sprintf("environment %q created at %q", env.Name, a.envs.Path(env.Name)))
	return nil
}

// Delete removes the spec of an environment.
func (a *App) Delete(name string) error {
	if err := a.envs.Delete(name); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("environment %q deleted", name))
	return nil
}

// Envs lists every environment.
func (a *App) Envs(format Format) error {
	envs, err := a.envs.List()
	if err != nil {
		return err
	}
	return write(a.stdout, format, envs, func(w io.Writer) error {
		return renderEnvironments(w, envs)
	})
}

// Show describes an environment. long adds the store paths it depends on.
func (a *App) Show(ctx context.Context, name string, long bool, format Format) error {
	desc, err := a.envs.Show(ctx, name, long)
	if err != nil {
		return err
	}
	return write(a.stdout, format, desc, nil)
}

// Pkgs lists the resolved package set of an environment.
func (a *App) Pkgs(name string, format Format) error {
	pkgs, err := a.envs.Packages(name)
	if err != nil {
		return err
	}
	return write(a.stdout, format, pkgs, func(w io.Writer) error {
		return renderPackages(w, pkgs)
	})
}

// Build installs the package set of an environment into its profile.
func (a *App) Build(ctx context.Context, name string) error {
	if _, err := a.envs.Build(ctx, name); err != nil {
		return a.suggest(ctx, err)
	}
	a.logger.Info(fmt.Sprintf("environment %q built", name))
	return nil
}

// Add adds packages to an environment and rebuilds it.
func (a *App) Add(ctx context.Context, name string, pkgs []string) error {
	if _, err := a.envs.Add(ctx, name, pkgs); err != nil {
		return a.suggest(ctx, err)
	}
	a.logger.Info(fmt.Sprintf("added packages %s to environment %s", quoted(pkgs), name))
	return nil
}

// Remove removes packages from an environment and rebuilds it.
func (a *App) Remove(ctx context.Context, name string, pkgs []string) error {
	if _, err := a.envs.Remove(ctx, name, pkgs); err != nil {
		return a.suggest(ctx, err)
	}
	a.logger.Info(fmt.Sprintf("removed packages %s from environment %s", quoted(pkgs), name))
	return nil
}

// Upgrade upgrades the named packages of an environment, or all of them.
func (a *App) Upgrade(ctx context.Context, name string, pkgs []string) error {
	if _, err := a.envs.Upgrade(ctx, name, pkgs); err != nil {
		return err
	}
	which := "all"
	if len(pkgs) > 0 {
		which = fmt.Sprint(len(pkgs))
	}
	a.logger.Info(fmt.Sprintf("upgraded %s packages in environment %s", which, name))
	return nil
}

// Within runs command inside an environment with the app's standard streams.
func (a *App) Within(ctx context.Context, name, command string, pure bool) error {
	return a.sessions.Within(ctx, name, command, pure, a.stdin, a.stdout, a.stderr)
}

// Update refreshes the package catalog from channels, or the default channels.
func (a *App) Update(ctx context.Context, channels []string) error {
	if err := a.refresher.Refresh(ctx, channels); err != nil {
		return err
	}
	a.logger.Info("updated database")
	return nil
}

// Channel subscribes to a channel and prints the channel list.
func (a *App) Channel(ctx context.Context, url, name string) error {
	list, err := a.refresher.Channel(ctx, url, name)
	if err != nil {
		return err
	}
	_, err = io.WriteString(a.stdout, list)
	return err
}

// Match prints the catalog rows for a package request such as "r==3.5.2".
func (a *App) Match(ctx context.Context, pkg string, format Format) error {
	entries, err := a.resolver.MatchPackage(ctx, pkg)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.logger.Warn(fmt.Sprintf("no packages matching %q", pkg))
		return nil
	}
	return write(a.stdout, format, entries, func(w io.Writer) error {
		return renderMatches(w, entries)
	})
}

// SearchOptions configuration for the Search method.
type SearchOptions struct {
	Type  string
	Limit int
}

// Search runs a full text search over the catalog.
func (a *App) Search(ctx context.Context, term string, opts SearchOptions, format Format) error {
	limit := opts.Limit
	if limit <= 0 {
		limit = a.settings.SearchLimit
	}
	results, err := a.resolver.Search(ctx, domain.SearchQuery{Term: term, Type: opts.Type, Limit: limit})
	if err != nil {
		return err
	}
	return write(a.stdout, format, results, func(w io.Writer) error {
		return renderSearch(w, term, results)
	})
}

// Dump prints the whole catalog grouped by package.
func (a *App) Dump(ctx context.Context, format Format) error {
	results, err := a.catalog.Dump(ctx, catalog.DumpTable)
	if err != nil {
		return err
	}
	if format == FormatAuto {
		format = FormatJSON
	}
	return write(a.stdout, format, results, nil)
}

// Watch rebuilds an environment whenever its spec, or a spec it extends, changes.
// It blocks until ctx is done.
func (a *App) Watch(ctx context.Context, name string) error {
	return a.envs.Watch(ctx, name, a.watcher)
}

// suggest prints alternatives for a package without a match and returns err.
func (a *App) suggest(ctx context.Context, err error) error {
	var missing *domain.MissingPackageError
	if !errors.As(err, &missing) {
		return err
	}

	names, serr := a.resolver.Suggest(ctx, missing.Package, maxSuggestions)
	if serr != nil {
		a.logger.Debug("no suggestions: " + serr.Error())
		return err
	}
	if len(names) == 0 {
		return err
	}

	s := style.For(a.stderr)
	_, _ = fmt.Fprintln(a.stderr, s.Header.Render("Did you mean any of these?"))
	for _, name := range names {
		_, _ = fmt.Fprintf(a.stderr, "  %s %s\n", s.Muted.Render(style.Dot), s.Name.Render(name))
	}
	return err
}

func quoted(pkgs []string) string {
	q := make([]string, len(pkgs))
	for i, pkg := range pkgs {
		q[i] = fmt.Sprintf("%q", pkg)
	}
	return strings.Join(q, ", ")
}
