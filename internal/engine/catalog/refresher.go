// Package catalog refreshes the package catalog from the package manager's
// channels and manages channel subscriptions.
package catalog

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// attributeSets are queried on every channel in addition to the top level. Their
// members are not listed unless the set is named explicitly.
var attributeSets = []string{"", "rPackages", "haskellPackages"}

var (
	skipped        = regexp.MustCompile(`^rWrapper$`)
	nameVersion    = regexp.MustCompile(`(.+?)-(\d.*)$`)
	haskellAttr    = regexp.MustCompile(`^haskellPackages\.`)
	pythonAttr     = regexp.MustCompile(`^python(\d+)Packages\.`)
	pythonVersion  = regexp.MustCompile(`^python[\d.]+`)
	perlAttr       = regexp.MustCompile(`^perl(\d+|devel)?Packages\.`)
	perlVersion    = regexp.MustCompile(`^perl[\d.]+`)
	rAttr          = regexp.MustCompile(`^rPackages\.`)
	nameSeparators = regexp.MustCompile(`[._-]+`)
)

// Refresher loads channel listings into the catalog store.
type Refresher struct {
	pm     ports.PackageManager
	store  ports.CatalogStore
	tracer ports.Tracer
	logger ports.Logger
}

// New creates a Refresher.
func New(pm ports.PackageManager, store ports.CatalogStore, tracer ports.Tracer, logger ports.Logger) *Refresher {
	return &Refresher{pm: pm, store: store, tracer: tracer, logger: logger}
}

// Refresh appends the current packages of each channel to the catalog, then
// rebuilds the full text index. A channel that cannot be queried is reported and
// skipped.
func (r *Refresher) Refresh(ctx context.Context, channels []string) error {
	if len(channels) == 0 {
		channels = domain.DefaultChannels
	}

	for _, channel := range channels {
		if err := r.refreshChannel(ctx, channel); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Error(zerr.With(zerr.Wrap(err, "skipping channel"), "channel", channel))
		}
	}

	r.logger.Info("rebuilding search index")
	return r.store.RebuildIndex(ctx)
}

func (r *Refresher) refreshChannel(ctx context.Context, channel string) (err error) {
	ctx, span := r.tracer.Start(ctx, "refresh", ports.WithAttribute("channel", channel))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	r.logger.Info(fmt.Sprintf("querying channel %s for available packages", channel))
	pkgs, err := r.query(ctx, channel)
	if err != nil {
		return err
	}

	entries := make([]domain.CatalogEntry, 0, len(pkgs))
	for _, pkg := range pkgs {
		if entry, ok := Classify(channel, pkg); ok {
			entries = append(entries, entry)
		}
	}
	span.SetAttribute("packages", len(entries))

	r.logger.Info(fmt.Sprintf("adding %d packages from %s", len(entries), channel))
	return r.store.Transaction(ctx, func(tx ports.CatalogStore) error {
		return tx.InsertBatch(ctx, entries)
	})
}

// query lists the channel once per attribute set and merges the listings by
// attribute. Later sets win, in the order of attributeSets.
func (r *Refresher) query(ctx context.Context, channel string) ([]domain.AvailablePackage, error) {
	results := make([][]domain.AvailablePackage, len(attributeSets))

	g, ctx := errgroup.WithContext(ctx)
	for i, attrs := range attributeSets {
		g.Go(func() error {
			pkgs, err := r.pm.Query(ctx, channel, attrs)
			if err != nil {
				return err
			}
			results[i] = pkgs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]domain.AvailablePackage)
	for _, pkgs := range results {
		for _, pkg := range pkgs {
			merged[pkg.Attribute] = pkg
		}
	}

	attrs := slices.Sorted(maps.Keys(merged))
	pkgs := make([]domain.AvailablePackage, 0, len(attrs))
	for _, attr := range attrs {
		pkgs = append(pkgs, merged[attr])
	}
	return pkgs, nil
}

// Classify derives the catalog row of a package listed on channel. Language
// packages get a type, a runtime and a name prefix so that names are consistent
// across languages. It returns false for packages that are never cataloged.
func Classify(channel string, pkg domain.AvailablePackage) (domain.CatalogEntry, bool) {
	if skipped.MatchString(pkg.Attribute) {
		return domain.CatalogEntry{}, false
	}

	entry := domain.CatalogEntry{
		Name:        pkg.Name,
		Channel:     channel,
		Attribute:   pkg.Attribute,
		FullName:    pkg.Name,
		Priority:    pkg.Priority,
		Description: pkg.Description,
		Meta:        pkg.Meta,
	}
	if m := nameVersion.FindStringSubmatch(pkg.Name); m != nil {
		entry.Name, entry.Version = m[1], m[2]
	}

	if haskellAttr.MatchString(pkg.Attribute) {
		entry.Type = "haskell-package"
		entry.Name = "haskell-" + entry.Name
	}

	if m := pythonAttr.FindStringSubmatch(pkg.Attribute); m != nil {
		entry.Type = "python-package"
		entry.Runtime = "python" + m[1]
		if strings.HasPrefix(entry.Name, "python") {
			entry.Name = pythonVersion.ReplaceAllString(entry.Name, "python")
		} else {
			entry.Name = "python-" + entry.Name
		}
	}

	if m := perlAttr.FindStringSubmatch(pkg.Attribute); m != nil {
		entry.Type = "perl-package"
		entry.Runtime = "perl" + m[1]
		if strings.HasPrefix(entry.Name, "perl") {
			entry.Name = perlVersion.ReplaceAllString(entry.Name, "perl")
		}
	}

	// R package names already carry an r- prefix.
	if rAttr.MatchString(pkg.Attribute) {
		entry.Type = "r-package"
	}

	entry.Name = nameSeparators.ReplaceAllString(strings.ToLower(entry.Name), "-")
	return entry, true
}

// Channel subscribes to the channel at url under name, downloads it and returns
// the resulting subscription list.
func (r *Refresher) Channel(ctx context.Context, url, name string) (string, error) {
	if url == "" {
		url = domain.DefaultChannelURL
	}
	if name == "" {
		name = domain.DefaultUpgradeChannel
	}

	if err := r.pm.AddChannel(ctx, url, name); err != nil {
		return "", err
	}
	if err := r.pm.UpdateChannel(ctx, name); err != nil {
		return "", err
	}
	return r.pm.ListChannels(ctx)
}
