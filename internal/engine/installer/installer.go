// Package installer turns resolved package sets into package manager installs.
package installer

import (
	"context"
	"fmt"
	"strings"

	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/zerr"
)

// Installer matches package names against the catalog and installs them one
// channel at a time.
type Installer struct {
	catalog ports.CatalogStore
	pm      ports.PackageManager
	tracer  ports.Tracer
	logger  ports.Logger
}

// New creates an Installer.
func New(catalog ports.CatalogStore, pm ports.PackageManager, tracer ports.Tracer, logger ports.Logger) *Installer {
	return &Installer{catalog: catalog, pm: pm, tracer: tracer, logger: logger}
}

type channelGroup struct {
	channel string
	attrs   []string
}

// Install installs pkgs into profile.
//
// Every package must have a catalog match, otherwise nothing is installed and the
// error is a *domain.MissingPackageError. With clean set the profile ends up with
// exactly pkgs: the first channel install clears what was there before, and an
// empty pkgs uninstalls everything.
func (i *Installer) Install(ctx context.Context, profile string, pkgs []string, clean bool) error {
	groups, err := i.group(ctx, pkgs)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		if !clean {
			return nil
		}
		return i.clear(ctx, profile)
	}

	if len(groups) > 1 {
		channels := make([]string, 0, len(groups))
		for _, g := range groups {
			channels = append(channels, g.channel)
		}
		i.logger.Warn("installing packages from multiple channels: " + strings.Join(channels, ", "))
	}

	for n, g := range groups {
		if err := i.installGroup(ctx, profile, g, clean && n == 0); err != nil {
			return err
		}
	}
	return nil
}

func (i *Installer) installGroup(ctx context.Context, profile string, g channelGroup, clean bool) error {
	ctx, span := i.tracer.Start(ctx, "install",
		ports.WithAttribute("channel", g.channel),
		ports.WithAttribute("profile", profile),
		ports.WithAttribute("packages", len(g.attrs)),
	)
	defer span.End()

	err := i.pm.Install(ctx, domain.InstallRequest{
		Channel:    g.channel,
		Attributes: g.attrs,
		Profile:    profile,
		Clean:      clean,
	})
	if err != nil {
		span.RecordError(err)
		return zerr.With(zerr.Wrap(err, "install packages"), "channel", g.channel)
	}
	return nil
}

func (i *Installer) clear(ctx context.Context, profile string) error {
	ctx, span := i.tracer.Start(ctx, "uninstall", ports.WithAttribute("profile", profile))
	defer span.End()

	if err := i.pm.Uninstall(ctx, profile); err != nil {
		span.RecordError(err)
		return zerr.With(zerr.Wrap(err, "clear profile"), "profile", profile)
	}
	return nil
}

// group resolves each package to its best catalog entry and groups the
// attributes by channel, in the order channels are first seen.
func (i *Installer) group(ctx context.Context, pkgs []string) ([]channelGroup, error) {
	var groups []channelGroup
	index := make(map[string]int)

	for _, pkg := range pkgs {
		candidates, err := i.catalog.Match(ctx, domain.ParsePackageRequest(pkg))
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return nil, &domain.MissingPackageError{Package: pkg}
		}

		best := candidates[0]
		i.logger.Debug(fmt.Sprintf("%s resolved to %s (%s) from %s", pkg, best.Attribute, best.Version, best.Channel))

		n, ok := index[best.Channel]
		if !ok {
			n = len(groups)
			index[best.Channel] = n
			groups = append(groups, channelGroup{channel: best.Channel})
		}
		groups[n].attrs = append(groups[n].attrs, best.Attribute)
	}
	return groups, nil
}

// Upgrade upgrades the named packages of profile, or everything installed when no
// names are given.
func (i *Installer) Upgrade(ctx context.Context, profile string, names []string) error {
	attrs, err := i.upgradeAttributes(ctx, names)
	if err != nil {
		return err
	}

	ctx, span := i.tracer.Start(ctx, "upgrade",
		ports.WithAttribute("channel", domain.DefaultUpgradeChannel),
		ports.WithAttribute("profile", profile),
	)
	defer span.End()

	if err := i.pm.Upgrade(ctx, domain.DefaultUpgradeChannel, profile, attrs); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// upgradeAttributes picks the highest priority attribute of each name. Among
// equal priorities the newest version wins.
func (i *Installer) upgradeAttributes(ctx context.Context, names []string) ([]string, error) {
	var attrs []string
	for _, name := range domain.Dedupe(names) {
		candidates, err := i.catalog.Match(ctx, domain.PackageRequest{Name: name})
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return nil, &domain.MissingPackageError{Package: name}
		}

		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.Priority > best.Priority {
				best = c
			}
		}
		attrs = append(attrs, best.Attribute)
	}
	return attrs, nil
}
