package ports

import (
	"context"

	"go.trai.ch/nixster/internal/core/domain"
)

// PackageManager is the external package manager.
//
//go:generate mockgen -source=package_manager.go -destination=mocks/mock_package_manager.go -package=mocks
type PackageManager interface {
	// Query lists the packages available on a channel, optionally below an attribute set.
	Query(ctx context.Context, channel, attrs string) ([]domain.AvailablePackage, error)

	// Install installs attributes from one channel into a profile.
	Install(ctx context.Context, req domain.InstallRequest) error

	// Upgrade upgrades attributes of a profile from a channel. No attributes upgrades
	// everything installed.
	Upgrade(ctx context.Context, channel, profile string, attrs []string) error

	// Uninstall removes every package from a profile.
	Uninstall(ctx context.Context, profile string) error

	// Location resolves a profile to its directory in the store.
	// It returns domain.ErrProfileNotFound when the profile does not exist.
	Location(profile string) (string, error)

	// Installed maps the package names installed in a profile to their store paths.
	Installed(ctx context.Context, profile string) (map[string]string, error)

	// Requisites lists the store paths a location depends on.
	Requisites(ctx context.Context, location string) ([]string, error)

	// AddChannel subscribes to a channel.
	AddChannel(ctx context.Context, url, name string) error

	// UpdateChannel downloads the latest expressions of a channel.
	UpdateChannel(ctx context.Context, name string) error

	// ListChannels returns the subscribed channels as printed by the package manager.
	ListChannels(ctx context.Context) (string, error)
}
