package domain

import (
	"os"
	"path/filepath"
)

const (
	// HomeDirName is the name of the per-user nixster directory.
	HomeDirName = ".nixster"

	// EnvsDirName is the directory holding environment specs.
	EnvsDirName = "envs"

	// SpecExt is the file extension of environment specs.
	SpecExt = ".yaml"

	// DatabaseFileName is the name of the catalog database.
	DatabaseFileName = "nixster.sqlite3"

	// ConfigFileName is the name of the optional settings file, without extension.
	ConfigFileName = "config"

	// DefaultProfilesDir is where environment profiles are created.
	DefaultProfilesDir = "/nix/profiles"

	// NixStorePath is the package store bind mounted read-only into containers.
	NixStorePath = "/nix/store"

	// DefaultEnvironmentName is used by network sessions that do not name an environment.
	DefaultEnvironmentName = "multi-mega"

	// DefaultUpgradeChannel is the channel upgrades are resolved against.
	DefaultUpgradeChannel = "nixpkgs-unstable"

	// DefaultChannelURL is subscribed when no channel URL is given.
	DefaultChannelURL = "https://nixos.org/channels/nixpkgs-unstable"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultChannels are refreshed when no channel is named.
var DefaultChannels = []string{
	"nixpkgs-unstable",
	"nixos-18.09", "nixos-18.03",
	"nixos-17.09", "nixos-17.03",
	"nixos-16.09", "nixos-16.03",
	"nixos-15.09",
}

// DefaultHome returns ~/.nixster, falling back to the working directory when the
// home directory is unknown.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return HomeDirName
	}
	return filepath.Join(home, HomeDirName)
}

// EnvsDir returns the spec directory below home.
func EnvsDir(home string) string {
	return filepath.Join(home, EnvsDirName)
}

// ProfilePath returns the package manager profile of an environment.
func ProfilePath(profiles, env string) string {
	return filepath.Join(profiles, env)
}
