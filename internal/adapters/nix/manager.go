// Package nix drives the nix-env, nix-store and nix-channel command line tools.
package nix

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"go.trai.ch/nixster/internal/adapters/logger"
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	nixEnv     = "nix-env"
	nixStore   = "nix-store"
	nixChannel = "nix-channel"
)

var _ ports.PackageManager = (*Manager)(nil)

// Manager implements ports.PackageManager on top of a CommandRunner.
type Manager struct {
	runner ports.CommandRunner
	logger ports.Logger
}

// NewManager creates a new Manager.
func NewManager(runner ports.CommandRunner, logger ports.Logger) *Manager {
	return &Manager{runner: runner, logger: logger}
}

// Install installs attributes from one channel into a profile. With req.Clean the
// profile is emptied first, so it ends up holding exactly the given attributes.
func (m *Manager) Install(ctx context.Context, req domain.InstallRequest) error {
	args := []string{"--install", "--file", channelFile(req.Channel)}
	if req.Clean {
		args = append(args, "--remove-all")
	}
	args = append(args, "--profile", req.Profile, "--attr")
	args = append(args, req.Attributes...)

	return m.stream(ctx, domain.Command{Name: nixEnv, Args: args})
}

// Upgrade upgrades attributes of a profile. An empty attrs upgrades every
// installed package.
func (m *Manager) Upgrade(ctx context.Context, channel, profile string, attrs []string) error {
	args := []string{"--upgrade", "--file", channelFile(channel), "--profile", profile}
	if len(attrs) > 0 {
		args = append(args, "--attr")
		args = append(args, attrs...)
	}

	return m.stream(ctx, domain.Command{Name: nixEnv, Args: args})
}

// Uninstall removes every package installed in profile.
func (m *Manager) Uninstall(ctx context.Context, profile string) error {
	return m.stream(ctx, domain.Command{
		Name: nixEnv,
		Args: []string{"--uninstall", "--profile", profile, ".*"},
	})
}

// Location resolves the profile symlink chain to its generation in the store.
func (m *Manager) Location(profile string) (string, error) {
	loc, err := filepath.EvalSymlinks(profile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", zerr.With(zerr.Wrap(domain.ErrProfileNotFound, "resolve profile"), "profile", profile)
		}
		return "", zerr.With(zerr.Wrap(err, "failed to resolve profile"), "profile", profile)
	}
	return loc, nil
}

// Installed maps the names of the packages installed in profile to their out paths.
func (m *Manager) Installed(ctx context.Context, profile string) (map[string]string, error) {
	out, err := m.output(ctx, domain.Command{
		Name: nixEnv,
		Args: []string{"--query", "--installed", "--profile", profile, "--out-path"},
	})
	if err != nil {
		return nil, err
	}

	pkgs := make(map[string]string)
	for _, line := range lines(out) {
		fields := strings.Fields(line)
		switch len(fields) {
		case 0:
		case 1:
			pkgs[fields[0]] = ""
		default:
			pkgs[fields[0]] = fields[1]
		}
	}
	return pkgs, nil
}

// Requisites lists the closure of location.
func (m *Manager) Requisites(ctx context.Context, location string) ([]string, error) {
	out, err := m.output(ctx, domain.Command{
		Name: nixStore,
		Args: []string{"--query", "--requisites", location},
	})
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// AddChannel subscribes to the channel at url under name.
func (m *Manager) AddChannel(ctx context.Context, url, name string) error {
	_, err := m.output(ctx, domain.Command{Name: nixChannel, Args: []string{"--add", url, name}})
	return err
}

// UpdateChannel downloads the latest expressions of the named channel.
func (m *Manager) UpdateChannel(ctx context.Context, name string) error {
	return m.stream(ctx, domain.Command{Name: nixChannel, Args: []string{"--update", name}})
}

// ListChannels returns the output of nix-channel --list.
func (m *Manager) ListChannels(ctx context.Context) (string, error) {
	return m.output(ctx, domain.Command{Name: nixChannel, Args: []string{"--list"}})
}

// output runs cmd and returns its stdout, failing on a non-zero exit.
func (m *Manager) output(ctx context.Context, cmd domain.Command) (string, error) {
	result, err := m.runner.Run(ctx, cmd)
	if err != nil {
		return "", err
	}
	if err := result.Check(cmd); err != nil {
		return "", err
	}
	return result.Stdout, nil
}

// stream runs cmd, relaying its progress output to the logger line by line.
func (m *Manager) stream(ctx context.Context, cmd domain.Command) error {
	w := logger.NewLineWriter(m.logger.Info)
	defer w.Flush()

	cmd.Stdout = w
	cmd.Stderr = w
	_, err := m.output(ctx, cmd)
	return err
}

func channelFile(channel string) string {
	return "channel:" + channel
}

func lines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
