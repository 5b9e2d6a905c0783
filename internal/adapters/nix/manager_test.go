package nix_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/nixster/internal/adapters/nix"
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	runner  *mocks.MockCommandRunner
	logger  *mocks.MockLogger
	manager *nix.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	return &fixture{runner: runner, logger: logger, manager: nix.NewManager(runner, logger)}
}

// expectCommand expects one run of name with args and answers with result.
func (f *fixture) expectCommand(name string, args []string, result domain.CommandResult) {
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cmd domain.Command) (domain.CommandResult, error) {
			if cmd.Name != name {
				return domain.CommandResult{}, errors.New("unexpected program " + cmd.Name)
			}
			if len(cmd.Args) != len(args) {
				return domain.CommandResult{}, errors.New("unexpected args " + cmd.String())
			}
			for i := range args {
				if cmd.Args[i] != args[i] {
					return domain.CommandResult{}, errors.New("unexpected args " + cmd.String())
				}
			}
			if cmd.Stderr != nil && result.Stderr != "" {
				_, _ = io.WriteString(cmd.Stderr, result.Stderr)
			}
			return result, nil
		})
}

func TestManager_Install(t *testing.T) {
	f := newFixture(t)
	f.expectCommand("nix-env", []string{
		"--install", "--file", "channel:nixos-18.09", "--remove-all",
		"--profile", "/nix/profiles/r-base", "--attr", "R", "rPackages.ggplot2",
	}, domain.CommandResult{Stderr: "installing 'R-3.5.1'\ninstalling 'r-ggplot2-3.0.0'\n"})
	f.logger.EXPECT().Info("installing 'R-3.5.1'")
	f.logger.EXPECT().Info("installing 'r-ggplot2-3.0.0'")

	err := f.manager.Install(context.Background(), domain.InstallRequest{
		Channel:    "nixos-18.09",
		Attributes: []string{"R", "rPackages.ggplot2"},
		Profile:    "/nix/profiles/r-base",
		Clean:      true,
	})
	require.NoError(t, err)
}

func TestManager_Install_Failure(t *testing.T) {
	f := newFixture(t)
	f.expectCommand("nix-env", []string{
		"--install", "--file", "channel:nixpkgs-unstable",
		"--profile", "/nix/profiles/x", "--attr", "nope",
	}, domain.CommandResult{ExitCode: 1, Stderr: "error: attribute 'nope' missing\n"})
	f.logger.EXPECT().Info("error: attribute 'nope' missing")

	err := f.manager.Install(context.Background(), domain.InstallRequest{
		Channel:    "nixpkgs-unstable",
		Attributes: []string{"nope"},
		Profile:    "/nix/profiles/x",
	})
	require.ErrorIs(t, err, domain.ErrCommandFailed)
}

func TestManager_Uninstall(t *testing.T) {
	f := newFixture(t)
	f.expectCommand("nix-env", []string{
		"--uninstall", "--profile", "/nix/profiles/plain", ".*",
	}, domain.CommandResult{Stderr: "uninstalling 'R-3.5.1'\n"})
	f.logger.EXPECT().Info("uninstalling 'R-3.5.1'")

	require.NoError(t, f.manager.Uninstall(context.Background(), "/nix/profiles/plain"))
}

func TestManager_Upgrade(t *testing.T) {
	t.Run("named", func(t *testing.T) {
		f := newFixture(t)
		f.expectCommand("nix-env", []string{
			"--upgrade", "--file", "channel:nixpkgs-unstable", "--profile", "/p/e", "--attr", "git",
		}, domain.CommandResult{})
		require.NoError(t, f.manager.Upgrade(context.Background(), "nixpkgs-unstable", "/p/e", []string{"git"}))
	})

	t.Run("everything", func(t *testing.T) {
		f := newFixture(t)
		f.expectCommand("nix-env", []string{
			"--upgrade", "--file", "channel:nixpkgs-unstable", "--profile", "/p/e",
		}, domain.CommandResult{})
		require.NoError(t, f.manager.Upgrade(context.Background(), "nixpkgs-unstable", "/p/e", nil))
	})
}

func TestManager_Installed(t *testing.T) {
	f := newFixture(t)
	f.expectCommand("nix-env", []string{"--query", "--installed", "--profile", "/p/e", "--out-path"},
		domain.CommandResult{Stdout: "git-2.19.1  /nix/store/aaa-git-2.19.1\nvim-8.1.0348  /nix/store/bbb-vim-8.1.0348\n"})

	pkgs, err := f.manager.Installed(context.Background(), "/p/e")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"git-2.19.1":   "/nix/store/aaa-git-2.19.1",
		"vim-8.1.0348": "/nix/store/bbb-vim-8.1.0348",
	}, pkgs)
}

func TestManager_Installed_Empty(t *testing.T) {
	f := newFixture(t)
	f.expectCommand("nix-env", []string{"--query", "--installed", "--profile", "/p/e", "--out-path"},
		domain.CommandResult{Stdout: "\n"})

	pkgs, err := f.manager.Installed(context.Background(), "/p/e")
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}

func TestManager_Requisites(t *testing.T) {
	f := newFixture(t)
	f.expectCommand("nix-store", []string{"--query", "--requisites", "/nix/store/xyz-user-environment"},
		domain.CommandResult{Stdout: "/nix/store/a\n/nix/store/b\n"})

	paths, err := f.manager.Requisites(context.Background(), "/nix/store/xyz-user-environment")
	require.NoError(t, err)
	assert.Equal(t, []string{"/nix/store/a", "/nix/store/b"}, paths)
}

func TestManager_Channels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.expectCommand("nix-channel", []string{"--add", domain.DefaultChannelURL, "nixpkgs-unstable"}, domain.CommandResult{})
	f.expectCommand("nix-channel", []string{"--update", "nixpkgs-unstable"}, domain.CommandResult{})
	f.expectCommand("nix-channel", []string{"--list"},
		domain.CommandResult{Stdout: "nixpkgs-unstable " + domain.DefaultChannelURL + "\n"})

	require.NoError(t, f.manager.AddChannel(ctx, domain.DefaultChannelURL, "nixpkgs-unstable"))
	require.NoError(t, f.manager.UpdateChannel(ctx, "nixpkgs-unstable"))
	list, err := f.manager.ListChannels(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, "nixpkgs-unstable")
}

func TestManager_Location(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()

	generation := filepath.Join(dir, "store", "xyz-user-environment")
	require.NoError(t, os.MkdirAll(generation, domain.DirPerm))
	profile := filepath.Join(dir, "profiles", "r-base")
	require.NoError(t, os.MkdirAll(filepath.Dir(profile), domain.DirPerm))
	require.NoError(t, os.Symlink(generation, profile))

	loc, err := f.manager.Location(profile)
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(generation)
	require.NoError(t, err)
	assert.Equal(t, want, loc)

	_, err = f.manager.Location(filepath.Join(dir, "profiles", "missing"))
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}
