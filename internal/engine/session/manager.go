// Package session runs shells and commands inside built environments, on the
// host or in containers, and bridges their terminals to byte streams.
package session

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"runtime"

	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/zerr"
)

// Host describes the process nixster runs in.
type Host struct {
	// Executable is aliased as nixster inside host shells.
	Executable string
	// Environ is the process environment, as returned by os.Environ.
	Environ []string
	// GOOS picks the shell when a session does not name a platform.
	GOOS string
	// LookPath finds programs on the host PATH.
	LookPath func(file string) (string, error)
}

// CurrentHost describes the running process.
func CurrentHost() Host {
	executable, err := os.Executable()
	if err != nil {
		executable = "nixster"
	}
	return Host{
		Executable: executable,
		Environ:    os.Environ(),
		GOOS:       runtime.GOOS,
		LookPath:   exec.LookPath,
	}
}

// Manager creates sessions and runs one-shot commands in environments.
type Manager struct {
	envs     ports.EnvironmentStore
	pm       ports.PackageManager
	runtime  ports.ContainerRuntime
	spawner  ports.TerminalSpawner
	runner   ports.CommandRunner
	tracer   ports.Tracer
	logger   ports.Logger
	profiles string
	host     Host
}

// New creates a Manager for environments whose profiles live below profiles.
func New(
	envs ports.EnvironmentStore,
	pm ports.PackageManager,
	rt ports.ContainerRuntime,
	spawner ports.TerminalSpawner,
	runner ports.CommandRunner,
	tracer ports.Tracer,
	logger ports.Logger,
	profiles string,
) *Manager {
	return &Manager{
		envs:     envs,
		pm:       pm,
		runtime:  rt,
		spawner:  spawner,
		runner:   runner,
		tracer:   tracer,
		logger:   logger,
		profiles: profiles,
		host:     CurrentHost(),
	}
}

// WithHost replaces the description of the running process.
// This is primarily used for testing.
func (m *Manager) WithHost(host Host) *Manager {
	m.host = host
	return m
}

// NewSession prepares a session in the environment named env. Nothing is started
// until one of the session's operations is called.
func (m *Manager) NewSession(env string, opts domain.SessionOptions) (*Session, error) {
	if err := domain.ValidateEnvironmentName(env); err != nil {
		return nil, err
	}
	if opts.ContainerID != "" {
		if err := domain.ValidateContainerID(opts.ContainerID); err != nil {
			return nil, err
		}
	}

	platform := domain.PlatformUnix
	switch {
	case opts.Platform != nil:
		platform = *opts.Platform
	case m.host.GOOS == "windows":
		platform = domain.PlatformWindows
	}

	return &Session{
		manager:     m,
		env:         env,
		opts:        opts,
		platform:    platform,
		containerID: opts.ContainerID,
	}, nil
}

// ContainerIsRunning reports whether the container id is running. The id must be
// a short container id.
func (m *Manager) ContainerIsRunning(ctx context.Context, id string) (bool, error) {
	if err := domain.ValidateContainerID(id); err != nil {
		return false, err
	}
	running, err := m.runtime.PS(ctx, id)
	if err != nil {
		return false, err
	}
	return running == id, nil
}

// Within runs command with bash inside env, with the given standard streams, and
// waits for it to finish.
func (m *Manager) Within(ctx context.Context, env, command string, pure bool, stdin io.Reader, stdout, stderr io.Writer) error {
	spec, location, err := m.load(env)
	if err != nil {
		return err
	}

	bash, err := m.host.LookPath("bash")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to find bash"), "environment", env)
	}

	cmd := domain.Command{
		Name:   bash,
		Args:   []string{"-c", command},
		Env:    m.commandEnv(spec, location, pure),
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}
	result, err := m.runner.Run(ctx, cmd)
	if err != nil {
		return err
	}
	return result.Check(cmd)
}

// load reads the spec of env and resolves its install location.
func (m *Manager) load(env string) (*domain.Environment, string, error) {
	if err := domain.ValidateEnvironmentName(env); err != nil {
		return nil, "", err
	}
	spec, err := m.envs.Read(env)
	if err != nil {
		return nil, "", err
	}

	location, err := m.pm.Location(domain.ProfilePath(m.profiles, env))
	if errors.Is(err, domain.ErrProfileNotFound) {
		return nil, "", zerr.With(zerr.Wrap(domain.ErrNotBuilt, "resolve location"), "environment", env)
	}
	if err != nil {
		return nil, "", err
	}
	return spec, location, nil
}
