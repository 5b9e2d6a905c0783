package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/zerr"
)

// Session is one execution context inside an environment.
//
// A session bridges at most one terminal over its lifetime:
// Created -> Starting -> Attached -> Terminated. Container operations (Start,
// Attach, Execute, Stop) are only available on the docker platform.
type Session struct {
	manager  *Manager
	env      string
	opts     domain.SessionOptions
	platform domain.Platform
	state    atomic.Int32

	mu          sync.Mutex
	containerID string
	proc        ports.Process
}

// Platform returns where the session runs.
func (s *Session) Platform() domain.Platform {
	return s.platform
}

// State returns the current lifecycle state.
func (s *Session) State() domain.SessionState {
	return domain.SessionState(s.state.Load())
}

// ContainerID returns the short id of the session's container, or "" when none
// has been assigned.
func (s *Session) ContainerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.containerID
}

func (s *Session) transition(from, to domain.SessionState) error {
	if !s.state.CompareAndSwap(int32(from), int32(to)) {
		err := zerr.With(zerr.Wrap(domain.ErrInvalidSessionState, "session transition"), "from", s.State().String())
		return zerr.With(err, "to", to.String())
	}
	s.manager.logger.Debug(fmt.Sprintf("session %s: %s -> %s", s.env, from, to))
	return nil
}

func (s *Session) terminate() {
	s.state.Store(int32(domain.SessionTerminated))
	s.manager.logger.Debug(fmt.Sprintf("session %s: %s", s.env, domain.SessionTerminated))
}

func (s *Session) requireContainer() error {
	if s.platform != domain.PlatformDocker {
		return zerr.With(zerr.Wrap(domain.ErrInvalidPlatform, "container operation"), "platform", s.platform.String())
	}
	return nil
}

// Run starts a shell, or the session command in a container, and bridges its
// terminal to in and out until it ends. interactive marks out as a terminal a
// person types into, on which EOT at the shell ends the session.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer, interactive bool) error {
	if err := s.transition(domain.SessionCreated, domain.SessionStarting); err != nil {
		return err
	}
	defer s.terminate()

	ctx, span := s.manager.tracer.Start(ctx, "session",
		ports.WithAttribute("environment", s.env),
		ports.WithAttribute("platform", s.platform.String()),
	)
	defer span.End()

	spec, location, err := s.manager.load(s.env)
	if err != nil {
		span.RecordError(err)
		return err
	}

	cmd, cleanup, err := s.command(spec, location)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer cleanup()

	return s.attach(ctx, span, cmd, in, out, interactive)
}

// command builds the program a session runs on its terminal.
func (s *Session) command(spec *domain.Environment, location string) (domain.Command, func(), error) {
	m := s.manager
	switch s.platform {
	case domain.PlatformDocker:
		cmd := m.runtime.RunCommand(s.containerOptions(spec, location))
		cmd.Env = clientEnv(cmd)
		return cmd, func() {}, nil

	case domain.PlatformWindows:
		shell, err := m.host.LookPath("powershell.exe")
		if err != nil {
			return domain.Command{}, nil, zerr.Wrap(err, "failed to find powershell")
		}
		return domain.Command{Name: shell, Env: m.shellEnv(spec, location, s.opts.Pure)}, func() {}, nil

	default:
		shell, err := m.host.LookPath("bash")
		if err != nil {
			return domain.Command{}, nil, zerr.Wrap(err, "failed to find bash")
		}
		rcfile, err := writeRCFile(m.host.Executable)
		if err != nil {
			return domain.Command{}, nil, err
		}
		cmd := domain.Command{
			Name: shell,
			Args: []string{"--noprofile", "--rcfile", rcfile},
			Env:  m.shellEnv(spec, location, s.opts.Pure),
		}
		return cmd, func() { _ = os.Remove(rcfile) }, nil
	}
}

// writeRCFile writes a bash startup file that makes nixster callable inside the
// shell without putting it on PATH.
func writeRCFile(executable string) (string, error) {
	f, err := os.CreateTemp("", "nixster-rc-*")
	if err != nil {
		return "", zerr.Wrap(err, "failed to create shell rc file")
	}
	_, err = fmt.Fprintf(f, "alias nixster=%q\n", executable)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return "", zerr.With(zerr.Wrap(err, "failed to write shell rc file"), "path", f.Name())
	}
	return f.Name(), nil
}

func (s *Session) containerOptions(spec *domain.Environment, location string) ports.ContainerRunOptions {
	return ports.ContainerRunOptions{
		Env:         containerEnv(spec, location),
		Mounts:      s.opts.Mounts,
		CPUShares:   s.opts.CPUShares,
		MemoryLimit: s.opts.MemoryLimit,
		Command:     strings.Fields(s.opts.Command),
	}
}

// attach starts cmd on a terminal and bridges it until it ends.
func (s *Session) attach(ctx context.Context, span ports.Span, cmd domain.Command, in io.Reader, out io.Writer, interactive bool) error {
	m := s.manager
	size := s.opts.Size
	if size.Rows == 0 || size.Cols == 0 {
		size = domain.DefaultTerminalSize
	}
	proc, err := m.spawner.Start(ctx, cmd, size)
	if err != nil {
		span.RecordError(err)
		return err
	}

	s.mu.Lock()
	s.proc = proc
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.proc = nil
		s.mu.Unlock()
	}()

	if err := s.transition(domain.SessionStarting, domain.SessionAttached); err != nil {
		_ = proc.Kill()
		_ = proc.Wait()
		_ = proc.Close()
		return err
	}

	if s.platform == domain.PlatformUnix && s.opts.Command != "" {
		if _, err := io.WriteString(proc, s.opts.Command+"\r"); err != nil {
			m.logger.Warn("failed to type initial command: " + err.Error())
		}
	}

	return bridge(ctx, proc, in, out, interactive)
}

// Resize changes the terminal size of an attached session. It does nothing when
// no terminal is attached.
func (s *Session) Resize(size domain.TerminalSize) error {
	s.mu.Lock()
	proc := s.proc
	s.mu.Unlock()

	if proc == nil {
		return nil
	}
	return proc.Resize(size)
}

// Start runs the environment in a detached container and assigns its id to the
// session.
func (s *Session) Start(ctx context.Context) (string, error) {
	if err := s.requireContainer(); err != nil {
		return "", err
	}
	if id := s.ContainerID(); id != "" {
		return "", zerr.With(zerr.Wrap(domain.ErrContainerAssigned, "start container"), "container_id", id)
	}

	spec, location, err := s.manager.load(s.env)
	if err != nil {
		return "", err
	}

	id, err := s.manager.runtime.Start(ctx, s.containerOptions(spec, location))
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.containerID != "" {
		return "", zerr.With(zerr.Wrap(domain.ErrContainerAssigned, "start container"), "container_id", s.containerID)
	}
	s.containerID = id
	s.manager.logger.Debug(fmt.Sprintf("session %s: started container %s", s.env, id))
	return id, nil
}

// running checks that the session's container is running.
func (s *Session) running(ctx context.Context) (string, error) {
	if err := s.requireContainer(); err != nil {
		return "", err
	}
	id := s.ContainerID()
	ok, err := s.manager.ContainerIsRunning(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", zerr.With(zerr.Wrap(domain.ErrNotRunning, "check container"), "container_id", id)
	}
	return id, nil
}

// Attach bridges in and out to the terminal of the session's running container.
func (s *Session) Attach(ctx context.Context, in io.Reader, out io.Writer, interactive bool) error {
	id, err := s.running(ctx)
	if err != nil {
		return err
	}
	if err := s.transition(domain.SessionCreated, domain.SessionStarting); err != nil {
		return err
	}
	defer s.terminate()

	ctx, span := s.manager.tracer.Start(ctx, "attach",
		ports.WithAttribute("environment", s.env),
		ports.WithAttribute("container_id", id),
	)
	defer span.End()

	cmd := s.manager.runtime.AttachCommand(id)
	cmd.Env = clientEnv(cmd)
	return s.attach(ctx, span, cmd, in, out, interactive)
}

// Execute runs command in the session's running container and returns its
// output. With daemonize set the command is left running and the output is empty.
func (s *Session) Execute(ctx context.Context, command string, daemonize bool) (string, error) {
	id, err := s.running(ctx)
	if err != nil {
		return "", err
	}
	return s.manager.runtime.Exec(ctx, id, command, daemonize)
}

// Stop stops the session's container. It reports false when the runtime stopped
// something other than the requested container.
func (s *Session) Stop(ctx context.Context) (bool, error) {
	if err := s.requireContainer(); err != nil {
		return false, err
	}
	id := s.ContainerID()
	if err := domain.ValidateContainerID(id); err != nil {
		return false, err
	}

	stopped, err := s.manager.runtime.Stop(ctx, id)
	if err != nil {
		return false, err
	}
	if domain.ShortContainerID(stopped) != id {
		return false, nil
	}
	s.terminate()
	return true, nil
}
