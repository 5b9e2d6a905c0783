// Package docker runs environments inside containers through the docker CLI.
package docker

import (
	"context"
	"os"
	"strconv"
	"strings"

	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
)

// DefaultCommand is run in a container when no command is given.
const DefaultCommand = "sh"

var _ ports.ContainerRuntime = (*Runtime)(nil)

// Runtime implements ports.ContainerRuntime.
type Runtime struct {
	runner ports.CommandRunner
	binary string
	image  string
	env    []string
}

// NewRuntime creates a Runtime invoking binary and running image. The docker CLI
// receives PATH, HOME and every DOCKER_* variable of hostEnv.
func NewRuntime(runner ports.CommandRunner, binary, image string, hostEnv []string) *Runtime {
	return &Runtime{
		runner: runner,
		binary: binary,
		image:  image,
		env:    clientEnv(hostEnv),
	}
}

// NewHostRuntime creates a Runtime configured from settings and the process environment.
func NewHostRuntime(runner ports.CommandRunner, settings domain.DockerSettings) *Runtime {
	return NewRuntime(runner, settings.Binary, settings.Image, os.Environ())
}

// RunCommand returns an interactive, self-removing docker run.
func (r *Runtime) RunCommand(opts ports.ContainerRunOptions) domain.Command {
	args := []string{"run", "--interactive", "--tty", "--rm"}
	return r.command(append(args, r.runArgs(opts)...)...)
}

// AttachCommand returns docker attach for id.
func (r *Runtime) AttachCommand(id string) domain.Command {
	return r.command("attach", id)
}

// Start runs a detached container that keeps its terminal open and returns its
// short id.
func (r *Runtime) Start(ctx context.Context, opts ports.ContainerRunOptions) (string, error) {
	args := []string{"run", "--detach", "--interactive", "--tty"}
	out, err := r.output(ctx, r.command(append(args, r.runArgs(opts)...)...))
	if err != nil {
		return "", err
	}
	return domain.ShortContainerID(out), nil
}

// Exec runs command with sh inside container id.
func (r *Runtime) Exec(ctx context.Context, id, command string, detach bool) (string, error) {
	args := []string{"exec"}
	if detach {
		args = append(args, "--detach")
	}
	args = append(args, id, DefaultCommand, "-c", command)

	out, err := r.output(ctx, r.command(args...))
	if err != nil {
		return "", err
	}
	if detach {
		return "", nil
	}
	return out, nil
}

// PS returns the short id of the running container with id, or "".
func (r *Runtime) PS(ctx context.Context, id string) (string, error) {
	out, err := r.output(ctx, r.command("ps", "--quiet", "--filter", "id="+id))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Stop stops container id and returns the id docker reports.
func (r *Runtime) Stop(ctx context.Context, id string) (string, error) {
	out, err := r.output(ctx, r.command("stop", id))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// runArgs builds the part of docker run shared by interactive and detached runs.
func (r *Runtime) runArgs(opts ports.ContainerRunOptions) []string {
	var args []string
	for _, kv := range opts.Env {
		args = append(args, "--env", kv)
	}
	if opts.CPUShares > 0 {
		args = append(args, "--cpu-shares", strconv.Itoa(opts.CPUShares))
	}
	if opts.MemoryLimit != "" {
		args = append(args, "--memory", opts.MemoryLimit)
	}
	for _, m := range opts.Mounts {
		args = append(args, "--volume", m)
	}
	args = append(args, "--volume", domain.NixStorePath+":"+domain.NixStorePath+":ro")

	args = append(args, r.image)
	if len(opts.Command) == 0 {
		return append(args, DefaultCommand)
	}
	return append(args, opts.Command...)
}

func (r *Runtime) command(args ...string) domain.Command {
	return domain.Command{Name: r.binary, Args: args, Env: r.env}
}

func (r *Runtime) output(ctx context.Context, cmd domain.Command) (string, error) {
	result, err := r.runner.Run(ctx, cmd)
	if err != nil {
		return "", err
	}
	if err := result.Check(cmd); err != nil {
		return "", err
	}
	return result.Stdout, nil
}

func clientEnv(hostEnv []string) []string {
	env := make([]string, 0, 4)
	for _, kv := range hostEnv {
		key, _, _ := strings.Cut(kv, "=")
		if key == "PATH" || key == "HOME" || strings.HasPrefix(key, "DOCKER_") {
			env = append(env, kv)
		}
	}
	return env
}
