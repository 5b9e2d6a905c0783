package ports

import (
	"context"

	"go.trai.ch/nixster/internal/core/domain"
)

// ContainerRunOptions describes a container to run.
type ContainerRunOptions struct {
	// Env holds "KEY=VALUE" pairs set inside the container.
	Env         []string
	Mounts      []string
	CPUShares   int
	MemoryLimit string
	// Command is the container command. The image default is used when empty.
	Command []string
}

// ContainerRuntime is the external container runtime.
//
//go:generate mockgen -source=container.go -destination=mocks/mock_container.go -package=mocks
type ContainerRuntime interface {
	// RunCommand returns the command that runs an interactive container with a terminal.
	RunCommand(opts ContainerRunOptions) domain.Command

	// AttachCommand returns the command that attaches a terminal to a running container.
	AttachCommand(id string) domain.Command

	// Start runs a detached container and returns its short id.
	Start(ctx context.Context, opts ContainerRunOptions) (string, error)

	// Exec runs a shell command in a running container. When detach is set it returns
	// as soon as the command has started, with empty output.
	Exec(ctx context.Context, id, command string, detach bool) (string, error)

	// PS returns the id of the running container matching id, or "" when none does.
	PS(ctx context.Context, id string) (string, error)

	// Stop stops a container and returns the id reported by the runtime.
	Stop(ctx context.Context, id string) (string, error)
}
