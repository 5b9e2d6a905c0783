package domain

import (
	"regexp"
	"strings"

	"go.trai.ch/zerr"
)

// Platform selects where a session runs.
type Platform int

const (
	// PlatformUnix runs a bash shell on the host.
	PlatformUnix Platform = iota
	// PlatformWindows runs a PowerShell on the host.
	PlatformWindows
	// PlatformDocker runs inside an ephemeral container.
	PlatformDocker
)

// String returns the lower case platform name.
func (p Platform) String() string {
	switch p {
	case PlatformUnix:
		return "unix"
	case PlatformWindows:
		return "win"
	case PlatformDocker:
		return "docker"
	default:
		return "unknown"
	}
}

// ParsePlatform accepts a platform name or its numeric form.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unix", "0":
		return PlatformUnix, nil
	case "win", "windows", "1":
		return PlatformWindows, nil
	case "docker", "container", "2":
		return PlatformDocker, nil
	default:
		return PlatformUnix, zerr.With(zerr.Wrap(ErrUnknownPlatform, "parse platform"), "platform", s)
	}
}

// SessionState is the lifecycle state of a session.
type SessionState int32

const (
	// SessionCreated is the initial state.
	SessionCreated SessionState = iota
	// SessionStarting means the external process is being launched.
	SessionStarting
	// SessionAttached means streams are being bridged to a live process.
	SessionAttached
	// SessionTerminated is terminal.
	SessionTerminated
)

// String returns a human-readable representation of the state.
func (s SessionState) String() string {
	switch s {
	case SessionCreated:
		return "created"
	case SessionStarting:
		return "starting"
	case SessionAttached:
		return "attached"
	case SessionTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// SessionOptions are the parameters of a session inside an environment.
type SessionOptions struct {
	// Platform is nil when the host OS should decide.
	Platform *Platform
	// Command is typed into a host shell, or run as the container command.
	Command string
	// Pure hides host executables outside the environment.
	Pure bool
	// ContainerID is set when addressing an existing container.
	ContainerID string
	// CPUShares and MemoryLimit only apply to containers.
	CPUShares   int
	MemoryLimit string
	// Mounts are "host:container[:opts]" bind specs, container only.
	Mounts []string
	// Size is the initial terminal size. The zero value means DefaultTerminalSize.
	Size TerminalSize
}

// ShortContainerIDLength is the length of the truncated container identifier.
const ShortContainerIDLength = 12

var containerIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]{12}$`)

// ValidateContainerID checks that id is exactly 12 alphanumeric characters.
func ValidateContainerID(id string) error {
	if !containerIDPattern.MatchString(id) {
		return zerr.With(zerr.Wrap(ErrInvalidContainerID, "validate container id"), "container_id", id)
	}
	return nil
}

// ShortContainerID truncates a full container id to its short form.
func ShortContainerID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > ShortContainerIDLength {
		return id[:ShortContainerIDLength]
	}
	return id
}
