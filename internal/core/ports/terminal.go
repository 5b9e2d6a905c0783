package ports

import (
	"context"
	"io"

	"go.trai.ch/nixster/internal/core/domain"
)

// TerminalSpawner starts programs attached to a pseudo terminal.
//
//go:generate mockgen -source=terminal.go -destination=mocks/mock_terminal.go -package=mocks
type TerminalSpawner interface {
	// Start launches cmd on a new pseudo terminal of the given size.
	Start(ctx context.Context, cmd domain.Command, size domain.TerminalSize) (Process, error)
}

// Process is a program running on a pseudo terminal.
//
// Reading returns the terminal output and writing types into the terminal.
type Process interface {
	io.ReadWriteCloser
	// Pid returns the process id of the top-level program.
	Pid() int
	// Resize changes the terminal window size.
	Resize(size domain.TerminalSize) error
	// IsForeground reports whether the top-level program, rather than a program it
	// started, owns the terminal.
	IsForeground() bool
	// Kill terminates the top-level program.
	Kill() error
	// Wait blocks until the program exits.
	Wait() error
}
