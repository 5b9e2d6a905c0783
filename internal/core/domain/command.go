package domain

import (
	"io"
	"strings"

	"go.trai.ch/zerr"
)

// Command describes one invocation of an external program.
type Command struct {
	Name string
	Args []string
	// Env replaces the process environment when non-nil.
	Env []string
	Dir string
	// Stdin, Stdout and Stderr are optional. Output is still captured in the result
	// when a writer is set.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String returns the command line for diagnostics.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// CommandResult is the outcome of a finished command.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Check converts a non-zero exit status into an error wrapping ErrCommandFailed and
// carrying stderr.
func (r CommandResult) Check(cmd Command) error {
	if r.ExitCode == 0 {
		return nil
	}
	err := zerr.With(zerr.Wrap(ErrCommandFailed, cmd.Name), "command", cmd.String())
	err = zerr.With(err, "exit_code", r.ExitCode)
	return zerr.With(err, "stderr", strings.TrimSpace(r.Stderr))
}

// TerminalSize is the initial size of a pseudo terminal.
type TerminalSize struct {
	Rows uint16
	Cols uint16
}

// DefaultTerminalSize is used for new sessions.
var DefaultTerminalSize = TerminalSize{Rows: 30, Cols: 120}
