// Package shell runs external programs, either to completion or on a pseudo terminal.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/zerr"
)

// Runner implements ports.CommandRunner using os/exec.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a new Runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes cmd and waits for it to exit. Output is captured in the result and
// also copied to cmd.Stdout and cmd.Stderr when they are set.
func (r *Runner) Run(ctx context.Context, cmd domain.Command) (domain.CommandResult, error) {
	c, err := command(ctx, cmd)
	if err != nil {
		return domain.CommandResult{}, err
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = tee(&stdout, cmd.Stdout)
	c.Stderr = tee(&stderr, cmd.Stderr)
	c.Stdin = cmd.Stdin

	r.logger.Debug("running " + cmd.String())

	err = c.Run()
	result := domain.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr) && ctx.Err() == nil:
		result.ExitCode = exitErr.ExitCode()
	case ctx.Err() != nil:
		return result, zerr.With(zerr.Wrap(ctx.Err(), "command interrupted"), "command", cmd.String())
	default:
		return result, zerr.With(zerr.Wrap(err, "failed to run command"), "command", cmd.String())
	}

	return result, nil
}

// command builds the exec.Cmd for cmd, resolving the program against the PATH of
// cmd.Env when an environment is given.
func command(ctx context.Context, cmd domain.Command) (*exec.Cmd, error) {
	if cmd.Name == "" {
		return nil, domain.ErrEmptyCommand
	}

	executable := cmd.Name
	if cmd.Env != nil && !filepath.IsAbs(cmd.Name) && !strings.ContainsRune(cmd.Name, filepath.Separator) {
		if lp, err := lookPath(cmd.Name, cmd.Env); err == nil {
			executable = lp
		}
	}

	c := exec.CommandContext(ctx, executable, cmd.Args...) //nolint:gosec // commands are built by the engine
	if len(c.Args) > 0 {
		c.Args[0] = cmd.Name
	}
	c.Env = cmd.Env
	c.Dir = cmd.Dir
	return c, nil
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "PATH="); ok {
			path = v
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
