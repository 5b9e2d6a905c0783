package shell

import (
	"context"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/zerr"
)

// Spawner implements ports.TerminalSpawner with creack/pty.
type Spawner struct{}

// NewSpawner creates a new Spawner.
func NewSpawner() *Spawner {
	return &Spawner{}
}

// Start launches cmd on a new pseudo terminal. The program becomes the leader of a
// new session with the terminal as its controlling terminal.
func (s *Spawner) Start(ctx context.Context, cmd domain.Command, size domain.TerminalSize) (ports.Process, error) {
	c, err := command(ctx, cmd)
	if err != nil {
		return nil, err
	}

	ptmx, err := pty.StartWithSize(c, &pty.Winsize{Rows: size.Rows, Cols: size.Cols})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to start pty"), "command", cmd.String())
	}

	return &ptyProcess{cmd: c, ptmx: ptmx}, nil
}

type ptyProcess struct {
	cmd       *exec.Cmd
	ptmx      *os.File
	closeOnce sync.Once
	closeErr  error
}

func (p *ptyProcess) Read(b []byte) (int, error) {
	return p.ptmx.Read(b)
}

func (p *ptyProcess) Write(b []byte) (int, error) {
	return p.ptmx.Write(b)
}

func (p *ptyProcess) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.ptmx.Close()
	})
	return p.closeErr
}

func (p *ptyProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *ptyProcess) Resize(size domain.TerminalSize) error {
	return pty.Setsize(p.ptmx, &pty.Winsize{Rows: size.Rows, Cols: size.Cols})
}

func (p *ptyProcess) IsForeground() bool {
	pgrp, err := foregroundProcessGroup(p.ptmx)
	if err != nil {
		// Without an answer the top-level program is assumed to own the terminal.
		return true
	}
	return pgrp == p.cmd.Process.Pid
}

func (p *ptyProcess) Kill() error {
	if err := p.cmd.Process.Kill(); err != nil && err != os.ErrProcessDone {
		return zerr.Wrap(err, "failed to kill process")
	}
	return nil
}

func (p *ptyProcess) Wait() error {
	return p.cmd.Wait()
}
