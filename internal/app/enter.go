package app

import (
	"context"
	"io"
	"os"

	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// EnterOptions configuration for the Enter method.
type EnterOptions struct {
	Command     string
	Platform    string
	Pure        bool
	CPUShares   int
	MemoryLimit string
	Mounts      []string
}

// Enter opens a shell inside an environment on the app's standard streams. A
// terminal on standard input is switched to raw mode for the session and
// restored afterwards.
func (a *App) Enter(ctx context.Context, name string, opts EnterOptions) error {
	sopts := domain.SessionOptions{
		Command:     opts.Command,
		Pure:        opts.Pure,
		CPUShares:   opts.CPUShares,
		MemoryLimit: opts.MemoryLimit,
		Mounts:      opts.Mounts,
	}
	if opts.Platform != "" {
		platform, err := domain.ParsePlatform(opts.Platform)
		if err != nil {
			return err
		}
		sopts.Platform = &platform
	}

	tty := newTerminal(a.stdin, a.stdout)
	if size, ok := tty.size(); ok {
		sopts.Size = size
	}

	s, err := a.sessions.NewSession(name, sopts)
	if err != nil {
		return err
	}

	restore, err := tty.raw()
	if err != nil {
		return err
	}
	defer restore()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go tty.watchResize(ctx, s.Resize)

	return s.Run(ctx, detach(a.stdin), a.stdout, tty.interactive())
}

// detach returns a reader fed from r that can be closed without closing r. A
// blocked read on a terminal does not return when the file is closed.
func detach(r io.Reader) io.Reader {
	pr, pw := io.Pipe()
	go func() {
		_, err := io.Copy(pw, r)
		_ = pw.CloseWithError(err)
	}()
	return pr
}

// terminal holds the standard streams that are terminals.
type terminal struct {
	in  *os.File
	out *os.File
}

func newTerminal(in io.Reader, out io.Writer) terminal {
	var t terminal
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.in = f
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.out = f
	}
	return t
}

// interactive reports whether a person is typing into the session.
func (t terminal) interactive() bool {
	return t.in != nil
}

func (t terminal) size() (domain.TerminalSize, bool) {
	if t.out == nil {
		return domain.TerminalSize{}, false
	}
	cols, rows, err := term.GetSize(int(t.out.Fd()))
	if err != nil || cols <= 0 || rows <= 0 {
		return domain.TerminalSize{}, false
	}
	return domain.TerminalSize{Rows: uint16(rows), Cols: uint16(cols)}, true //nolint:gosec // terminal sizes fit
}

// raw switches the input terminal to raw mode and returns the function that
// restores it.
func (t terminal) raw() (func(), error) {
	if t.in == nil {
		return func() {}, nil
	}
	fd := int(t.in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to put terminal in raw mode")
	}
	return func() { _ = term.Restore(fd, state) }, nil
}
