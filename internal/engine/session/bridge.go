package session

import (
	"bytes"
	"context"
	"io"

	"go.trai.ch/nixster/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// eot is the byte sent by Ctrl+D.
var eot = []byte{0x04}

const inputBufferSize = 32 * 1024

// bridge relays the output of proc to out and in to proc.
//
// It returns once the process has exited and both pumps have stopped. The bridge
// ends when the process output ends, when in ends, when ctx is done, or when EOT
// arrives while the top-level program owns the terminal and interactive is set.
// EOT at the top-level program always kills it. in is closed on the way out when
// it is an io.Closer, so that a blocked read returns.
func bridge(ctx context.Context, proc ports.Process, in io.Reader, out io.Writer, interactive bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		defer cancel()
		// A pty reports the exit of its program as a read error.
		_, _ = io.Copy(out, proc)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		pumpInput(proc, in, interactive)
		return nil
	})

	<-ctx.Done()

	if c, ok := in.(io.Closer); ok {
		_ = c.Close()
	}
	_ = proc.Kill()
	_ = proc.Wait()
	_ = proc.Close()
	return g.Wait()
}

// pumpInput forwards chunks of in to proc until in ends, proc stops accepting
// input, or interactive EOT ends the session.
func pumpInput(proc ports.Process, in io.Reader, interactive bool) {
	buf := make([]byte, inputBufferSize)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if bytes.Equal(chunk, eot) && proc.IsForeground() {
				_ = proc.Kill()
				if interactive {
					return
				}
			} else if _, werr := proc.Write(chunk); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}
