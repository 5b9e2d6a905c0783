//go:build !windows

package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.trai.ch/nixster/internal/core/domain"
)

// watchResize forwards size changes of the output terminal until ctx is done.
func (t terminal) watchResize(ctx context.Context, resize func(domain.TerminalSize) error) {
	if t.out == nil {
		return
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			if size, ok := t.size(); ok {
				_ = resize(size)
			}
		}
	}
}
