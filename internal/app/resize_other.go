//go:build windows

package app

import (
	"context"

	"go.trai.ch/nixster/internal/core/domain"
)

// watchResize does nothing: Windows consoles do not signal size changes.
func (t terminal) watchResize(context.Context, func(domain.TerminalSize) error) {}
