// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/nixster/internal/core/domain"
)

// CommandRunner runs external programs to completion.
//
//go:generate mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type CommandRunner interface {
	// Run executes cmd and waits for it to exit.
	//
	// A non-zero exit status is not an error: it is reported in the result and callers
	// decide with CommandResult.Check. An error means the program could not be started
	// or the context was canceled.
	Run(ctx context.Context, cmd domain.Command) (domain.CommandResult, error)
}
