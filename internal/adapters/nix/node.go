package nix

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/nixster/internal/adapters/logger"
	"go.trai.ch/nixster/internal/adapters/shell"
	"go.trai.ch/nixster/internal/core/ports"
)

// NodeID is the unique identifier for the package manager Graft node.
const NodeID graft.ID = "adapter.nix"

func init() {
	graft.Register(graft.Node[ports.PackageManager]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.PackageManager, error) {
			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewManager(runner, log), nil
		},
	})
}
