package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/nixster/internal/adapters/logger"
	"go.trai.ch/nixster/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the command runner Graft node.
	NodeID graft.ID = "adapter.runner"
	// SpawnerNodeID is the unique identifier for the terminal spawner Graft node.
	SpawnerNodeID graft.ID = "adapter.spawner"
)

func init() {
	graft.Register(graft.Node[ports.CommandRunner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.CommandRunner, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewRunner(log), nil
		},
	})

	graft.Register(graft.Node[ports.TerminalSpawner]{
		ID:        SpawnerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{},
		Run: func(_ context.Context) (ports.TerminalSpawner, error) {
			return NewSpawner(), nil
		},
	})
}
