package docker

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/nixster/internal/adapters/config"
	"go.trai.ch/nixster/internal/adapters/shell"
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
)

// NodeID is the unique identifier for the container runtime Graft node.
const NodeID graft.ID = "adapter.docker"

func init() {
	graft.Register(graft.Node[ports.ContainerRuntime]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, config.SettingsNodeID},
		Run: func(ctx context.Context) (ports.ContainerRuntime, error) {
			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return NewHostRuntime(runner, settings.Docker), nil
		},
	})
}
