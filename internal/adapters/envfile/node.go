package envfile

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/nixster/internal/adapters/config"
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
)

// NodeID is the unique identifier for the environment store Graft node.
const NodeID graft.ID = "adapter.environment_store"

func init() {
	graft.Register(graft.Node[ports.EnvironmentStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID},
		Run: func(ctx context.Context) (ports.EnvironmentStore, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(settings.EnvsDir()), nil
		},
	})
}
