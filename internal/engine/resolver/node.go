package resolver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/nixster/internal/adapters/catalog"
	"go.trai.ch/nixster/internal/adapters/envfile"
	"go.trai.ch/nixster/internal/core/ports"
)

// NodeID is the unique identifier for the resolver Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{envfile.NodeID, catalog.NodeID},
		Run: func(ctx context.Context) (*Resolver, error) {
			envs, err := graft.Dep[ports.EnvironmentStore](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.CatalogStore](ctx)
			if err != nil {
				return nil, err
			}

			return New(envs, store), nil
		},
	})
}
