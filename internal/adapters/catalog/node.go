package catalog

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/nixster/internal/adapters/config"
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
)

// NodeID is the unique identifier for the catalog store Graft node.
const NodeID graft.ID = "adapter.catalog"

func init() {
	graft.Register(graft.Node[ports.CatalogStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID},
		Run: func(ctx context.Context) (ports.CatalogStore, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return Open(ctx, settings.Database)
		},
	})
}
