package catalog

import (
	"context"

	"github.com/grindlemire/graft"
	catalogstore "go.trai.ch/nixster/internal/adapters/catalog"
	"go.trai.ch/nixster/internal/adapters/logger"
	"go.trai.ch/nixster/internal/adapters/nix"
	"go.trai.ch/nixster/internal/adapters/telemetry"
	"go.trai.ch/nixster/internal/core/ports"
)

// NodeID is the unique identifier for the catalog refresher Graft node.
const NodeID graft.ID = "engine.catalog"

func init() {
	graft.Register(graft.Node[*Refresher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{nix.NodeID, catalogstore.NodeID, telemetry.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Refresher, error) {
			pm, err := graft.Dep[ports.PackageManager](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.CatalogStore](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[*telemetry.OTelTracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(pm, store, tracer, log), nil
		},
	})
}
