package installer

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/nixster/internal/adapters/catalog"
	"go.trai.ch/nixster/internal/adapters/logger"
	"go.trai.ch/nixster/internal/adapters/nix"
	"go.trai.ch/nixster/internal/adapters/telemetry"
	"go.trai.ch/nixster/internal/core/ports"
)

// NodeID is the unique identifier for the installer Graft node.
const NodeID graft.ID = "engine.installer"

func init() {
	graft.Register(graft.Node[*Installer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{catalog.NodeID, nix.NodeID, telemetry.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Installer, error) {
			store, err := graft.Dep[ports.CatalogStore](ctx)
			if err != nil {
				return nil, err
			}

			pm, err := graft.Dep[ports.PackageManager](ctx)
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

			return New(store, pm, tracer, log), nil
		},
	})
}
