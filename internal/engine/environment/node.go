package environment

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/nixster/internal/adapters/config"
	"go.trai.ch/nixster/internal/adapters/envfile"
	"go.trai.ch/nixster/internal/adapters/logger"
	"go.trai.ch/nixster/internal/adapters/nix"
	"go.trai.ch/nixster/internal/adapters/telemetry"
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/nixster/internal/engine/installer"
	"go.trai.ch/nixster/internal/engine/resolver"
)

// NodeID is the unique identifier for the environment service Graft node.
const NodeID graft.ID = "engine.environment"

func init() {
	graft.Register(graft.Node[*Service]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			envfile.NodeID,
			nix.NodeID,
			resolver.NodeID,
			installer.NodeID,
			telemetry.NodeID,
			logger.NodeID,
			config.SettingsNodeID,
		},
		Run: func(ctx context.Context) (*Service, error) {
			envs, err := graft.Dep[ports.EnvironmentStore](ctx)
			if err != nil {
				return nil, err
			}

			pm, err := graft.Dep[ports.PackageManager](ctx)
			if err != nil {
				return nil, err
			}

			res, err := graft.Dep[*resolver.Resolver](ctx)
			if err != nil {
				return nil, err
			}

			inst, err := graft.Dep[*installer.Installer](ctx)
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

			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}

			return New(envs, pm, res, inst, tracer, log, settings.Profiles), nil
		},
	})
}
