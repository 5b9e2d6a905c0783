package session

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/nixster/internal/adapters/config"
	"go.trai.ch/nixster/internal/adapters/docker"
	"go.trai.ch/nixster/internal/adapters/envfile"
	"go.trai.ch/nixster/internal/adapters/logger"
	"go.trai.ch/nixster/internal/adapters/nix"
	"go.trai.ch/nixster/internal/adapters/shell"
	"go.trai.ch/nixster/internal/adapters/telemetry"
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
)

// NodeID is the unique identifier for the session manager Graft node.
const NodeID graft.ID = "engine.session"

func init() {
	graft.Register(graft.Node[*Manager]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			envfile.NodeID,
			nix.NodeID,
			docker.NodeID,
			shell.SpawnerNodeID,
			shell.NodeID,
			telemetry.NodeID,
			logger.NodeID,
			config.SettingsNodeID,
		},
		Run: func(ctx context.Context) (*Manager, error) {
			envs, err := graft.Dep[ports.EnvironmentStore](ctx)
			if err != nil {
				return nil, err
			}

			pm, err := graft.Dep[ports.PackageManager](ctx)
			if err != nil {
				return nil, err
			}

			rt, err := graft.Dep[ports.ContainerRuntime](ctx)
			if err != nil {
				return nil, err
			}

			spawner, err := graft.Dep[ports.TerminalSpawner](ctx)
			if err != nil {
				return nil, err
			}

			runner, err := graft.Dep[ports.CommandRunner](ctx)
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

			return New(envs, pm, rt, spawner, runner, tracer, log, settings.Profiles), nil
		},
	})
}
