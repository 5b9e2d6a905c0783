package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/nixster/internal/adapters/catalog"   //nolint:depguard // Wired in app layer
	"go.trai.ch/nixster/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/nixster/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/nixster/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/nixster/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	refresh "go.trai.ch/nixster/internal/engine/catalog"
	"go.trai.ch/nixster/internal/engine/environment"
	"go.trai.ch/nixster/internal/engine/resolver"
	"go.trai.ch/nixster/internal/engine/session"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.SettingsNodeID,
			environment.NodeID,
			resolver.NodeID,
			refresh.NodeID,
			catalog.NodeID,
			session.NodeID,
			watcher.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			telemetry.NodeID,
			catalog.NodeID,
			watcher.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	settings, err := graft.Dep[*domain.Settings](ctx)
	if err != nil {
		return nil, err
	}

	envs, err := graft.Dep[*environment.Service](ctx)
	if err != nil {
		return nil, err
	}

	res, err := graft.Dep[*resolver.Resolver](ctx)
	if err != nil {
		return nil, err
	}

	refresher, err := graft.Dep[*refresh.Refresher](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.CatalogStore](ctx)
	if err != nil {
		return nil, err
	}

	sessions, err := graft.Dep[*session.Manager](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(settings, envs, res, refresher, store, sessions, w, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[*telemetry.OTelTracer](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.CatalogStore](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:     app,
		Logger:  log,
		Tracer:  tracer,
		Catalog: store,
		Watcher: w,
	}, nil
}
