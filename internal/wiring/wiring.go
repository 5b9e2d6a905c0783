// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/nixster/internal/adapters/catalog"
	_ "go.trai.ch/nixster/internal/adapters/config"
	_ "go.trai.ch/nixster/internal/adapters/docker"
	_ "go.trai.ch/nixster/internal/adapters/envfile"
	_ "go.trai.ch/nixster/internal/adapters/logger"
	_ "go.trai.ch/nixster/internal/adapters/nix"
	_ "go.trai.ch/nixster/internal/adapters/shell"
	_ "go.trai.ch/nixster/internal/adapters/telemetry"
	_ "go.trai.ch/nixster/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/nixster/internal/app"
	_ "go.trai.ch/nixster/internal/engine/catalog"
	_ "go.trai.ch/nixster/internal/engine/environment"
	_ "go.trai.ch/nixster/internal/engine/installer"
	_ "go.trai.ch/nixster/internal/engine/resolver"
	_ "go.trai.ch/nixster/internal/engine/session"
)
