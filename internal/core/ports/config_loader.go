package ports

import "go.trai.ch/nixster/internal/core/domain"

// ConfigLoader loads the runtime settings.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load resolves settings from defaults, the optional config file and the process
	// environment.
	Load() (*domain.Settings, error)
}
