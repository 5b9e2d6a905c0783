// Package config loads the runtime settings with viper.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/zerr"
)

// EnvPrefix prefixes every environment variable override, e.g. NIXSTER_HOME.
const EnvPrefix = "NIXSTER"

// Loader implements ports.ConfigLoader.
//
// Settings are resolved from, in increasing precedence, the built-in defaults,
// <home>/config.yaml and NIXSTER_* environment variables. JWT_SECRET is accepted
// for serve.secret.
type Loader struct {
	// Home overrides the home directory default when set.
	Home string
}

// NewLoader creates a Loader using the default home directory.
func NewLoader() *Loader {
	return &Loader{}
}

// Load resolves the settings.
func (l *Loader) Load() (*domain.Settings, error) {
	v := viper.New()

	home := l.Home
	if home == "" {
		home = domain.DefaultHome()
	}

	v.SetDefault("home", home)
	v.SetDefault("profiles", domain.DefaultProfilesDir)
	v.SetDefault("database", "")
	v.SetDefault("channels", domain.DefaultChannels)
	v.SetDefault("default_environment", domain.DefaultEnvironmentName)
	v.SetDefault("search_limit", domain.DefaultSearchLimit)
	v.SetDefault("docker.binary", "docker")
	v.SetDefault("docker.image", "alpine")
	v.SetDefault("serve.address", "")
	v.SetDefault("serve.port", 3000)
	v.SetDefault("serve.development", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("serve.secret", EnvPrefix+"_SERVE_SECRET", "JWT_SECRET"); err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigLoadFailed.Error())
	}

	path := filepath.Join(v.GetString("home"), domain.ConfigFileName+".yaml")
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigLoadFailed.Error()), "path", path)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigLoadFailed.Error()), "path", path)
	}

	var settings domain.Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigLoadFailed.Error())
	}

	if settings.Database == "" {
		settings.Database = filepath.Join(settings.Home, domain.DatabaseFileName)
	}
	if settings.SearchLimit <= 0 {
		settings.SearchLimit = domain.DefaultSearchLimit
	}

	return &settings, nil
}
