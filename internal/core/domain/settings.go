package domain

// Settings is the resolved runtime configuration.
type Settings struct {
	Home               string         `mapstructure:"home"`
	Profiles           string         `mapstructure:"profiles"`
	Database           string         `mapstructure:"database"`
	Channels           []string       `mapstructure:"channels"`
	DefaultEnvironment string         `mapstructure:"default_environment"`
	SearchLimit        int            `mapstructure:"search_limit"`
	Docker             DockerSettings `mapstructure:"docker"`
	Serve              ServeSettings  `mapstructure:"serve"`
}

// DockerSettings configures the container runtime.
type DockerSettings struct {
	Binary string `mapstructure:"binary"`
	Image  string `mapstructure:"image"`
}

// ServeSettings configures the network server.
type ServeSettings struct {
	Address     string `mapstructure:"address"`
	Port        int    `mapstructure:"port"`
	Secret      string `mapstructure:"secret"`
	Development bool   `mapstructure:"development"`
}

// DevelopmentSecret signs tokens when the server runs in development mode without a secret.
const DevelopmentSecret = "not-a-secret"

// TokenSecret returns the signing secret for the server.
func (s ServeSettings) TokenSecret() (string, error) {
	if s.Secret != "" {
		return s.Secret, nil
	}
	if s.Development {
		return DevelopmentSecret, nil
	}
	return "", ErrMissingSecret
}

// EnvsDir returns the directory holding environment specs.
func (s Settings) EnvsDir() string {
	return EnvsDir(s.Home)
}
