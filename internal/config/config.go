package config

import "time"

type Config interface {
	EnvConfig
	ClientConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetConfigPath() string
	GetDeviceSecret() string
}

// ClientConfig covers everything the API and session layers need.
type ClientConfig interface {
	GetAPIBaseURL() string
	GetCredentialsPath() string
	GetTokenSkew() time.Duration
	GetHTTPTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Settings
}

// New loads the configuration: YAML settings from the path named by
// COPRACESS_CONFIG (when the file exists) layered over env vars and
// defaults.
func New() (Config, error) {
	settings, err := LoadSettings(EnvVars{}.GetConfigPath())
	if err != nil {
		return nil, err
	}
	return mainConfig{Settings: settings}, nil
}
