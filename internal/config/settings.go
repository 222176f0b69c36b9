package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Hardcoded client defaults
const (
	DefaultAPIBaseURL  = "https://www.copracess.live/api/mobile"
	DefaultTokenSkew   = time.Minute
	DefaultHTTPTimeout = 30 * time.Second
)

// Settings are the YAML-configurable client knobs. Durations are kept
// as strings on the wire ("90s", "2m") and parsed with a fallback.
type Settings struct {
	APIBaseURL      string `yaml:"api_base_url"`
	CredentialsPath string `yaml:"credentials_path"`
	TokenSkew       string `yaml:"token_skew"`
	HTTPTimeout     string `yaml:"http_timeout"`
}

var _ ClientConfig = Settings{}

// LoadSettings reads the settings file at path. An empty path, or a
// path that does not exist, yields the defaults.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return s, errors.Wrap(err, "[config.LoadSettings] read settings file")
		}
		if err == nil {
			if err := yaml.Unmarshal(b, &s); err != nil {
				return s, errors.Wrap(err, "[config.LoadSettings] decode settings file")
			}
		}
	}
	return s, nil
}

func (s Settings) GetAPIBaseURL() string {
	if s.APIBaseURL != "" {
		return s.APIBaseURL
	}
	return DefaultAPIBaseURL
}

func (s Settings) GetCredentialsPath() string {
	if s.CredentialsPath != "" {
		return s.CredentialsPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".copracess/credentials.json"
	}
	return filepath.Join(home, ".copracess", "credentials.json")
}

func (s Settings) GetTokenSkew() time.Duration {
	return parseDuration(s.TokenSkew, DefaultTokenSkew)
}

func (s Settings) GetHTTPTimeout() time.Duration {
	return parseDuration(s.HTTPTimeout, DefaultHTTPTimeout)
}

func parseDuration(val string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
