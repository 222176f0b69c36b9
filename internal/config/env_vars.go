package config

import "os"

const (
	appNameVar      = "APP_NAME"
	configPathVar   = "COPRACESS_CONFIG"
	deviceSecretVar = "COPRACESS_DEVICE_SECRET"
)

// defaultDeviceSecret mirrors the app's fallback encryption key: real
// deployments set COPRACESS_DEVICE_SECRET, development builds get a
// stable default so the credential file survives restarts.
const defaultDeviceSecret = "3a7bd3e2360a3d29eea436fcfb7e44c735d117c42d1c1835420b6b9942dd4f1b"

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Copracess")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetConfigPath() string {
	return GetEnv(configPathVar, "")
}

func (EnvVars) GetDeviceSecret() string {
	return GetEnv(deviceSecretVar, defaultDeviceSecret)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
