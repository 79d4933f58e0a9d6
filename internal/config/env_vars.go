package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar      = "PORT"
	appNameVar      = "APP_NAME"
	authSecretVar   = "AUTH_SECRET"
	serverURLVar    = "SERVER_URL"
	envVar          = "ENV"
	productionValue = "PRODUCTION"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "GRC Session Server")
}

// GetAuthSecret returns the raw signing secret. Length validation happens at
// codec construction, not here, so a bad secret fails loudly at startup.
func (EnvVars) GetAuthSecret() string {
	return GetEnv(authSecretVar, "")
}

// GetServerURL returns the base URL of the external credential backend
// (e.g. "https://api.example.com")
func (EnvVars) GetServerURL() string {
	return GetEnv(serverURLVar, "http://localhost:9000")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(envVar)
	if env == "" {
		return "DEV"
	}
	return env
}

// IsProduction selects production-only behavior such as the Secure cookie flag.
func (e EnvVars) IsProduction() bool {
	return e.GetEnv() == productionValue
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
