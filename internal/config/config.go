package config

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	CookieConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetAuthSecret() string
	GetServerURL() string
	GetEnv() string
	IsProduction() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Cookies
}

func New() Config {
	return mainConfig{}
}
