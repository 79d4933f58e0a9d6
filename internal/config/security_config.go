package config

import "time"

type SecurityConfig interface {
	GetSessionTTL() time.Duration
	GetClockSkewLeeway() time.Duration
	GetTokenIssuer() string
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetSessionTTL() time.Duration {
	return 1 * time.Hour // Tokens and cookies expire together
}

func (Security) GetClockSkewLeeway() time.Duration {
	return 15 * time.Second
}

func (Security) GetTokenIssuer() string {
	return GetEnv("TOKEN_ISSUER", "")
}
