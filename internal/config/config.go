package config

import "time"

type Config interface {
	EnvConfig
	TokenConfig
	CookieConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetAPIURL() string
	GetDashboardURL() string
	GetAPITimeout() time.Duration
	GetLocalStoreKey() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Tokens
	Cookies
}

func New() Config {
	return mainConfig{}
}
