package config

type Config interface {
	EnvConfig
	StorageConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetAPIBaseURL() string
	GetEnv() string
}

type StorageConfig interface {
	GetTokenFile() string
	GetRedisAddr() string
}

type SessionConfig interface {
	GetRequestTimeout() string
	GetClockSkew() string
}

type mainConfig struct {
	EnvVars
	Storage
	Session
}

func New() Config {
	return mainConfig{}
}
