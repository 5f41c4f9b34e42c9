package config

import (
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	ClientConfig
	PagingConfig
	MockConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetSessionFile() string
}

type mainConfig struct {
	EnvVars
	Client
	Paging
	Mock
}

// New loads an optional .env file from the working directory and returns
// a Config reading from the environment.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}

// NewFromFiles is New with explicit dotenv files. Missing files are an error.
func NewFromFiles(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		return nil, err
	}
	return mainConfig{}, nil
}
