package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// APIBaseURL is the ProjectHub backend this client talks to.
	APIBaseURL string `env:"PROJECTHUB_API_URL, default=http://localhost:8080"`
	LogLevel   string `env:"PROJECTHUB_LOG_LEVEL, default=info"`

	// SessionBackend selects where the (credential, identity) pair persists:
	// "file" (default) or "redis".
	SessionBackend string `env:"PROJECTHUB_SESSION_BACKEND, default=file"`
	SessionDir     string `env:"PROJECTHUB_SESSION_DIR"`

	Redis     RedisConfig
	DevServer DevServerConfig
}

type RedisConfig struct {
	Addr string `env:"PROJECTHUB_REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"PROJECTHUB_REDIS_DB,   default=0"`
}

// DevServerConfig drives the bundled local development backend.
type DevServerConfig struct {
	Port      string `env:"PROJECTHUB_DEV_PORT,       default=8080"`
	JWTSecret string `env:"PROJECTHUB_DEV_JWT_SECRET, default=dev-only-secret"`
	DBPath    string `env:"PROJECTHUB_DEV_DB"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
