package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config carries all runtime settings. Every field has a default, so the
// server runs with no environment at all; the defaults are the canonical
// deployment values.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR, default=:29168"`
	AdminAddr  string `env:"ADMIN_ADDR,  default=:8080"`
	DataPath   string `env:"DATA_PATH,   default=server-data.json"`
	JWTSecret  string `env:"JWT_SECRET,  default=jukebox-dev-secret"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	LogPretty  bool   `env:"LOG_PRETTY,  default=false"`

	AutosaveInterval time.Duration `env:"AUTOSAVE_INTERVAL, default=15s"`
	ReleaseInterval  time.Duration `env:"RELEASE_INTERVAL,  default=25s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return &cfg, nil
}
