package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	DBPath     string `env:"SELENE_DB_PATH" envDefault:"data/selene.db"`
	SecretFile string `env:"SELENE_SECRET_FILE" envDefault:"data/selene.key"`

	RemoteURL   string        `env:"SELENE_REMOTE_URL" envDefault:"http://localhost:8080"`
	HTTPTimeout time.Duration `env:"SELENE_HTTP_TIMEOUT" envDefault:"30s"`
	QuietPeriod time.Duration `env:"SELENE_SYNC_QUIET_PERIOD" envDefault:"2s"`

	// SecretKey signs and verifies session tokens; client and server
	// must share it.
	SecretKey string `env:"SELENE_SECRET_KEY" envDefault:"change_me_in_production"`

	Port    string `env:"SELENE_PORT" envDefault:"8080"`
	LogFile string `env:"SELENE_LOG_FILE"`
	Debug   bool   `env:"SELENE_DEBUG"`
}

func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
