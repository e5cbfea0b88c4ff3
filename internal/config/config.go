package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Env string

const (
	EnvProd Env = "prod"
	EnvDev  Env = "dev"
)

func (e Env) IsValid() bool {
	switch e {
	case EnvProd, EnvDev:
		return true
	}
	return false
}

type Config struct {
	APIServerHost        string        `env:"API_SERVER_HOST"`
	APIServerPort        string        `env:"API_SERVER_PORT" envDefault:"8080"`
	AllowedOrigins       []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	RedisHost            string        `env:"REDIS_HOST"`
	RedisPort            string        `env:"REDIS_PORT" envDefault:"6379"`
	RedisCommandsChannel string        `env:"REDIS_COMMANDS_CHANNEL" envDefault:"bridge:commands"`
	RedisResultsChannel  string        `env:"REDIS_RESULTS_CHANNEL" envDefault:"bridge:results"`
	RedisEventsChannel   string        `env:"REDIS_EVENTS_CHANNEL" envDefault:"bridge:events"`
	VenueFile            string        `env:"VENUE_FILE" envDefault:"venue.yaml"`
	ReplayInterval       time.Duration `env:"REPLAY_INTERVAL" envDefault:"1s"`
	EventBufferSize      int           `env:"EVENT_BUFFER_SIZE" envDefault:"256"`
	Env                  Env           `env:"ENV" envDefault:"prod"`
}

func New() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.Env.IsValid() {
		return nil, fmt.Errorf("invalid env variable (must be 'prod' or 'dev')")
	}
	if cfg.EventBufferSize <= 0 {
		return nil, errors.New("invalid EVENT_BUFFER_SIZE (must be > 0)")
	}
	if cfg.ReplayInterval <= 0 {
		return nil, errors.New("invalid REPLAY_INTERVAL (must be > 0)")
	}
	return &cfg, nil
}

// RedisEnabled reports whether the Redis transport should run.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}
