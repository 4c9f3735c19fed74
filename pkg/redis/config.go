package redis

import (
	"errors"
	"time"

	"github.com/dmitrymomot/identitykit/pkg/config"
)

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"` // Format: "redis://:password@localhost:6379/0"
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`                      // Connection attempts before giving up
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`                     // Delay between attempts
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`                   // Upper bound for all attempts together
	TokenTTL       time.Duration `env:"REDIS_TOKEN_TTL" envDefault:"0"`                           // Expiry for stored token fields, 0 keeps them forever
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.ConnectionURL == "" {
		return Config{}, ErrEmptyConnectionURL
	}
	if cfg.TokenTTL < 0 {
		return Config{}, errors.Join(config.ErrParsingConfig, errors.New("REDIS_TOKEN_TTL must not be negative"))
	}
	return cfg, nil
}
