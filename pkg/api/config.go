package api

import (
	"time"

	"github.com/dmitrymomot/ledgerchat/pkg/config"
)

// Config tunes caching and retries of the product queries.
type Config struct {
	UserStaleTime     time.Duration `env:"QUERY_USER_STALE_TIME" envDefault:"5m"`
	ReportsStaleTime  time.Duration `env:"QUERY_REPORTS_STALE_TIME" envDefault:"1m"`
	MessagesStaleTime time.Duration `env:"QUERY_MESSAGES_STALE_TIME" envDefault:"30s"`
	MaxRetries        int           `env:"QUERY_MAX_RETRIES" envDefault:"1"`
	RetryDelay        time.Duration `env:"QUERY_RETRY_DELAY" envDefault:"0s"`
}

func DefaultConfig() Config {
	return Config{
		UserStaleTime:     5 * time.Minute,
		ReportsStaleTime:  time.Minute,
		MessagesStaleTime: 30 * time.Second,
		MaxRetries:        1,
	}
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	err := config.Load(&cfg)
	return cfg, err
}
