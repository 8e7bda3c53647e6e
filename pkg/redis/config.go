package redis

import "time"

// Config of the Redis connection that backs durable flags. An empty
// ConnectionURL means Redis is not used.
type Config struct {
	ConnectionURL  string        `env:"FLAGS_REDIS_URL"`
	KeyPrefix      string        `env:"FLAGS_REDIS_PREFIX" envDefault:"ledgerchat:flags"`
	RetryAttempts  int           `env:"FLAGS_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"FLAGS_REDIS_RETRY_INTERVAL" envDefault:"1s"`
	ConnectTimeout time.Duration `env:"FLAGS_REDIS_CONNECT_TIMEOUT" envDefault:"10s"`
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool {
	return c.ConnectionURL != ""
}
