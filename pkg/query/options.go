package query

import (
	"log/slog"
	"time"
)

// ClientOption configures a Client.
type ClientOption func(*Client)

func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCapacity bounds the number of cached entries. Entries in use are never
// evicted, so the cache may temporarily hold more.
func WithCapacity(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithClock replaces time.Now for staleness checks.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// ObserveOption configures an Observer.
type ObserveOption func(*observeConfig)

type observeConfig struct {
	enabled bool
}

// Enabled is the caller override of the gate. A disabled observer never
// fetches, whatever the store holds. Defaults to true.
func Enabled(enabled bool) ObserveOption {
	return func(c *observeConfig) { c.enabled = enabled }
}
