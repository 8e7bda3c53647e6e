package fetch

import (
	"log/slog"
	"net/http"
)

type options struct {
	logger    *slog.Logger
	transport http.RoundTripper
}

// Option configures an Executor.
type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTransport replaces the base transport used under the bearer layer.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}
