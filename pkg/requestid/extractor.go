package requestid

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/ledgerchat/pkg/logger"
)

// LoggerExtractor adds the request id of the context to log records.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := FromContext(ctx); id != "" {
			return logger.RequestID(id), true
		}
		return slog.Attr{}, false
	}
}
