package logger

import (
	"fmt"
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// Empty ids produce an empty Attr.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// CompanyID records the selected company under the key "company_id".
// Empty ids produce an empty Attr.
func CompanyID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("company_id", id)
}

// Action records a store action name under the key "action".
func Action(name string) slog.Attr {
	return slog.String("action", name)
}

// Version records a store state version under the key "version".
func Version(v uint64) slog.Attr {
	return slog.Uint64("version", v)
}

// Flag records a durable flag name under the key "flag".
func Flag(name string) slog.Attr {
	return slog.String("flag", name)
}

// Operation records a query operation under the key "operation".
func Operation(name string) slog.Attr {
	return slog.String("operation", name)
}

// QueryKey records a cache key under the key "query_key".
// Accepts any fmt.Stringer so callers don't need to format keys themselves.
func QueryKey(key fmt.Stringer) slog.Attr {
	if key == nil {
		return slog.Attr{}
	}
	return slog.String("query_key", key.String())
}

// Status records an entry status under the key "status".
func Status(s fmt.Stringer) slog.Attr {
	if s == nil {
		return slog.Attr{}
	}
	return slog.String("status", s.String())
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Attempt records a 1-based attempt number under the key "attempt".
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// RetryCount records the retry count under the key "retry_count".
func RetryCount(count int) slog.Attr {
	return slog.Int("retry_count", count)
}

// StatusCode records an HTTP status code under the key "status_code".
func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
