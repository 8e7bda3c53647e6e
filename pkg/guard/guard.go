package guard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/ledgerchat/pkg/cookie"
	"github.com/dmitrymomot/ledgerchat/pkg/logger"
	"github.com/dmitrymomot/ledgerchat/pkg/mirror"
	"github.com/dmitrymomot/ledgerchat/pkg/requestid"
)

// ReaderFunc returns the flag reader for one request.
type ReaderFunc func(r *http.Request) mirror.FlagReader

// Cookies reads flags from the request cookies.
func Cookies(m *cookie.Manager, opts ...mirror.CookieOption) ReaderFunc {
	return func(r *http.Request) mirror.FlagReader {
		return mirror.NewCookieFlags(m, nil, r, opts...)
	}
}

// Shared uses one reader for every request, such as Redis flags of a device.
func Shared(reader mirror.FlagReader) ReaderFunc {
	return func(*http.Request) mirror.FlagReader { return reader }
}

type options struct {
	logger *slog.Logger
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// RequireSession lets a request through only when the auth_token flag is
// present. Guarded requests always carry a request id. Otherwise it redirects, or answers 401 when redirect is empty.
func RequireSession(reader ReaderFunc, redirect string, opts ...Option) func(http.Handler) http.Handler {
	return protect(reader, redirect, http.StatusUnauthorized, opts, func(ctx context.Context, r mirror.FlagReader) (bool, error) {
		return mirror.SessionActive(ctx, r)
	})
}

// RequireCompany lets a request through only when both flags are present.
// Otherwise it redirects, or answers 403 when redirect is empty.
func RequireCompany(reader ReaderFunc, redirect string, opts ...Option) func(http.Handler) http.Handler {
	return protect(reader, redirect, http.StatusForbidden, opts, func(ctx context.Context, r mirror.FlagReader) (bool, error) {
		ok, err := mirror.SessionActive(ctx, r)
		if err != nil || !ok {
			return false, err
		}
		return mirror.CompanySelected(ctx, r)
	})
}

func protect(
	reader ReaderFunc,
	redirect string,
	status int,
	opts []Option,
	check func(context.Context, mirror.FlagReader) (bool, error),
) func(http.Handler) http.Handler {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := check(r.Context(), reader(r))
			if err != nil {
				o.logger.ErrorContext(r.Context(), "durable flag read failed",
					logger.Component("guard"),
					logger.Error(err),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			o.logger.DebugContext(r.Context(), "request blocked by guard",
				logger.Component("guard"),
				slog.String("path", r.URL.Path),
				logger.StatusCode(status),
			)
			if redirect != "" {
				http.Redirect(w, r, redirect, http.StatusSeeOther)
				return
			}
			http.Error(w, http.StatusText(status), status)
		}))
	}
}
