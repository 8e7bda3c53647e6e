package mirror

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/dmitrymomot/ledgerchat/pkg/cookie"
)

// CookieFlags stores flags as browser cookies for one request/response pair.
// Cookies use the manager defaults (path "/", no MaxAge), so they live for the
// browser session. Writes made during the request are visible to later reads
// of the same CookieFlags.
type CookieFlags struct {
	manager *cookie.Manager
	w       http.ResponseWriter
	r       *http.Request
	signed  bool

	mu      sync.Mutex
	pending map[string]*string // nil value = cleared in this response
}

// CookieOption configures CookieFlags.
type CookieOption func(*CookieFlags)

// WithSignedValues signs flag values; a cookie with a bad signature reads as
// absent. Requires a manager with at least one secret.
func WithSignedValues() CookieOption {
	return func(c *CookieFlags) { c.signed = true }
}

// NewCookieFlags binds flags to a request and its response writer. Either may
// be nil: a nil request reads nothing, a nil writer refuses writes.
func NewCookieFlags(m *cookie.Manager, w http.ResponseWriter, r *http.Request, opts ...CookieOption) *CookieFlags {
	c := &CookieFlags{manager: m, w: w, r: r, pending: make(map[string]*string)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CookieFlags) WriteFlag(_ context.Context, name, value string) error {
	if c.w == nil {
		return ErrNoResponse
	}
	if c.signed {
		if err := c.manager.SetSigned(c.w, name, value); err != nil {
			return err
		}
	} else {
		c.manager.Set(c.w, name, value)
	}

	c.mu.Lock()
	c.pending[name] = &value
	c.mu.Unlock()
	return nil
}

func (c *CookieFlags) ClearFlag(_ context.Context, name string) error {
	if c.w == nil {
		return ErrNoResponse
	}
	c.manager.Delete(c.w, name)

	c.mu.Lock()
	c.pending[name] = nil
	c.mu.Unlock()
	return nil
}

func (c *CookieFlags) ReadFlag(_ context.Context, name string) (string, bool, error) {
	c.mu.Lock()
	v, touched := c.pending[name]
	c.mu.Unlock()
	if touched {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}

	if c.r == nil {
		return "", false, nil
	}

	var (
		value string
		err   error
	)
	if c.signed {
		value, err = c.manager.GetSigned(c.r, name)
	} else {
		value, err = c.manager.Get(c.r, name)
	}
	switch {
	case err == nil:
		return value, true, nil
	case errors.Is(err, cookie.ErrCookieNotFound),
		errors.Is(err, cookie.ErrInvalidSignature),
		errors.Is(err, cookie.ErrInvalidFormat):
		return "", false, nil
	default:
		return "", false, err
	}
}
