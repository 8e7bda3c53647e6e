package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/ledgerchat/pkg/logger"
	"github.com/dmitrymomot/ledgerchat/pkg/requestid"
)

const errorBodyLimit = 64 << 10

// Executor performs API exchanges. Authenticated endpoints get
// "Authorization: Bearer <token>" from the token function.
type Executor struct {
	cfg    Config
	token  TokenFunc
	base   http.RoundTripper
	plain  *http.Client
	authed *http.Client
	logger *slog.Logger
}

// New creates an executor. token is called for every authenticated request.
func New(cfg Config, token TokenFunc, opts ...Option) *Executor {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	base := o.transport
	if base == nil {
		base = &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
	}
	if token == nil {
		token = func() string { return "" }
	}

	return &Executor{
		cfg:    cfg,
		token:  token,
		base:   base,
		plain:  &http.Client{Transport: base},
		authed: &http.Client{Transport: &oauth2.Transport{Source: tokenSource{token: token}, Base: base}},
		logger: o.logger,
	}
}

// Do calls the endpoint and decodes a 2xx JSON body into out, which may be
// nil to discard it.
func (e *Executor) Do(ctx context.Context, ep Endpoint, params map[string]string, out any) error {
	base, err := e.cfg.root(ep.Root)
	if err != nil {
		return err
	}
	target, err := ep.URL(base, params)
	if err != nil {
		return err
	}

	client := e.plain
	if ep.Authenticated {
		switch override := tokenFromContext(ctx); {
		case override != "":
			client = &http.Client{Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: override, TokenType: "Bearer"}),
				Base:   e.base,
			}}
		case e.token() == "":
			return ErrAuthMissing
		default:
			client = e.authed
		}
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, ep.method(), target, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequestInput, err)
	}

	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestid.Header, reqID)
	if e.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", e.cfg.UserAgent)
	}

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		// the token may have been cleared after the check above
		if errors.Is(err, ErrAuthMissing) {
			return ErrAuthMissing
		}
		e.logger.WarnContext(ctx, "api request failed",
			logger.Component("fetch"),
			logger.RequestID(reqID),
			slog.String("method", req.Method),
			slog.String("url", target),
			logger.Duration(elapsed),
			logger.Error(err),
		)
		return fmt.Errorf("%w: %s %s: %w", ErrNetworkFailure, req.Method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	e.logger.DebugContext(ctx, "api request completed",
		logger.Component("fetch"),
		logger.RequestID(reqID),
		slog.String("method", req.Method),
		slog.String("url", target),
		logger.StatusCode(resp.StatusCode),
		logger.Duration(elapsed),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return &StatusError{Method: req.Method, URL: target, Code: resp.StatusCode, Body: sanitize(body)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var r io.Reader = resp.Body
	if e.cfg.MaxBodySize > 0 {
		r = io.LimitReader(resp.Body, e.cfg.MaxBodySize)
	}
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrDecode, req.Method, target, err)
	}
	return nil
}

// Call is Do with a typed result.
func Call[T any](ctx context.Context, e *Executor, ep Endpoint, params map[string]string) (T, error) {
	var out T
	if err := e.Do(ctx, ep, params, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func sanitize(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
