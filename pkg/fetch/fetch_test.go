package fetch_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ledgerchat/pkg/fetch"
	"github.com/dmitrymomot/ledgerchat/pkg/logger"
	"github.com/dmitrymomot/ledgerchat/pkg/requestid"
)

type profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func newExecutor(t *testing.T, h http.HandlerFunc, token string) (*fetch.Executor, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := fetch.Config{
		DevRoot:  srv.URL + "/dev/",
		ChatRoot: srv.URL + "/chat",
		Timeout:  time.Second,
	}
	require.NoError(t, cfg.Validate())
	return fetch.New(cfg, func() string { return token }, fetch.WithLogger(logger.Discard())), &hits
}

func TestExecutor_AuthenticatedGet(t *testing.T) {
	var got *http.Request
	exec, _ := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile{ID: "u1", Email: "jane@example.com"})
	}, "tok1")

	p, err := fetch.Call[profile](context.Background(), exec, fetch.Get(fetch.RootChat, "/users/me"), nil)
	require.NoError(t, err)
	assert.Equal(t, profile{ID: "u1", Email: "jane@example.com"}, p)

	require.NotNil(t, got)
	assert.Equal(t, "/chat/users/me", got.URL.Path)
	assert.Equal(t, "Bearer tok1", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.True(t, requestid.Valid(got.Header.Get(requestid.Header)))
}

func TestExecutor_ForwardsRequestID(t *testing.T) {
	var seen string
	exec, _ := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(requestid.Header)
		w.WriteHeader(http.StatusNoContent)
	}, "tok1")

	ctx := requestid.WithContext(context.Background(), "req-42")
	require.NoError(t, exec.Do(ctx, fetch.Get(fetch.RootDev, "/ping"), nil, nil))
	assert.Equal(t, "req-42", seen)
}

func TestExecutor_PathParameters(t *testing.T) {
	var path string
	exec, _ := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`[]`))
	}, "tok1")

	ep := fetch.Get(fetch.RootDev, "/companies/{company_id}/reports")
	_, err := fetch.Call[[]string](context.Background(), exec, ep, map[string]string{"company_id": "acme/eu"})
	require.NoError(t, err)
	assert.Equal(t, "/dev/companies/acme%2Feu/reports", path)

	_, err = fetch.Call[[]string](context.Background(), exec, ep, nil)
	assert.ErrorIs(t, err, fetch.ErrMissingPathParam)
}

func TestExecutor_MissingTokenSendsNothing(t *testing.T) {
	exec, hits := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, "")

	_, err := fetch.Call[profile](context.Background(), exec, fetch.Get(fetch.RootChat, "/users/me"), nil)
	assert.ErrorIs(t, err, fetch.ErrAuthMissing)
	assert.NotErrorIs(t, err, fetch.ErrNetworkFailure)
	assert.Zero(t, hits.Load())
}

func TestExecutor_PublicEndpointSkipsAuth(t *testing.T) {
	var auth string
	exec, _ := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}, "")

	ep := fetch.Endpoint{Root: fetch.RootChat, Path: "health"}
	out, err := fetch.Call[map[string]string](context.Background(), exec, ep, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out["status"])
	assert.Empty(t, auth)
}

func TestExecutor_NonSuccessStatus(t *testing.T) {
	exec, _ := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired\nplease log in", http.StatusUnauthorized)
	}, "tok1")

	_, err := fetch.Call[profile](context.Background(), exec, fetch.Get(fetch.RootChat, "/users/me"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrNetworkFailure)

	var se *fetch.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Equal(t, http.MethodGet, se.Method)
	assert.Equal(t, "token expired please log in", se.Body)
	assert.Contains(t, se.Error(), "status 401")
}

func TestExecutor_TransportFailure(t *testing.T) {
	exec, _ := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}, "tok1")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := exec.Do(ctx, fetch.Get(fetch.RootChat, "/users/me"), nil, nil)
	assert.ErrorIs(t, err, fetch.ErrNetworkFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecutor_DecodeFailure(t *testing.T) {
	exec, _ := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	}, "tok1")

	_, err := fetch.Call[profile](context.Background(), exec, fetch.Get(fetch.RootChat, "/users/me"), nil)
	assert.ErrorIs(t, err, fetch.ErrDecode)
}

func TestExecutor_UnknownRoot(t *testing.T) {
	exec, hits := newExecutor(t, func(http.ResponseWriter, *http.Request) {}, "tok1")

	err := exec.Do(context.Background(), fetch.Get("billing", "/invoices"), nil, nil)
	assert.ErrorIs(t, err, fetch.ErrUnknownRoot)
	assert.Zero(t, hits.Load())
}

func TestEndpoint_URL(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		params  map[string]string
		want    string
		wantErr error
	}{
		{name: "plain", path: "/users/me", want: "https://api.test/v1/users/me"},
		{name: "no leading slash", path: "users/me", want: "https://api.test/v1/users/me"},
		{
			name:   "two placeholders",
			path:   "/companies/{company_id}/threads/{thread_id}/messages",
			params: map[string]string{"company_id": "c1", "thread_id": "t 9"},
			want:   "https://api.test/v1/companies/c1/threads/t%209/messages",
		},
		{name: "missing value", path: "/threads/{thread_id}", wantErr: fetch.ErrMissingPathParam},
		{name: "unterminated", path: "/threads/{thread_id", wantErr: fetch.ErrInvalidRequestInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fetch.Endpoint{Path: tt.path}.URL("https://api.test/v1/", tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig(t *testing.T) {
	t.Run("validate", func(t *testing.T) {
		assert.NoError(t, fetch.Config{DevRoot: "http://localhost:8000", ChatRoot: "https://chat.example.com/api"}.Validate())

		err := fetch.Config{DevRoot: "localhost:8000", ChatRoot: "https://chat.example.com"}.Validate()
		assert.ErrorIs(t, err, fetch.ErrInvalidConfig)
		assert.True(t, strings.Contains(err.Error(), "API_DEV_ROOT"))
	})

	t.Run("load from env", func(t *testing.T) {
		t.Setenv("API_DEV_ROOT", "http://dev.example.com")
		t.Setenv("API_CHAT_ROOT", "http://chat.example.com")
		t.Setenv("API_TIMEOUT", "5s")

		cfg, err := fetch.LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "http://dev.example.com", cfg.DevRoot)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, "ledgerchat/1.0", cfg.UserAgent)
	})
}

func TestExecutor_TokenOverride(t *testing.T) {
	var auth string
	exec, _ := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"id":"u2"}`))
	}, "")

	ctx := fetch.WithToken(context.Background(), "fresh")
	p, err := fetch.Call[profile](ctx, exec, fetch.Get(fetch.RootChat, "/users/me"), nil)
	require.NoError(t, err)
	assert.Equal(t, "u2", p.ID)
	assert.Equal(t, "Bearer fresh", auth)
}
