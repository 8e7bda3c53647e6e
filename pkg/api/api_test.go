package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ledgerchat/pkg/api"
	"github.com/dmitrymomot/ledgerchat/pkg/fetch"
	"github.com/dmitrymomot/ledgerchat/pkg/logger"
	"github.com/dmitrymomot/ledgerchat/pkg/mirror"
	"github.com/dmitrymomot/ledgerchat/pkg/query"
	"github.com/dmitrymomot/ledgerchat/pkg/store"
)

// backend is a fake of the dev and chat APIs.
type backend struct {
	mu          sync.Mutex
	user        store.User
	reportsCode int
	release     chan struct{}
	auth        []string

	userHits    atomic.Int32
	reportHits  atomic.Int32
	messageHits atomic.Int32
}

func (b *backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			b.auth = append(b.auth, r.Header.Get("Authorization"))
			b.mu.Unlock()
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/chat/users/me", func(w http.ResponseWriter, r *http.Request) {
		b.userHits.Add(1)
		b.mu.Lock()
		user := b.user
		b.mu.Unlock()
		writeJSON(w, user)
	})
	r.Get("/dev/companies/{companyID}/reports", func(w http.ResponseWriter, r *http.Request) {
		b.reportHits.Add(1)
		if b.release != nil {
			<-b.release
		}
		if b.reportsCode != 0 {
			http.Error(w, "upstream unavailable", b.reportsCode)
			return
		}
		id := chi.URLParam(r, "companyID")
		writeJSON(w, []api.Report{{ID: "r1", CompanyID: id, Title: "Q1 close"}})
	})
	r.Get("/chat/threads/{threadID}/messages", func(w http.ResponseWriter, r *http.Request) {
		b.messageHits.Add(1)
		writeJSON(w, []api.Message{{ID: "m1", ThreadID: chi.URLParam(r, "threadID"), Body: "hi"}})
	})
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type env struct {
	store   *store.Store
	flags   *mirror.MemoryFlags
	queries *query.Client
	svc     *api.Service
}

func newEnv(t *testing.T, b *backend) *env {
	t.Helper()
	if b.user.ID == "" {
		b.user = store.User{
			ID:        "u1",
			Email:     "jane@example.com",
			Companies: []store.Company{{ID: "c1", Name: "Acme"}, {ID: "c2", Name: "Globex"}},
		}
	}
	srv := httptest.NewServer(b.routes())
	t.Cleanup(srv.Close)

	flags := mirror.NewMemoryFlags()
	m := mirror.New(flags, mirror.WithLogger(logger.Discard()))
	s := store.New(store.WithLogger(logger.Discard()), store.WithHook(m.Hook()))
	queries := query.NewClient(query.WithLogger(logger.Discard()))
	queries.ResetOnLogout(s)
	t.Cleanup(func() {
		_ = queries.Close()
		_ = s.Close()
	})

	exec := api.NewExecutor(fetch.Config{
		DevRoot:  srv.URL + "/dev",
		ChatRoot: srv.URL + "/chat",
		Timeout:  2 * time.Second,
	}, s, fetch.WithLogger(logger.Discard()))

	return &env{store: s, flags: flags, queries: queries, svc: api.New(api.DefaultConfig(), s, queries, exec)}
}

func (e *env) signIn(t *testing.T, companyID string) {
	t.Helper()
	ctx := context.Background()
	_, err := e.svc.SignIn(ctx, "tok1")
	require.NoError(t, err)
	if companyID != "" {
		require.NoError(t, e.store.Dispatch(ctx, store.SelectCompany{CompanyID: companyID}))
	}
}

func TestUserQuery_WithoutToken(t *testing.T) {
	b := &backend{}
	e := newEnv(t, b)

	obs := e.svc.User().Observe()
	defer obs.Close()

	res, err := obs.Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Enabled)
	assert.ErrorIs(t, res.Disabled, query.ErrAuthMissing)
	assert.Nil(t, res.Data)
	assert.Zero(t, b.userHits.Load())
}

func TestUserQuery_KeyedBySession(t *testing.T) {
	ctx := context.Background()
	b := &backend{user: store.User{ID: "u1", Email: "jane@example.com"}}
	srv := httptest.NewServer(b.routes())
	t.Cleanup(srv.Close)

	s := store.New(store.WithLogger(logger.Discard()))
	queries := query.NewClient(query.WithLogger(logger.Discard()))
	t.Cleanup(func() {
		_ = queries.Close()
		_ = s.Close()
	})
	exec := api.NewExecutor(fetch.Config{
		DevRoot:  srv.URL + "/dev",
		ChatRoot: srv.URL + "/chat",
		Timeout:  2 * time.Second,
	}, s, fetch.WithLogger(logger.Discard()))
	svc := api.New(api.DefaultConfig(), s, queries, exec)

	first := b.user
	require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: &first, Token: "tok1"}))
	key1, _, err := svc.User().Key(s.State())
	require.NoError(t, err)
	assert.NotContains(t, key1.Params, "tok1")

	obs := svc.User().Observe()
	defer obs.Close()
	res, err := obs.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, "u1", res.Data.ID)

	b.mu.Lock()
	b.user = store.User{ID: "u2", Email: "john@example.com"}
	second := b.user
	b.mu.Unlock()
	require.NoError(t, s.Dispatch(ctx, store.SetUserData{User: &second, Token: "tok2"}))
	key2, _, err := svc.User().Key(s.State())
	require.NoError(t, err)
	assert.NotEqual(t, key1, key2)

	res, err = obs.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u2", res.Data.ID)
	assert.Equal(t, int32(2), b.userHits.Load())

	b.mu.Lock()
	assert.Equal(t, []string{"Bearer tok1", "Bearer tok2"}, b.auth)
	b.mu.Unlock()
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	b := &backend{}
	e := newEnv(t, b)

	user, err := e.svc.SignIn(ctx, "tok1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	session := e.svc.CurrentSession()
	assert.Equal(t, "tok1", session.Token)
	assert.Equal(t, "Bearer tok1", session.FullToken)
	assert.Equal(t, "jane@example.com", session.User.Email)
	assert.Nil(t, e.svc.CurrentSelectedCompany())

	active, err := mirror.SessionActive(ctx, e.flags)
	require.NoError(t, err)
	assert.True(t, active)

	b.mu.Lock()
	assert.Equal(t, []string{"Bearer tok1"}, b.auth)
	b.mu.Unlock()

	_, err = e.svc.SignIn(ctx, "")
	assert.ErrorIs(t, err, store.ErrTokenRequired)
}

func TestReportsQuery(t *testing.T) {
	ctx := context.Background()
	b := &backend{}
	e := newEnv(t, b)
	e.signIn(t, "")

	obs := e.svc.Reports().Observe()
	defer obs.Close()

	res := obs.Evaluate(ctx)
	assert.False(t, res.Enabled)
	assert.ErrorIs(t, res.Disabled, query.ErrParameterMissing)
	assert.Zero(t, b.reportHits.Load())

	require.NoError(t, e.store.Dispatch(ctx, store.SelectCompany{CompanyID: "c2"}))
	res, err := obs.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, query.StatusSuccess, res.Status)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "c2", res.Data[0].CompanyID)
	assert.Equal(t, api.OpCompanyReports, res.Key.Operation)
	assert.Equal(t, `{"company_id":"c2"}`, res.Key.Params)
	assert.Equal(t, "Globex", e.svc.CurrentSelectedCompany().Name)
}

func TestReportsQuery_SharedByConcurrentConsumers(t *testing.T) {
	ctx := context.Background()
	b := &backend{release: make(chan struct{})}
	e := newEnv(t, b)
	e.signIn(t, "c1")

	first := e.svc.Reports().Observe()
	defer first.Close()
	second := e.svc.Reports().Observe()
	defer second.Close()

	assert.Equal(t, query.StatusPending, first.Evaluate(ctx).Status)
	assert.Equal(t, query.StatusPending, second.Evaluate(ctx).Status)
	close(b.release)

	r1, err := first.Wait(ctx)
	require.NoError(t, err)
	r2, err := second.Wait(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(1), b.reportHits.Load())
	require.Len(t, r1.Data, 1)
	assert.Equal(t, r1.Data, r2.Data)
}

func TestReportsQuery_FailureIsBounded(t *testing.T) {
	ctx := context.Background()
	b := &backend{reportsCode: http.StatusBadGateway}
	e := newEnv(t, b)
	e.signIn(t, "c1")

	obs := e.svc.Reports().Observe()
	defer obs.Close()

	res, err := obs.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, query.StatusError, res.Status)
	assert.ErrorIs(t, res.Err, fetch.ErrNetworkFailure)
	assert.Equal(t, int32(2), b.reportHits.Load())

	obs.Evaluate(ctx)
	assert.Equal(t, int32(2), b.reportHits.Load())
}

func TestThreadMessagesQuery(t *testing.T) {
	ctx := context.Background()
	b := &backend{}
	e := newEnv(t, b)
	e.signIn(t, "c1")

	missing := e.svc.ThreadMessages("").Observe()
	defer missing.Close()
	res := missing.Evaluate(ctx)
	assert.False(t, res.Enabled)
	assert.ErrorIs(t, res.Disabled, query.ErrParameterMissing)

	obs := e.svc.ThreadMessages("t-7").Observe()
	defer obs.Close()
	msgs, err := obs.Wait(ctx)
	require.NoError(t, err)
	require.Len(t, msgs.Data, 1)
	assert.Equal(t, "t-7", msgs.Data[0].ThreadID)
	assert.Equal(t, int32(1), b.messageHits.Load())
}

func TestRefreshProfile(t *testing.T) {
	ctx := context.Background()
	b := &backend{}
	e := newEnv(t, b)
	e.signIn(t, "c1")

	b.mu.Lock()
	b.user.FullName = "Jane Doe"
	b.user.Companies = b.user.Companies[1:]
	b.mu.Unlock()

	user, err := e.svc.RefreshProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", user.FullName)

	st := e.store.State()
	assert.Equal(t, "Jane Doe", st.User.FullName)
	assert.Equal(t, "tok1", st.Token)
	assert.Nil(t, st.SelectedCompany, "c1 is gone from the profile")

	selected, err := mirror.CompanySelected(ctx, e.flags)
	require.NoError(t, err)
	assert.False(t, selected)
}

func TestRefreshProfile_SignedOut(t *testing.T) {
	e := newEnv(t, &backend{})

	_, err := e.svc.RefreshProfile(context.Background())
	assert.ErrorIs(t, err, query.ErrAuthMissing)
}

func TestLogoutDropsCachedData(t *testing.T) {
	ctx := context.Background()
	b := &backend{}
	e := newEnv(t, b)
	e.signIn(t, "c1")

	obs := e.svc.Reports().Observe()
	defer obs.Close()
	_, err := obs.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, e.queries.Len())

	require.NoError(t, e.store.Dispatch(ctx, store.ClearUser{}))
	assert.Zero(t, e.queries.Len())
	assert.Empty(t, e.flags.Snapshot())

	res := obs.Evaluate(ctx)
	assert.ErrorIs(t, res.Disabled, query.ErrAuthMissing)
	assert.Nil(t, res.Data)
}

func TestConfig(t *testing.T) {
	t.Setenv("QUERY_MAX_RETRIES", "3")
	cfg, err := api.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.ReportsStaleTime)
}
