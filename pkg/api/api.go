package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dmitrymomot/ledgerchat/pkg/fetch"
	"github.com/dmitrymomot/ledgerchat/pkg/query"
	"github.com/dmitrymomot/ledgerchat/pkg/selector"
	"github.com/dmitrymomot/ledgerchat/pkg/store"
)

// Operation names, the first half of every cache key.
const (
	OpUsersMe        = "users.me"
	OpCompanyReports = "companies.reports"
	OpThreadMessages = "threads.messages"
)

var (
	UsersMe        = fetch.Get(fetch.RootChat, "/users/me")
	CompanyReports = fetch.Get(fetch.RootDev, "/companies/{company_id}/reports")
	ThreadMessages = fetch.Get(fetch.RootChat, "/threads/{thread_id}/messages")
)

// NewExecutor builds an executor that authenticates with the token held by s.
func NewExecutor(cfg fetch.Config, s *store.Store, opts ...fetch.Option) *fetch.Executor {
	return fetch.New(cfg, func() string { return selector.Token(s.State()) }, opts...)
}

// Service exposes the product operations of one session.
type Service struct {
	cfg     Config
	store   *store.Store
	queries *query.Client
	exec    *fetch.Executor

	user    *query.Query[SessionParams, *store.User]
	reports *query.Query[CompanyParams, []Report]
}

func New(cfg Config, s *store.Store, queries *query.Client, exec *fetch.Executor) *Service {
	a := &Service{cfg: cfg, store: s, queries: queries, exec: exec}

	a.user = query.New(queries, s, query.Definition[SessionParams, *store.User]{
		Operation:  OpUsersMe,
		Params:     sessionParams,
		Fetch:      a.fetchUser,
		StaleTime:  cfg.UserStaleTime,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	})
	a.reports = query.New(queries, s, query.Definition[CompanyParams, []Report]{
		Operation:  OpCompanyReports,
		Params:     companyParams,
		Fetch:      a.fetchReports,
		StaleTime:  cfg.ReportsStaleTime,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	})
	return a
}

// User is the GET {chat}/users/me query.
func (a *Service) User() *query.Query[SessionParams, *store.User] {
	return a.user
}

// Reports is the GET {dev}/companies/{company_id}/reports query for the
// selected company.
func (a *Service) Reports() *query.Query[CompanyParams, []Report] {
	return a.reports
}

// ThreadMessages is the GET {chat}/threads/{thread_id}/messages query. It is
// disabled while threadID is empty or no company is selected.
func (a *Service) ThreadMessages(threadID string) *query.Query[ThreadParams, []Message] {
	return query.New(a.queries, a.store, query.Definition[ThreadParams, []Message]{
		Operation: OpThreadMessages,
		Params: func(st *store.State) (ThreadParams, error) {
			p, err := companyParams(st)
			if err != nil {
				return ThreadParams{}, err
			}
			if threadID == "" {
				return ThreadParams{}, fmt.Errorf("%w: thread_id", query.ErrParameterMissing)
			}
			return ThreadParams{CompanyID: p.CompanyID, ThreadID: threadID}, nil
		},
		Fetch: func(ctx context.Context, p ThreadParams) ([]Message, error) {
			return fetch.Call[[]Message](ctx, a.exec, ThreadMessages, map[string]string{"thread_id": p.ThreadID})
		},
		StaleTime:  a.cfg.MessagesStaleTime,
		MaxRetries: a.cfg.MaxRetries,
		RetryDelay: a.cfg.RetryDelay,
	})
}

// CurrentSession returns the session view of the current snapshot.
func (a *Service) CurrentSession() *selector.SessionView {
	return selector.Session(a.store.State())
}

// CurrentSelectedCompany returns the selected company or nil.
func (a *Service) CurrentSelectedCompany() *store.Company {
	return selector.SelectedCompany(a.store.State())
}

// SignIn loads the profile that belongs to token and starts the session.
func (a *Service) SignIn(ctx context.Context, token string) (*store.User, error) {
	if token == "" {
		return nil, store.ErrTokenRequired
	}
	user, err := fetch.Call[*store.User](fetch.WithToken(ctx, token), a.exec, UsersMe, nil)
	if err != nil {
		return nil, err
	}
	if err := a.store.Dispatch(ctx, store.SetUserData{User: user, Token: token}); err != nil {
		return nil, err
	}
	return user, nil
}

// RefreshProfile refetches users/me and stores the new profile. A selected
// company that is no longer listed gets deselected by the store.
func (a *Service) RefreshProfile(ctx context.Context) (*store.User, error) {
	obs := a.user.Observe()
	defer obs.Close()

	obs.Refetch(ctx)
	res, err := obs.Wait(ctx)
	if err != nil {
		return nil, err
	}
	switch {
	case !res.Enabled:
		return nil, res.Disabled
	case res.Status == query.StatusError:
		return nil, res.Err
	}

	if err := a.store.Dispatch(ctx, store.UpdateUser{User: res.Data}); err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (a *Service) fetchUser(ctx context.Context, _ SessionParams) (*store.User, error) {
	return fetch.Call[*store.User](ctx, a.exec, UsersMe, nil)
}

func (a *Service) fetchReports(ctx context.Context, p CompanyParams) ([]Report, error) {
	return fetch.Call[[]Report](ctx, a.exec, CompanyReports, map[string]string{"company_id": p.CompanyID})
}

func sessionParams(st *store.State) (SessionParams, error) {
	token := selector.Token(st)
	if token == "" {
		return SessionParams{}, query.ErrAuthMissing
	}
	sum := sha256.Sum256([]byte(token))
	return SessionParams{Session: hex.EncodeToString(sum[:8])}, nil
}

func companyParams(st *store.State) (CompanyParams, error) {
	if selector.Token(st) == "" {
		return CompanyParams{}, query.ErrAuthMissing
	}
	id := selector.CompanyID(st)
	if id == "" {
		return CompanyParams{}, fmt.Errorf("%w: company_id", query.ErrParameterMissing)
	}
	return CompanyParams{CompanyID: id}, nil
}
