package selector

import (
	"sync"

	"github.com/dmitrymomot/ledgerchat/pkg/store"
)

// Token returns the current bearer token, or "" when signed out.
func Token(st *store.State) string {
	if st == nil {
		return ""
	}
	return st.Token
}

// User returns the profile held by the snapshot, or nil.
func User(st *store.State) *store.User {
	if st == nil {
		return nil
	}
	return st.User
}

// SelectedCompany returns the selected company held by the snapshot, or nil.
func SelectedCompany(st *store.State) *store.Company {
	if st == nil {
		return nil
	}
	return st.SelectedCompany
}

// CompanyID returns the selected company id, or "" when nothing is selected.
func CompanyID(st *store.State) string {
	if c := SelectedCompany(st); c != nil {
		return c.ID
	}
	return ""
}

// SessionView is the session shape handed to UI-facing callers.
type SessionView struct {
	Token     string
	FullToken string
	User      *store.User
}

// Memo caches a value derived from a snapshot. It recomputes only when it is
// given a different snapshot, so the result pointer stays the same while the
// store does not change. Safe for concurrent use.
type Memo[T any] struct {
	fn func(*store.State) T

	mu    sync.Mutex
	input *store.State
	value T
	set   bool
}

func NewMemo[T any](fn func(*store.State) T) *Memo[T] {
	return &Memo[T]{fn: fn}
}

func (m *Memo[T]) Get(st *store.State) T {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.set && m.input == st {
		return m.value
	}
	m.input, m.value, m.set = st, m.fn(st), true
	return m.value
}

var sessionMemo = NewMemo(func(st *store.State) *SessionView {
	token := Token(st)
	view := &SessionView{Token: token, User: User(st)}
	if token != "" {
		view.FullToken = "Bearer " + token
	}
	return view
})

// Session returns the session view of st. Calls with the same snapshot
// return the same pointer.
func Session(st *store.State) *SessionView {
	return sessionMemo.Get(st)
}
