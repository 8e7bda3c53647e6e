package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/ledgerchat/pkg/broadcast"
	"github.com/dmitrymomot/ledgerchat/pkg/logger"
)

// Change describes one applied transition.
type Change struct {
	Prev   *State
	Next   *State
	Action Action
}

// TokenChanged reports whether the transition replaced or cleared the token.
func (c Change) TokenChanged() bool {
	return c.Prev.Token != c.Next.Token
}

// CompanyChanged reports whether the selected company moved.
func (c Change) CompanyChanged() bool {
	return companyID(c.Prev) != companyID(c.Next)
}

// Hook runs synchronously after a transition is applied and before Dispatch
// returns. Hooks must not call Dispatch.
type Hook func(ctx context.Context, change Change)

// Store is the single authoritative session container. State is replaced
// only through Dispatch; every reader gets an immutable snapshot.
type Store struct {
	dispatchMu sync.Mutex
	state      atomic.Pointer[State]
	hooks      []Hook
	changes    *broadcast.MemoryBroadcaster[Change]
	logger     *slog.Logger
	closed     bool
}

// New creates a store with an empty session unless WithInitialState is given.
func New(opts ...Option) *Store {
	s := &Store{
		changes: broadcast.NewMemoryBroadcaster[Change](),
		logger:  slog.Default(),
	}
	s.state.Store(emptyState)

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot. Never nil.
func (s *Store) State() *State {
	return s.state.Load()
}

// Dispatch applies the action. Transitions are serialized: hooks of one
// transition finish before the next transition starts. A rejected action
// returns an error and leaves the state untouched.
func (s *Store) Dispatch(ctx context.Context, action Action) error {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	if s.closed {
		return ErrClosed
	}

	prev := s.state.Load()
	next, err := reduce(prev, action)
	if err != nil {
		s.logger.WarnContext(ctx, "store action rejected",
			logger.Component("store"),
			logger.Action(actionName(action)),
			logger.Error(err),
		)
		return err
	}
	if next == prev {
		return nil
	}

	s.state.Store(next)

	s.logger.DebugContext(ctx, "store action applied",
		logger.Component("store"),
		logger.Action(action.ActionName()),
		logger.Version(next.Version),
		logger.CompanyID(companyID(next)),
	)

	change := Change{Prev: prev, Next: next, Action: action}
	for _, h := range s.hooks {
		h(ctx, change)
	}
	s.changes.Broadcast(change)
	return nil
}

// AddHook registers a hook for subsequent transitions.
func (s *Store) AddHook(h Hook) {
	if h == nil {
		return
	}
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	s.hooks = append(s.hooks, h)
}

// Subscribe returns a subscriber that receives the latest Change after each
// transition. Intermediate changes may be skipped by slow readers; the last
// one is always delivered.
func (s *Store) Subscribe(ctx context.Context) broadcast.Subscriber[Change] {
	return s.changes.Subscribe(ctx)
}

// Close stops notifications and rejects further dispatches.
func (s *Store) Close() error {
	s.dispatchMu.Lock()
	s.closed = true
	s.dispatchMu.Unlock()
	return s.changes.Close()
}

func companyID(s *State) string {
	if s == nil || s.SelectedCompany == nil {
		return ""
	}
	return s.SelectedCompany.ID
}

func actionName(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return a.ActionName()
}
