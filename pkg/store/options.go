package store

import "log/slog"

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHook registers a transition hook, typically mirror.Mirror.Hook().
func WithHook(h Hook) Option {
	return func(s *Store) {
		if h != nil {
			s.hooks = append(s.hooks, h)
		}
	}
}

// WithInitialState seeds the store, for example from a saved snapshot.
// The seed is normalized: without a token the store starts empty, and a
// selected company that is not in the user's list is dropped. Hooks do not
// run for the seed; call mirror.Mirror.Sync to project it.
func WithInitialState(st *State) Option {
	return func(s *Store) {
		s.state.Store(normalize(st))
	}
}
