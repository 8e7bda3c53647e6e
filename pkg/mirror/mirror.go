package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dmitrymomot/ledgerchat/pkg/logger"
	"github.com/dmitrymomot/ledgerchat/pkg/store"
)

// Mirror projects store state into durable flags:
//
//	auth_token           present iff State.Token != ""
//	has_selected_company present iff State.SelectedCompany != nil
//
// It only writes; the store never reads the flags back.
type Mirror struct {
	writer   FlagWriter
	logger   *slog.Logger
	failures atomic.Uint64

	// dirty is set after a failed write; the next transition rewrites the
	// whole projection instead of the difference.
	dirty atomic.Bool
}

// Option configures a Mirror.
type Option func(*Mirror)

func WithLogger(l *slog.Logger) Option {
	return func(m *Mirror) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a mirror over the given backend. Panics on a nil writer:
// a store without its projection would silently break route guards.
func New(w FlagWriter, opts ...Option) *Mirror {
	if w == nil {
		panic(ErrNoWriter)
	}
	m := &Mirror{writer: w, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Hook adapts the mirror to a store hook. Write failures are logged and
// counted; the store transition stands regardless. After a failure the next
// transition syncs the full projection, so the flags catch up with the store.
func (m *Mirror) Hook() store.Hook {
	return func(ctx context.Context, c store.Change) {
		var err error
		if m.dirty.Load() {
			err = m.Sync(ctx, c.Next)
		} else {
			err = m.Apply(ctx, c.Prev, c.Next)
		}
		m.dirty.Store(err != nil)
		if err != nil {
			m.failures.Add(1)
			m.logger.ErrorContext(ctx, "durable flag write failed",
				logger.Component("mirror"),
				logger.Action(c.Action.ActionName()),
				logger.Error(err),
			)
		}
	}
}

// Apply writes the flags that differ between prev and next. Applying the same
// pair again leaves the flags as they are.
func (m *Mirror) Apply(ctx context.Context, prev, next *store.State) error {
	var errs []error

	switch {
	case !next.HasSession():
		// logout clears the company flag too, whatever the caller intended
		if prev.HasSession() || prev.HasCompany() {
			errs = append(errs, m.clear(ctx, FlagAuthToken), m.clear(ctx, FlagHasSelectedCompany))
		}
		return errors.Join(errs...)
	case prevToken(prev) != next.Token:
		errs = append(errs, m.write(ctx, FlagAuthToken, next.Token))
	}

	switch {
	case next.HasCompany() && !prev.HasCompany():
		errs = append(errs, m.write(ctx, FlagHasSelectedCompany, presentValue))
	case !next.HasCompany() && prev.HasCompany():
		errs = append(errs, m.clear(ctx, FlagHasSelectedCompany))
	}

	return errors.Join(errs...)
}

// Sync rewrites the full projection of st, regardless of what was written
// before. Use it once at startup to drop flags left over from an earlier run.
func (m *Mirror) Sync(ctx context.Context, st *store.State) error {
	var errs []error
	if st.HasSession() {
		errs = append(errs, m.write(ctx, FlagAuthToken, st.Token))
	} else {
		errs = append(errs, m.clear(ctx, FlagAuthToken))
	}
	if st.HasCompany() {
		errs = append(errs, m.write(ctx, FlagHasSelectedCompany, presentValue))
	} else {
		errs = append(errs, m.clear(ctx, FlagHasSelectedCompany))
	}
	return errors.Join(errs...)
}

// Failures returns how many transitions failed to mirror since creation.
func (m *Mirror) Failures() uint64 {
	return m.failures.Load()
}

func (m *Mirror) write(ctx context.Context, name, value string) error {
	if err := m.writer.WriteFlag(ctx, name, value); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrFlagWriteFailed, name, err)
	}
	m.logger.DebugContext(ctx, "durable flag written", logger.Component("mirror"), logger.Flag(name))
	return nil
}

func (m *Mirror) clear(ctx context.Context, name string) error {
	if err := m.writer.ClearFlag(ctx, name); err != nil {
		return fmt.Errorf("%w: clear %s: %w", ErrFlagWriteFailed, name, err)
	}
	m.logger.DebugContext(ctx, "durable flag cleared", logger.Component("mirror"), logger.Flag(name))
	return nil
}

func prevToken(s *store.State) string {
	if s == nil {
		return ""
	}
	return s.Token
}
