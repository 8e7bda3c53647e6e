package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/ledgerchat/pkg/store"
)

// Definition describes one gated data need.
type Definition[P, T any] struct {
	// Operation names the endpoint; it is the first half of every cache key.
	Operation string

	// Params derives the required parameters from a snapshot. It returns
	// ErrAuthMissing or ErrParameterMissing when an input is absent, which
	// disables the query. It must be pure.
	Params func(st *store.State) (P, error)

	Fetch func(ctx context.Context, params P) (T, error)

	// StaleTime is how long a successful result is served without refetching.
	StaleTime time.Duration

	// MaxRetries is the number of extra attempts after a failure.
	MaxRetries int

	// RetryDelay is the pause before each retry. Zero retries immediately.
	RetryDelay time.Duration
}

// Query binds a Definition to a client and a store.
type Query[P, T any] struct {
	def    Definition[P, T]
	client *Client
	store  *store.Store
}

// New creates a query. Panics when the definition is incomplete.
func New[P, T any](client *Client, s *store.Store, def Definition[P, T]) *Query[P, T] {
	if client == nil || s == nil {
		panic("query: client and store are required")
	}
	if def.Operation == "" || def.Params == nil || def.Fetch == nil {
		panic("query: definition needs Operation, Params and Fetch")
	}
	return &Query[P, T]{def: def, client: client, store: s}
}

// Operation returns the operation name.
func (q *Query[P, T]) Operation() string {
	return q.def.Operation
}

// Observe creates an observer. Each consumer of the data holds its own.
func (q *Query[P, T]) Observe(opts ...ObserveOption) *Observer[P, T] {
	cfg := observeConfig{enabled: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Observer[P, T]{id: uuid.NewString(), q: q, enabled: cfg.enabled}
}

// Key computes the cache key for st. The error is the reason the query is
// disabled for that snapshot.
func (q *Query[P, T]) Key(st *store.State) (Key, P, error) {
	params, err := q.def.Params(st)
	if err != nil {
		return Key{}, params, err
	}
	key, err := NewKey(q.def.Operation, params)
	return key, params, err
}

func (q *Query[P, T]) policy() policy {
	return policy{
		staleTime:  q.def.StaleTime,
		maxRetries: max(q.def.MaxRetries, 0),
		retryDelay: q.def.RetryDelay,
	}
}

func (q *Query[P, T]) fetcher(params P) fetchFunc {
	return func(ctx context.Context) (any, error) {
		return q.def.Fetch(ctx, params)
	}
}

// Result is what an observer sees after an evaluation.
type Result[T any] struct {
	Key        Key
	Status     Status
	Data       T
	Err        error
	FetchedAt  time.Time
	RetryCount int
	Version    uint64

	// Enabled is false when the gate kept the query from fetching.
	Enabled bool
	// Disabled holds the reason when Enabled is false.
	Disabled error
}

func resultOf[T any](e Entry, enabled bool, reason error) Result[T] {
	r := Result[T]{
		Key:        e.Key,
		Status:     e.Status,
		Err:        e.Err,
		FetchedAt:  e.FetchedAt,
		RetryCount: e.RetryCount,
		Version:    e.Version,
		Enabled:    enabled,
		Disabled:   reason,
	}
	if data, ok := e.Data.(T); ok {
		r.Data = data
	}
	return r
}

// Observer is one consumer of a query. It attaches to the entry of its
// current key while enabled, and detaches when disabled, when its key changes
// or on Close. A fetch with no attached observers is abandoned.
type Observer[P, T any] struct {
	id string
	q  *Query[P, T]

	mu       sync.Mutex
	enabled  bool
	key      Key
	attached bool
	closed   bool
}

// ID uniquely identifies the observer.
func (o *Observer[P, T]) ID() string {
	return o.id
}

// SetEnabled changes the caller override. It takes effect on the next evaluation.
func (o *Observer[P, T]) SetEnabled(enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.enabled = enabled
}

// Evaluate runs the gate against the current store snapshot. It never
// blocks on the network: a needed fetch is started in the background and the
// result reports StatusPending.
func (o *Observer[P, T]) Evaluate(ctx context.Context) Result[T] {
	r, _ := o.evaluate(ctx, false)
	return r
}

// Refetch evaluates like Evaluate but fetches even when the entry is fresh
// or failed for good. It joins a fetch that is already running.
func (o *Observer[P, T]) Refetch(ctx context.Context) Result[T] {
	r, _ := o.evaluate(ctx, true)
	return r
}

// Wait evaluates and blocks until the running fetch, retries included,
// settles or ctx is done.
func (o *Observer[P, T]) Wait(ctx context.Context) (Result[T], error) {
	r, done := o.evaluate(ctx, false)
	if done == nil {
		return r, nil
	}
	select {
	case <-done:
	case <-ctx.Done():
		return r, ctx.Err()
	}
	return o.current(r), nil
}

// Watch evaluates on every store change and reports every change of the
// observed entry. The channel is closed when ctx is done or the store or
// client shuts down. Readers must keep up; the next result is produced only
// after the previous one was received.
func (o *Observer[P, T]) Watch(ctx context.Context) <-chan Result[T] {
	out := make(chan Result[T])
	states := o.q.store.Subscribe(ctx)
	entries := o.q.client.subscribe(ctx)

	go func() {
		defer close(out)
		defer states.Close()
		defer entries.Close()

		last := o.Evaluate(ctx)
		emit := func(r Result[T]) bool {
			select {
			case out <- r:
				last = r
				return true
			case <-ctx.Done():
				return false
			}
		}
		if !emit(last) {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-states.Receive():
				if !ok {
					return
				}
				if r := o.Evaluate(ctx); changed(last, r) && !emit(r) {
					return
				}
			case _, ok := <-entries.Receive():
				if !ok {
					return
				}
				if r := o.current(last); changed(last, r) && !emit(r) {
					return
				}
			}
		}
	}()
	return out
}

// Close detaches the observer. Further evaluations report ErrObserverClosed.
func (o *Observer[P, T]) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	o.detach(context.Background())
	return nil
}

func (o *Observer[P, T]) evaluate(ctx context.Context, force bool) (Result[T], <-chan struct{}) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return Result[T]{Disabled: ErrObserverClosed}, nil
	}

	key, params, err := o.q.Key(o.q.store.State())
	if err != nil {
		o.detach(ctx)
		return Result[T]{Disabled: err}, nil
	}
	if !o.enabled {
		o.detach(ctx)
		e, _ := o.q.client.peek(key)
		return resultOf[T](e, false, ErrDisabled), nil
	}

	if o.attached && o.key != key {
		o.detach(ctx)
	}
	if !o.attached {
		o.q.client.attach(key)
		o.key, o.attached = key, true
	}

	e, done, err := o.q.client.ensure(ctx, key, o.q.fetcher(params), o.q.policy(), force)
	if err != nil {
		return resultOf[T](e, false, err), nil
	}
	return resultOf[T](e, true, nil), done
}

// current re-reads the attached entry without running the gate.
func (o *Observer[P, T]) current(prev Result[T]) Result[T] {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return Result[T]{Disabled: ErrObserverClosed}
	}
	if !o.attached {
		return prev
	}
	e, _ := o.q.client.peek(o.key)
	return resultOf[T](e, true, nil)
}

// Lock held.
func (o *Observer[P, T]) detach(ctx context.Context) {
	if !o.attached {
		return
	}
	o.q.client.detach(ctx, o.key)
	o.attached = false
}

func changed[T any](a, b Result[T]) bool {
	return a.Key != b.Key ||
		a.Status != b.Status ||
		a.Version != b.Version ||
		a.Enabled != b.Enabled ||
		!errors.Is(b.Disabled, a.Disabled)
}
