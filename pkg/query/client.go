package query

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/ledgerchat/pkg/broadcast"
	"github.com/dmitrymomot/ledgerchat/pkg/cache"
	"github.com/dmitrymomot/ledgerchat/pkg/logger"
	"github.com/dmitrymomot/ledgerchat/pkg/store"
)

// DefaultCapacity is the number of entries a Client keeps by default.
const DefaultCapacity = 256

// Client owns the cache entries of every query built on it and runs their
// fetches. One Client is shared by all queries of a session.
type Client struct {
	mu       sync.Mutex
	entries  *cache.LRU[Key, *entry]
	attached map[Key]int
	closed   bool

	changes *broadcast.MemoryBroadcaster[Key]
	calls   sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	logger   *slog.Logger
	now      func() time.Time
	capacity int
}

// NewClient creates an empty client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		attached: make(map[Key]int),
		changes:  broadcast.NewMemoryBroadcaster[Key](),
		logger:   slog.Default(),
		now:      time.Now,
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.entries = cache.New(c.capacity,
		cache.WithKeep(c.inUse),
		cache.WithEvictHook(c.evicted),
	)
	return c
}

// Entry returns a copy of the entry for key.
func (c *Client) Entry(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Peek(key)
	if !ok {
		return Entry{Key: key}, false
	}
	return e.snapshot(), true
}

// Len returns the number of cached entries.
func (c *Client) Len() int {
	return c.entries.Len()
}

// Invalidate marks every entry of the operation as stale and clears the
// retry budget of those not fetching. Entries with attached observers are refetched right away;
// the rest refetch on their next evaluation. Returns the number of entries hit.
func (c *Client) Invalidate(ctx context.Context, operation string) int {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}

	var hit []Key
	now := c.now()
	for _, key := range c.entries.Keys() {
		if key.Operation != operation {
			continue
		}
		e, _ := c.entries.Peek(key)
		e.staleAt = now
		e.version++
		hit = append(hit, key)

		// a running retry loop keeps its budget
		if e.call != nil {
			continue
		}
		e.retries = 0
		if c.attached[key] > 0 && e.fetch != nil {
			c.start(ctx, e)
		}
	}
	c.mu.Unlock()

	for _, key := range hit {
		c.changes.Broadcast(key)
	}
	c.logger.DebugContext(ctx, "query entries invalidated",
		logger.Component("query"),
		logger.Operation(operation),
		slog.Int("count", len(hit)),
	)
	return len(hit)
}

// Reset drops every entry and cancels in-flight fetches. Observers stay
// attached and start from idle on their next evaluation.
func (c *Client) Reset(ctx context.Context) {
	c.mu.Lock()
	n := c.entries.Len()
	c.entries.Clear()
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "query cache reset", logger.Component("query"), slog.Int("count", n))
}

// ResetOnLogout resets the client whenever the session token of s is cleared
// or replaced, so data fetched for one user is never served to the next.
func (c *Client) ResetOnLogout(s *store.Store) {
	s.AddHook(func(ctx context.Context, ch store.Change) {
		if ch.Prev.HasSession() && ch.TokenChanged() {
			c.Reset(ctx)
		}
	})
}

// Close cancels every in-flight fetch and waits for them to return.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.entries.Clear()
	c.mu.Unlock()

	c.cancel()
	c.calls.Wait()
	return c.changes.Close()
}

// subscribe streams keys of entries that changed.
func (c *Client) subscribe(ctx context.Context) broadcast.Subscriber[Key] {
	return c.changes.Subscribe(ctx)
}

func (c *Client) attach(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attached[key]++
}

// detach releases one observer from key. When the last observer leaves while
// a fetch is running, the fetch is abandoned.
func (c *Client) detach(ctx context.Context, key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n := c.attached[key]; n > 1 {
		c.attached[key] = n - 1
		return
	}
	delete(c.attached, key)

	if e, ok := c.entries.Peek(key); ok && e.call != nil {
		c.abandon(ctx, e)
	}
}

// ensure runs the gate for an enabled observer: it starts a fetch when the
// entry is missing, stale, or failed with retries left, and joins the running
// one otherwise. force skips the freshness check and resets the retry budget.
func (c *Client) ensure(ctx context.Context, key Key, fetch fetchFunc, p policy, force bool) (Entry, <-chan struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Entry{Key: key}, nil, ErrClosed
	}

	e, ok := c.entries.Get(key)
	if !ok {
		e = newEntry(key)
		c.entries.Put(key, e)
	}
	e.fetch, e.policy = fetch, p

	if e.call == nil && (force || c.needsFetch(e)) {
		if force {
			e.retries = 0
		}
		c.start(ctx, e)
	}
	return e.snapshot(), e.done(), nil
}

// peek returns the entry for key without gating. Lock not held.
func (c *Client) peek(key Key) (Entry, <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Peek(key)
	if !ok {
		return Entry{Key: key}, nil
	}
	return e.snapshot(), e.done()
}

// Lock held.
func (c *Client) needsFetch(e *entry) bool {
	switch e.status() {
	case StatusIdle:
		return true
	case StatusSuccess:
		return !c.now().Before(e.staleAt)
	case StatusError:
		return e.retriesLeft()
	default:
		return false
	}
}

// start launches the fetch of e. Lock held.
func (c *Client) start(ctx context.Context, e *entry) {
	e.move(StatusPending)

	// the call keeps the values of ctx, such as the request id, but lives
	// until it settles, is abandoned or the client closes
	callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(c.ctx, cancel)
	cl := &call{cancel: func() { stop(); cancel() }, done: make(chan struct{})}
	e.call = cl

	c.logger.DebugContext(ctx, "query fetch started",
		logger.Component("query"),
		logger.QueryKey(e.key),
		logger.RetryCount(e.retries),
	)

	c.calls.Add(1)
	go c.run(callCtx, e, cl, e.fetch, e.policy)
}

// run performs the exchange and its retries. Results are written only while
// cl is still the entry's call; anything else is a late result of an
// abandoned fetch and is dropped.
func (c *Client) run(ctx context.Context, e *entry, cl *call, fetch fetchFunc, p policy) {
	defer c.calls.Done()
	defer close(cl.done)
	defer cl.cancel()

	for attempt := 1; ; attempt++ {
		started := time.Now()
		data, err := fetch(ctx)
		elapsed := time.Since(started)

		c.mu.Lock()
		if e.call != cl {
			c.mu.Unlock()
			c.logger.DebugContext(ctx, "query result discarded",
				logger.Component("query"),
				logger.QueryKey(e.key),
				logger.Attempt(attempt),
			)
			return
		}

		if err == nil {
			now := c.now()
			e.data, e.err = data, nil
			e.fetchedAt, e.staleAt = now, now.Add(p.staleTime)
			e.retries = 0
			e.settled = StatusSuccess
			e.call = nil
			e.move(StatusSuccess)
			c.mu.Unlock()

			c.logger.DebugContext(ctx, "query fetch settled",
				logger.Component("query"),
				logger.QueryKey(e.key),
				logger.Status(StatusSuccess),
				logger.Attempt(attempt),
				logger.Duration(elapsed),
			)
			c.changes.Broadcast(e.key)
			return
		}

		e.err = err
		e.retries++
		e.settled = StatusError
		e.move(StatusError)
		retry := e.retries <= p.maxRetries
		if !retry {
			e.call = nil
		}
		retries := e.retries
		c.mu.Unlock()
		c.changes.Broadcast(e.key)

		if !retry {
			c.logger.WarnContext(ctx, "query fetch failed",
				logger.Component("query"),
				logger.QueryKey(e.key),
				logger.RetryCount(retries),
				logger.Error(err),
			)
			return
		}

		c.logger.DebugContext(ctx, "query fetch retrying",
			logger.Component("query"),
			logger.QueryKey(e.key),
			logger.RetryCount(retries),
			logger.Error(err),
		)

		if p.retryDelay > 0 {
			timer := time.NewTimer(p.retryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		c.mu.Lock()
		if e.call != cl {
			c.mu.Unlock()
			return
		}
		e.move(StatusPending)
		c.mu.Unlock()
		c.changes.Broadcast(e.key)
	}
}

// abandon cancels the running fetch of e and rolls the entry back to its
// last settled state. An entry that never settled leaves the cache. Lock held.
func (c *Client) abandon(ctx context.Context, e *entry) {
	e.call.cancel()
	e.call = nil

	if e.status() == StatusPending {
		if e.settled == StatusIdle {
			c.entries.Remove(e.key)
		} else {
			e.move(e.settled)
		}
	}

	c.logger.DebugContext(ctx, "query fetch abandoned",
		logger.Component("query"),
		logger.QueryKey(e.key),
		logger.Status(e.status()),
	)
}

// inUse keeps entries with observers or a running fetch out of capacity
// eviction. Called by the cache while Client.mu is held.
func (c *Client) inUse(key Key, e *entry) bool {
	return e.call != nil || c.attached[key] > 0
}

// evicted runs with Client.mu held.
func (c *Client) evicted(key Key, e *entry, reason cache.Reason) {
	if e.call != nil {
		e.call.cancel()
		e.call = nil
	}
	c.logger.Debug("query entry evicted",
		logger.Component("query"),
		logger.QueryKey(key),
		slog.String("reason", reason.String()),
	)
}
