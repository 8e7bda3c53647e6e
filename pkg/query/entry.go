package query

import (
	"context"
	"time"

	"github.com/dmitrymomot/ledgerchat/pkg/statemachine"
)

// Entry is a point-in-time copy of a cache entry.
type Entry struct {
	Key        Key
	Status     Status
	Data       any
	Err        error
	FetchedAt  time.Time
	StaleAt    time.Time
	RetryCount int
	// Version increases with every change of the entry.
	Version uint64
}

type fetchFunc func(ctx context.Context) (any, error)

type policy struct {
	staleTime  time.Duration
	maxRetries int
	retryDelay time.Duration
}

// call is one in-flight exchange, including its retries.
type call struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// entry is guarded by Client.mu.
type entry struct {
	key   Key
	state *statemachine.Machine[Status]
	// settled is the last terminal status, idle until the first fetch ends.
	settled Status

	data      any
	err       error
	fetchedAt time.Time
	staleAt   time.Time
	retries   int
	version   uint64

	call   *call
	fetch  fetchFunc
	policy policy
}

func newEntry(key Key) *entry {
	return &entry{key: key, state: statemachine.NewMachine(transitions, StatusIdle)}
}

func (e *entry) status() Status {
	return e.state.Current()
}

func (e *entry) move(to Status) {
	e.state.MustFire(to)
	e.version++
}

func (e *entry) snapshot() Entry {
	return Entry{
		Key:        e.key,
		Status:     e.status(),
		Data:       e.data,
		Err:        e.err,
		FetchedAt:  e.fetchedAt,
		StaleAt:    e.staleAt,
		RetryCount: e.retries,
		Version:    e.version,
	}
}

// retriesLeft reports whether a failed entry may be fetched again without a
// forced refetch. RetryCount counts failed attempts, so MaxRetries=1 allows
// two attempts in total.
func (e *entry) retriesLeft() bool {
	return e.retries <= e.policy.maxRetries
}

func (e *entry) done() <-chan struct{} {
	if e.call == nil {
		return nil
	}
	return e.call.done
}
