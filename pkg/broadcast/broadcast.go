package broadcast

import (
	"context"
	"sync"
)

// Subscriber receives messages from a Broadcaster.
type Subscriber[T any] interface {
	// Receive returns the delivery channel. It is closed when the subscriber
	// is closed or its subscription context ends.
	Receive() <-chan T

	// Close releases the subscription. Safe to call multiple times.
	Close() error
}

// Broadcaster fans messages out to every active subscriber.
type Broadcaster[T any] interface {
	Subscribe(ctx context.Context) Subscriber[T]
	Broadcast(msg T)
	Close() error
}

// subscriber holds at most one undelivered message. A newer message replaces
// an unread older one, so a slow reader always ends up seeing the latest value
// and the sender never blocks.
type subscriber[T any] struct {
	ch     chan T
	done   chan struct{}
	closed bool
	mu     sync.Mutex
	onDone func()
}

func newSubscriber[T any]() *subscriber[T] {
	return &subscriber[T]{ch: make(chan T, 1), done: make(chan struct{})}
}

func (s *subscriber[T]) Receive() <-chan T {
	return s.ch
}

func (s *subscriber[T]) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	close(s.done)
	onDone := s.onDone
	s.mu.Unlock()

	if onDone != nil {
		onDone()
	}
	return nil
}

// send reports whether an unread message was replaced.
func (s *subscriber[T]) send(msg T) (replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case <-s.ch:
		replaced = true
	default:
	}
	s.ch <- msg
	return replaced
}
