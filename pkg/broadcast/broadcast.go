package broadcast

import (
	"context"
	"sync"
)

// Message carries one broadcast value.
type Message[T any] struct {
	Data T
}

// Subscriber receives broadcast messages until it is closed.
type Subscriber[T any] interface {
	// Receive returns the delivery channel. It is closed once the
	// subscriber is closed or dropped by the broadcaster.
	Receive(ctx context.Context) <-chan Message[T]

	// Close is idempotent.
	Close() error
}

// Broadcaster fans a message out to every active subscriber.
// Implementations never block on a slow consumer.
type Broadcaster[T any] interface {
	// Subscribe registers a subscriber bound to ctx: cancelling ctx
	// unsubscribes it.
	Subscribe(ctx context.Context) Subscriber[T]

	// Broadcast delivers msg to all subscribers with free buffer space.
	Broadcast(ctx context.Context, msg Message[T]) error

	// Close closes every subscriber. Later subscriptions are born closed.
	Close() error
}

type subscriber[T any] struct {
	mu     sync.RWMutex
	ch     chan Message[T]
	closed bool
}

func newSubscriber[T any](size int) *subscriber[T] {
	return &subscriber[T]{ch: make(chan Message[T], size)}
}

func (s *subscriber[T]) Receive(context.Context) <-chan Message[T] {
	return s.ch
}

func (s *subscriber[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}

// send reports false when the subscriber is closed or its buffer is full.
func (s *subscriber[T]) send(msg Message[T]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}
