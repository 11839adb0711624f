// Package queue provides the unbounded FIFO used to hand orders from one
// pipeline stage to the next.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrClosed is returned by Take once the queue is closed and drained,
	// and by Put after Close.
	ErrClosed = errors.New("queue: closed")
	// ErrTimeout is returned by Take when no item arrived within the idle timeout.
	ErrTimeout = errors.New("queue: idle timeout")
)

// Queue is an unbounded, goroutine-safe FIFO. Put never blocks; Take blocks
// until an item is available, the queue is closed, the idle timeout elapses
// or the context is done.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	// wake is closed and replaced on every Put and on Close, releasing all
	// waiting Take calls.
	wake chan struct{}
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{wake: make(chan struct{})}
}

// Put appends item at the tail.
func (q *Queue[T]) Put(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	q.items = append(q.items, item)
	q.broadcast()
	return nil
}

// Take removes and returns the head item. A timeout <= 0 disables the idle
// timeout.
func (q *Queue[T]) Take(ctx context.Context, timeout time.Duration) (T, error) {
	var zero T

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return item, nil
		}
		if q.closed {
			q.mu.Unlock()
			return zero, ErrClosed
		}
		wake := q.wake
		q.mu.Unlock()

		select {
		case <-wake:
		case <-expired:
			return zero, ErrTimeout
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Close marks the end of the stream. Items already queued can still be taken.
// Calling Close more than once is a no-op.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.broadcast()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *Queue[T]) broadcast() {
	close(q.wake)
	q.wake = make(chan struct{})
}
