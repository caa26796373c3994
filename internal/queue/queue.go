// Package queue holds pending push deliveries between the producing request
// paths and the single background dispatcher.
package queue

import (
	"context"
	"errors"

	"github.com/review-with-friends/reviewwithfriends-backend/pkg/push"
)

// DefaultCapacity bounds the queue when no capacity is configured. A stalled
// gateway then sheds load instead of growing memory without limit.
const DefaultCapacity = 1024

// ErrFull is returned by Enqueue when the queue is at capacity. The incoming
// item is dropped; pushes are best effort.
var ErrFull = errors.New("notification queue is full")

// Queue is a bounded multi-producer/single-consumer FIFO backed by a buffered
// channel. Enqueue and TryDequeue never block, so no caller ever waits on
// I/O performed by another goroutine.
type Queue struct {
	items chan push.QueueItem
}

// New creates a queue holding at most capacity items. A capacity of zero or
// less falls back to DefaultCapacity.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{items: make(chan push.QueueItem, capacity)}
}

// Enqueue appends an item without blocking. When the queue is full the item
// is dropped and ErrFull returned.
func (q *Queue) Enqueue(item push.QueueItem) error {
	select {
	case q.items <- item:
		return nil
	default:
		return ErrFull
	}
}

// TryDequeue removes the oldest item without blocking. The second return is
// false when the queue is empty.
func (q *Queue) TryDequeue() (push.QueueItem, bool) {
	select {
	case item := <-q.items:
		return item, true
	default:
		return push.QueueItem{}, false
	}
}

// Dequeue blocks until an item is available or ctx is cancelled. Returns
// (zero, false) on cancellation, signalling the consumer to stop.
func (q *Queue) Dequeue(ctx context.Context) (push.QueueItem, bool) {
	select {
	case item := <-q.items:
		return item, true
	case <-ctx.Done():
		return push.QueueItem{}, false
	}
}

// Len reports the number of items currently waiting.
func (q *Queue) Len() int {
	return len(q.items)
}
