package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/review-with-friends/reviewwithfriends-backend/pkg/push"
)

func TestQueue_FIFO(t *testing.T) {
	q := New(16)

	for i := 0; i < 5; i++ {
		err := q.Enqueue(push.QueueItem{
			TargetUserID: fmt.Sprintf("user-%d", i),
			Message:      fmt.Sprintf("message %d", i),
			Category:     push.CategoryFavorite,
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 5, q.Len())

	// Draining yields items in enqueue order.
	for i := 0; i < 5; i++ {
		item, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("user-%d", i), item.TargetUserID)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_EnqueueNeverBlocks(t *testing.T) {
	q := New(2)

	require.NoError(t, q.Enqueue(push.QueueItem{TargetUserID: "a"}))
	require.NoError(t, q.Enqueue(push.QueueItem{TargetUserID: "b"}))

	// The queue is full: the newest item is dropped, not the caller stalled.
	err := q.Enqueue(push.QueueItem{TargetUserID: "c"})
	assert.ErrorIs(t, err, ErrFull)

	item, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "a", item.TargetUserID)
}

func TestQueue_DequeueBlocksUntilItem(t *testing.T) {
	q := New(4)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = q.Enqueue(push.QueueItem{TargetUserID: "late"})
	}()

	item, ok := q.Dequeue(context.Background())
	require.True(t, ok)
	assert.Equal(t, "late", item.TargetUserID)
}

func TestQueue_DequeueUnblocksOnCancel(t *testing.T) {
	q := New(4)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		_, ok := q.Dequeue(ctx)
		assert.False(t, ok)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not return after context cancellation")
	}
}

func TestQueue_DefaultCapacity(t *testing.T) {
	q := New(0)
	assert.Equal(t, DefaultCapacity, cap(q.items))
}
