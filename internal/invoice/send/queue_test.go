package send

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewQueue(client)
}

func TestQueueHighLaneDrainsFirst(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, Task{InvoiceID: 1, Attempt: 1, Lane: LaneDefault}))
	require.NoError(t, q.Enqueue(ctx, Task{InvoiceID: 2, Attempt: 1, Lane: LaneDefault}))
	require.NoError(t, q.Enqueue(ctx, Task{InvoiceID: 3, Attempt: 1, Lane: LaneHigh}))

	var order []snowflake.ID
	for i := 0; i < 3; i++ {
		task, err := q.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, task)
		order = append(order, task.InvoiceID)
	}
	require.Equal(t, []snowflake.ID{3, 1, 2}, order)
}

func TestQueueDequeueEmptyReturnsNil(t *testing.T) {
	q := newTestQueue(t)

	task, err := q.Dequeue(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
	require.Nil(t, task)
}

func TestQueueDelayedPromotion(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()
	base := time.Date(2025, time.January, 20, 10, 0, 0, 0, time.UTC)

	task := Task{InvoiceID: 7, Attempt: 2, Lane: LaneDefault, Deadline: base.Add(24 * time.Hour)}
	require.NoError(t, q.EnqueueDelayed(ctx, task, base.Add(time.Minute)))

	// Not due yet.
	promoted, err := q.PromoteDue(ctx, base)
	require.NoError(t, err)
	require.Zero(t, promoted)

	_, _, delayed, err := q.Depth(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, delayed)

	// Due after the backoff elapses.
	promoted, err = q.PromoteDue(ctx, base.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, 1, promoted)

	got, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, task.InvoiceID, got.InvoiceID)
	require.Equal(t, 2, got.Attempt)
	require.True(t, got.Deadline.Equal(task.Deadline))

	// Promotion consumed the parked entry.
	promoted, err = q.PromoteDue(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	require.Zero(t, promoted)
}

func TestQueueDepth(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, Task{InvoiceID: 1, Lane: LaneHigh}))
	require.NoError(t, q.Enqueue(ctx, Task{InvoiceID: 2, Lane: LaneDefault}))
	require.NoError(t, q.Enqueue(ctx, Task{InvoiceID: 3, Lane: LaneDefault}))
	require.NoError(t, q.EnqueueDelayed(ctx, Task{InvoiceID: 4, Lane: LaneDefault}, time.Now().Add(time.Hour)))

	high, def, delayed, err := q.Depth(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, high)
	require.EqualValues(t, 2, def)
	require.EqualValues(t, 1, delayed)
}
