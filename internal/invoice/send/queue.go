package send

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
)

const (
	LaneHigh    = "high"
	LaneDefault = "default"

	keyHigh    = "invoice:send:high"
	keyDefault = "invoice:send:default"
	keyDelayed = "invoice:send:delayed"
)

// Task is one send attempt travelling through redis. Deadline is fixed at
// first dispatch so retries cannot extend it.
type Task struct {
	InvoiceID snowflake.ID `json:"invoice_id"`
	Attempt   int          `json:"attempt"`
	Manual    bool         `json:"manual"`
	Lane      string       `json:"lane"`
	Deadline  time.Time    `json:"deadline"`
}

func laneKey(lane string) string {
	if lane == LaneHigh {
		return keyHigh
	}
	return keyDefault
}

// Queue is a two-lane redis queue with a sorted-set parking lot for delayed
// retries. High-lane tasks are always drained before default-lane ones.
type Queue struct {
	client *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

func (q *Queue) Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, laneKey(task.Lane), payload).Err()
}

func (q *Queue) EnqueueDelayed(ctx context.Context, task Task, readyAt time.Time) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.client.ZAdd(ctx, keyDelayed, redis.Z{
		Score:  float64(readyAt.Unix()),
		Member: payload,
	}).Err()
}

// Dequeue blocks up to timeout for the next task, draining the high lane
// first. A nil task with nil error means the timeout elapsed empty.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	res, err := q.client.BLPop(ctx, timeout, keyHigh, keyDefault).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	// BLPOP returns [key, value].
	if len(res) != 2 {
		return nil, nil
	}
	var task Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// PromoteDue moves delayed tasks whose ready time has passed onto their lane.
// ZRem gates the move so concurrent promoters never double-deliver a task.
func (q *Queue) PromoteDue(ctx context.Context, now time.Time) (int, error) {
	members, err := q.client.ZRangeByScore(ctx, keyDelayed, &redis.ZRangeBy{
		Min: "-inf",
		Max: formatScore(now),
	}).Result()
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, member := range members {
		removed, err := q.client.ZRem(ctx, keyDelayed, member).Result()
		if err != nil {
			return promoted, err
		}
		if removed == 0 {
			continue
		}
		var task Task
		if err := json.Unmarshal([]byte(member), &task); err != nil {
			continue
		}
		if err := q.client.RPush(ctx, laneKey(task.Lane), member).Err(); err != nil {
			return promoted, err
		}
		promoted++
	}
	return promoted, nil
}

// Depth reports queued tasks per lane plus the delayed parking lot.
func (q *Queue) Depth(ctx context.Context) (high, def, delayed int64, err error) {
	if high, err = q.client.LLen(ctx, keyHigh).Result(); err != nil {
		return
	}
	if def, err = q.client.LLen(ctx, keyDefault).Result(); err != nil {
		return
	}
	delayed, err = q.client.ZCard(ctx, keyDelayed).Result()
	return
}

func formatScore(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
