// Package queue is a Redis-backed FIFO transport the Engine uses to
// dispatch jobs to the worker, narrowed from the teacher's three-queue
// (plan/clip/render) setup to the single video-analysis job type this
// engine processes.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const QueueVideoAnalysis = "queue:video_analysis"

// Queue wraps a Redis list used as a FIFO via RPush/BLPop.
type Queue struct {
	client *redis.Client
}

// Message is the payload pushed onto the queue: just enough to let the
// worker look the full job up from the Engine's in-memory map. The job's
// mutable state itself is never serialized through Redis — it lives in
// the Engine's Job map, consistent with the "process-local, non-persisted
// job state" Non-goal (spec §5).
type Message struct {
	JobID     string    `json:"jobId"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

func New(redisURL string) (*Queue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Queue{client: client}, nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func (q *Queue) Enqueue(ctx context.Context, jobID string) error {
	msg := Message{JobID: jobID, EnqueuedAt: time.Now()}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal queue message: %w", err)
	}
	return q.client.RPush(ctx, QueueVideoAnalysis, data).Err()
}

// Dequeue blocks up to timeout waiting for a job, returning ("", nil) if
// none arrived in that window.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (string, error) {
	result, err := q.client.BLPop(ctx, timeout, QueueVideoAnalysis).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to dequeue: %w", err)
	}
	if len(result) != 2 {
		return "", fmt.Errorf("unexpected redis response shape")
	}

	var msg Message
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return "", fmt.Errorf("failed to unmarshal queue message: %w", err)
	}
	return msg.JobID, nil
}

func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, QueueVideoAnalysis).Result()
}
