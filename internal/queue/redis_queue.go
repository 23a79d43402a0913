// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/northbound/pagechunk/internal/logger"
)

// DefaultKey is the Redis list used when no key is configured
const DefaultKey = "pagechunk:jobs"

// RedisQueue implements Queue using Redis Lists.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue creates a new Redis-backed queue.
// client: the Redis client to use
// key: the Redis key name for the queue (e.g., "pagechunk:jobs")
func NewRedisQueue(ctx context.Context, client *redis.Client, key string) (*RedisQueue, error) {
	if key == "" {
		key = DefaultKey
	}

	logger.Debugf("NewRedisQueue: key=%s", key)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("queue: ping redis: %w", err)
	}

	return &RedisQueue{
		client: client,
		key:    key,
	}, nil
}

// Key returns the Redis list key
func (r *RedisQueue) Key() string {
	return r.key
}

// Enqueue adds a job to the queue using RPUSH.
func (r *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job: %w", err)
	}

	if err := r.client.RPush(ctx, r.key, data).Err(); err != nil {
		return fmt.Errorf("queue: push to %s: %w", r.key, err)
	}

	logger.Debugf("Enqueue: key=%s type=%s payloadSize=%d", r.key, job.Type, len(data))
	return nil
}

// Dequeue blocks until a job is available using BLPOP, then returns it.
func (r *RedisQueue) Dequeue(ctx context.Context) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}

	// Use a channel to handle context cancellation
	type result struct {
		val []string
		err error
	}
	resultChan := make(chan result, 1)

	go func() {
		val, err := r.client.BLPop(ctx, 0, r.key).Result()
		resultChan <- result{val: val, err: err}
	}()

	select {
	case <-ctx.Done():
		return Job{}, ctx.Err()
	case res := <-resultChan:
		if res.err != nil {
			if errors.Is(res.err, redis.Nil) || ctx.Err() != nil {
				return Job{}, ctx.Err()
			}
			return Job{}, fmt.Errorf("queue: pop from %s: %w", r.key, res.err)
		}

		if len(res.val) < 2 {
			return Job{}, fmt.Errorf("queue: invalid BLPOP result, expected 2 elements, got %d", len(res.val))
		}

		var job Job
		if err := json.Unmarshal([]byte(res.val[1]), &job); err != nil {
			return Job{}, fmt.Errorf("queue: unmarshal job: %w", err)
		}

		logger.Debugf("Dequeue: key=%s type=%s createdAt=%s", r.key, job.Type, job.CreatedAt.Format(time.RFC3339))
		return job, nil
	}
}

// Len returns the number of jobs waiting in the list.
func (r *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := r.client.LLen(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue: length of %s: %w", r.key, err)
	}
	return n, nil
}
