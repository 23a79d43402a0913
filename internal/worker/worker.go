// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/northbound/pagechunk/internal/logger"
	"github.com/northbound/pagechunk/internal/queue"
)

// HandlerFunc processes a job. It should return an error if processing fails.
type HandlerFunc func(ctx context.Context, job queue.Job) error

// Stats counts the jobs handled by a worker pool
type Stats struct {
	mu        sync.Mutex
	Processed int
	Failed    int
}

func (s *Stats) record(err error) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.Failed++
		return
	}
	s.Processed++
}

// Snapshot returns the current counts
func (s *Stats) Snapshot() (processed, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Processed, s.Failed
}

// StartWorkers starts a pool of workers that process jobs from the queue and
// blocks until ctx is cancelled and every worker has returned.
// ctx: context for cancellation (workers will stop when context is cancelled)
// q: the queue to dequeue jobs from
// handler: function to process each job
// workerCount: number of worker goroutines to start
// stats: optional counters, may be nil
func StartWorkers(ctx context.Context, q queue.Queue, handler HandlerFunc, workerCount int, stats *Stats) error {
	if workerCount < 1 {
		workerCount = 1
	}
	logger.Infof("StartWorkers: workerCount=%d", workerCount)

	var wg sync.WaitGroup
	wg.Add(workerCount)

	for i := 0; i < workerCount; i++ {
		workerID := i + 1
		go func() {
			defer wg.Done()
			workerLoop(ctx, q, handler, workerID, stats)
		}()
	}

	wg.Wait()
	logger.Infof("StartWorkers: all workers stopped")
	return nil
}

// workerLoop is the main loop for a single worker.
func workerLoop(ctx context.Context, q queue.Queue, handler HandlerFunc, workerID int, stats *Stats) {
	logger.Debugf("workerLoop: workerID=%d started", workerID)

	for {
		select {
		case <-ctx.Done():
			logger.Debugf("workerLoop: workerID=%d context cancelled, stopping", workerID)
			return
		default:
		}

		// Blocks until a job is available or ctx is cancelled
		job, err := q.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			logger.Warnf("workerLoop: workerID=%d dequeue error: %v, continuing", workerID, err)
			continue
		}

		logger.Debugf("workerLoop: workerID=%d processing job type=%s", workerID, job.Type)

		err = handler(ctx, job)
		stats.record(err)
		if err != nil {
			logger.Errorf("workerLoop: workerID=%d handler error for job type=%s: %v", workerID, job.Type, err)
			continue
		}

		logger.Debugf("workerLoop: workerID=%d successfully processed job type=%s", workerID, job.Type)
	}
}
