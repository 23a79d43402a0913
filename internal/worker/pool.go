// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package worker

import (
	"context"
	"sync"

	"github.com/northbound/pagechunk/internal/logger"
)

// FileFunc processes one file path
type FileFunc func(ctx context.Context, path string) error

// FilePool runs FileFunc over submitted paths with a fixed number of
// goroutines. It is the in-process counterpart of StartWorkers, used by the
// watcher so slow documents do not stall event handling.
type FilePool struct {
	paths       chan string
	handle      FileFunc
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.RWMutex
	stopped     bool
}

// NewFilePool creates a pool with a buffered backlog of queueSize paths
func NewFilePool(parent context.Context, workerCount, queueSize int, handle FileFunc) *FilePool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 1 {
		queueSize = 100
	}
	ctx, cancel := context.WithCancel(parent)
	return &FilePool{
		paths:       make(chan string, queueSize),
		handle:      handle,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the workers
func (p *FilePool) Start() {
	p.wg.Add(p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i + 1)
	}
	logger.Debugf("Started %d file workers", p.workerCount)
}

// Submit queues a path without blocking. It returns false when the backlog
// is full or the pool is stopped.
func (p *FilePool) Submit(path string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.paths <- path:
		return true
	default:
		logger.Warnf("File queue full, dropping %s", path)
		return false
	}
}

// Stop lets queued paths drain, then waits for the workers to exit
func (p *FilePool) Stop() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.paths)
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

func (p *FilePool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case path, ok := <-p.paths:
			if !ok {
				return
			}
			if err := p.handle(p.ctx, path); err != nil {
				logger.Errorf("file worker %d: %s: %v", id, path, err)
			}
		}
	}
}
