// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/northbound/pagechunk/internal/ingest"
	"github.com/northbound/pagechunk/internal/logger"
	"github.com/northbound/pagechunk/internal/queue"
	"github.com/northbound/pagechunk/internal/worker"
)

// JobTypeChunkDocument names jobs that run one file through the pipeline
const JobTypeChunkDocument = "chunk_document"

// ErrUnexpectedJob is returned for jobs of another type
var ErrUnexpectedJob = errors.New("unexpected job type")

// ChunkDocumentPayload represents the payload for a chunk document job.
type ChunkDocumentPayload struct {
	DocumentID  string    `json:"documentId"`
	Path        string    `json:"path"`
	RequestedAt time.Time `json:"requestedAt"`
}

// NewChunkDocumentJob creates a new job for chunking the file at path.
func NewChunkDocumentJob(path string) (queue.Job, ChunkDocumentPayload, error) {
	payload := ChunkDocumentPayload{
		DocumentID:  uuid.New().String(),
		Path:        path,
		RequestedAt: time.Now(),
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return queue.Job{}, payload, fmt.Errorf("failed to marshal payload: %w", err)
	}

	job := queue.Job{
		Type:      JobTypeChunkDocument,
		Payload:   payloadJSON,
		CreatedAt: payload.RequestedAt,
	}
	logger.Debugf("NewChunkDocumentJob: documentId=%s path=%s", payload.DocumentID, path)
	return job, payload, nil
}

// EnqueueChunkDocument enqueues a chunk document job and returns its payload.
func EnqueueChunkDocument(ctx context.Context, q queue.Queue, path string) (ChunkDocumentPayload, error) {
	job, payload, err := NewChunkDocumentJob(path)
	if err != nil {
		return payload, err
	}

	if err := q.Enqueue(ctx, job); err != nil {
		logger.Errorf("EnqueueChunkDocument: failed to enqueue job: %v", err)
		return payload, err
	}

	logger.Infof("EnqueueChunkDocument: enqueued %s as %s", path, payload.DocumentID)
	return payload, nil
}

// Handler returns a worker handler that processes chunk document jobs with svc.
func Handler(svc *ingest.Service) worker.HandlerFunc {
	return func(ctx context.Context, job queue.Job) error {
		if job.Type != JobTypeChunkDocument {
			return fmt.Errorf("%w: %s", ErrUnexpectedJob, job.Type)
		}

		var payload ChunkDocumentPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		if payload.DocumentID == "" {
			payload.DocumentID = uuid.New().String()
		}

		logger.Infof("HandleChunkDocument: documentId=%s path=%s requestedAt=%s",
			payload.DocumentID, payload.Path, payload.RequestedAt.Format(time.RFC3339))

		res, err := svc.ProcessFileWithID(ctx, payload.DocumentID, payload.Path)
		if err != nil {
			return err
		}

		logger.Infof("HandleChunkDocument: documentId=%s pages=%d chunks=%d tokens=%d took=%s",
			res.DocumentID, res.Pages, len(res.Chunks), res.TokenCount, res.Duration)
		return nil
	}
}
