// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/northbound/pagechunk/internal/chunker"
	"github.com/northbound/pagechunk/internal/events"
	"github.com/northbound/pagechunk/internal/parser"
	"github.com/northbound/pagechunk/internal/pipeline"
	"github.com/northbound/pagechunk/internal/store"
)

// Result describes one processed file
type Result struct {
	DocumentID string          `json:"document_id"`
	Path       string          `json:"path"`
	FileHash   string          `json:"file_hash"`
	Pages      int             `json:"pages"`
	TokenCount int             `json:"token_count"`
	Text       string          `json:"text"`
	Chunks     []chunker.Chunk `json:"chunks"`
	Duration   time.Duration   `json:"duration"`
}

// Service extracts, cleans and chunks files, optionally persisting the chunks.
// It is safe for concurrent use when its pipeline is.
type Service struct {
	pipeline *pipeline.Pipeline
	store    *store.Store
	events   events.Observer
}

// NewService creates a service. st and observer may be nil.
func NewService(p *pipeline.Pipeline, st *store.Store, observer events.Observer) *Service {
	if observer == nil {
		observer = events.Nop
	}
	return &Service{pipeline: p, store: st, events: observer}
}

// Pipeline returns the service's pipeline
func (s *Service) Pipeline() *pipeline.Pipeline {
	return s.pipeline
}

// ProcessFile runs a file through extraction and the pipeline. Unsupported
// formats fail before the file is read.
func (s *Service) ProcessFile(ctx context.Context, path string) (*Result, error) {
	return s.ProcessFileWithID(ctx, uuid.New().String(), path)
}

// ProcessFileWithID is ProcessFile with a caller-chosen document id
func (s *Service) ProcessFileWithID(ctx context.Context, documentID, path string) (*Result, error) {
	start := time.Now()

	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash, err := HashFile(path)
	if err != nil {
		return nil, err
	}

	pages, err := p.ExtractPages(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	out, err := s.pipeline.Process(pages)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", path, err)
	}

	res := &Result{
		DocumentID: documentID,
		Path:       path,
		FileHash:   hash,
		Pages:      out.Pages,
		TokenCount: out.TokenCount,
		Text:       out.Text,
		Chunks:     out.Chunks,
	}

	if s.store != nil {
		doc := store.Document{
			ID:         res.DocumentID,
			Path:       path,
			FileHash:   hash,
			Pages:      res.Pages,
			TokenCount: res.TokenCount,
		}
		if err := s.store.SaveDocument(ctx, doc, res.Chunks); err != nil {
			return nil, fmt.Errorf("save %s: %w", path, err)
		}
	}

	res.Duration = time.Since(start)
	s.events.Observe(events.Event{
		Type:      events.TypeFileComplete,
		Timestamp: time.Now(),
		Path:      path,
		Message:   fmt.Sprintf("processed %d pages into %d chunks", res.Pages, len(res.Chunks)),
		Chunks:    len(res.Chunks),
	})
	return res, nil
}

// HashFile returns the hex SHA-256 of a file's content
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
