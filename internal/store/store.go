// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/northbound/pagechunk/internal/chunker"
)

// Tracked file statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusError      = "error"
)

// Store persists tracked files, documents and their chunks in SQLite
type Store struct {
	db *sql.DB
}

// TrackedFile represents a file being tracked in the database
type TrackedFile struct {
	FilePath      string
	FileHash      string
	LastProcessed sql.NullTime
	Status        string
}

// Document is one processed version of a file
type Document struct {
	ID         string
	Path       string
	FileHash   string
	Pages      int
	TokenCount int
	CreatedAt  time.Time
}

// Open creates or opens the database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows one writer; serialize through a single connection
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates the necessary tables
func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS tracked_files (
		file_path TEXT PRIMARY KEY,
		file_hash TEXT NOT NULL,
		last_processed DATETIME DEFAULT CURRENT_TIMESTAMP,
		status TEXT DEFAULT 'pending'
	);

	CREATE INDEX IF NOT EXISTS idx_tracked_files_hash ON tracked_files(file_hash);
	CREATE INDEX IF NOT EXISTS idx_tracked_files_status ON tracked_files(status);

	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		file_hash TEXT NOT NULL,
		pages INTEGER NOT NULL,
		token_count INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chunks (
		document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		text TEXT NOT NULL,
		token_count INTEGER NOT NULL,
		oversized INTEGER NOT NULL DEFAULT 0,
		span_start INTEGER,
		span_end INTEGER,
		PRIMARY KEY (document_id, idx)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// GetTrackedFile retrieves a tracked file by path. It returns nil, nil when
// the file is not tracked.
func (s *Store) GetTrackedFile(filePath string) (*TrackedFile, error) {
	var tf TrackedFile

	err := s.db.QueryRow(
		"SELECT file_path, file_hash, last_processed, status FROM tracked_files WHERE file_path = ?",
		filePath,
	).Scan(&tf.FilePath, &tf.FileHash, &tf.LastProcessed, &tf.Status)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked file: %w", err)
	}
	return &tf, nil
}

// UpsertTrackedFile inserts or updates a tracked file
func (s *Store) UpsertTrackedFile(filePath, fileHash, status string) error {
	const query = `
		INSERT INTO tracked_files (file_path, file_hash, status, last_processed)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(file_path) DO UPDATE SET
			file_hash = excluded.file_hash,
			status = excluded.status,
			last_processed = CURRENT_TIMESTAMP
	`

	if _, err := s.db.Exec(query, filePath, fileHash, status); err != nil {
		return fmt.Errorf("failed to upsert tracked file: %w", err)
	}
	return nil
}

// UpdateStatus updates only the status for a file
func (s *Store) UpdateStatus(filePath, status string) error {
	_, err := s.db.Exec("UPDATE tracked_files SET status = ? WHERE file_path = ?", status, filePath)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

// DeleteTrackedFile removes a file from tracking along with its stored document
func (s *Store) DeleteTrackedFile(filePath string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tracked_files WHERE file_path = ?", filePath); err != nil {
		return fmt.Errorf("failed to delete tracked file: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM documents WHERE path = ?", filePath); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return tx.Commit()
}

// SaveDocument stores a document and its chunks, replacing any earlier version
// of the same path
func (s *Store) SaveDocument(ctx context.Context, doc Document, chunks []chunker.Chunk) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE path = ?", doc.Path); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO documents (id, path, file_hash, pages, token_count, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		doc.ID, doc.Path, doc.FileHash, doc.Pages, doc.TokenCount, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (document_id, idx, text, token_count, oversized, span_start, span_end) VALUES (?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		var start, end sql.NullInt64
		if c.Span != nil {
			start = sql.NullInt64{Int64: int64(c.Span.Start), Valid: true}
			end = sql.NullInt64{Int64: int64(c.Span.End), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, doc.ID, c.Index, c.Text, c.TokenCount, c.Oversized, start, end); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", c.Index, err)
		}
	}

	return tx.Commit()
}

// DocumentByPath returns the stored document for a path, or nil if none
func (s *Store) DocumentByPath(ctx context.Context, path string) (*Document, error) {
	var d Document
	err := s.db.QueryRowContext(ctx,
		"SELECT id, path, file_hash, pages, token_count, created_at FROM documents WHERE path = ?",
		path,
	).Scan(&d.ID, &d.Path, &d.FileHash, &d.Pages, &d.TokenCount, &d.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return &d, nil
}

// Chunks returns a document's chunks in order
func (s *Store) Chunks(ctx context.Context, documentID string) ([]chunker.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT idx, text, token_count, oversized, span_start, span_end FROM chunks WHERE document_id = ? ORDER BY idx",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []chunker.Chunk
	for rows.Next() {
		var c chunker.Chunk
		var start, end sql.NullInt64
		if err := rows.Scan(&c.Index, &c.Text, &c.TokenCount, &c.Oversized, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if start.Valid && end.Valid {
			c.Span = &chunker.Span{Start: int(start.Int64), End: int(end.Int64)}
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
