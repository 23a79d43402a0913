// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package watcher

import (
	"fmt"
	"os"

	"github.com/northbound/pagechunk/internal/ingest"
	"github.com/northbound/pagechunk/internal/logger"
	"github.com/northbound/pagechunk/internal/store"
)

// Change classifies a file against what was last processed
type Change string

const (
	ChangeNew       Change = "new"
	ChangeUpdated   Change = "updated"
	ChangeUnchanged Change = "unchanged"
	ChangeEmpty     Change = "empty"
)

// Tracker records which file contents have been processed
type Tracker interface {
	GetTrackedFile(filePath string) (*store.TrackedFile, error)
	UpsertTrackedFile(filePath, fileHash, status string) error
}

// Decision represents the decision made about a file
type Decision struct {
	FilePath      string
	FileHash      string
	Change        Change
	ShouldProcess bool
	Reason        string
}

// Decider decides whether a file needs chunking. Without a tracker every
// non-empty file is treated as new.
type Decider struct {
	tracker Tracker
}

// NewDecider creates a decider. tracker may be nil.
func NewDecider(tracker Tracker) *Decider {
	return &Decider{tracker: tracker}
}

// Decide determines whether and why to process a file
func (d *Decider) Decide(filePath string) (*Decision, error) {
	decision := &Decision{FilePath: filePath}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() == 0 {
		decision.Change = ChangeEmpty
		decision.Reason = "file is empty"
		return decision, nil
	}

	hash, err := ingest.HashFile(filePath)
	if err != nil {
		return nil, err
	}
	decision.FileHash = hash

	var tracked *store.TrackedFile
	if d.tracker != nil {
		if tracked, err = d.tracker.GetTrackedFile(filePath); err != nil {
			return nil, fmt.Errorf("failed to query tracked files: %w", err)
		}
	}

	switch {
	case tracked == nil:
		decision.Change = ChangeNew
		decision.ShouldProcess = true
		decision.Reason = "new file detected"
	case tracked.FileHash != hash:
		decision.Change = ChangeUpdated
		decision.ShouldProcess = true
		decision.Reason = fmt.Sprintf("content changed (old hash %.12s)", tracked.FileHash)
	case tracked.Status == store.StatusError:
		decision.Change = ChangeUpdated
		decision.ShouldProcess = true
		decision.Reason = "retrying after previous error"
	default:
		decision.Change = ChangeUnchanged
		decision.Reason = "file unchanged (hash matches)"
	}

	logger.Debugf("Decide: %s change=%s hash=%.12s", filePath, decision.Change, hash)
	return decision, nil
}

// Mark records the decision's hash with a status
func (d *Decider) Mark(decision *Decision, status string) error {
	if d.tracker == nil || decision.FileHash == "" {
		return nil
	}
	return d.tracker.UpsertTrackedFile(decision.FilePath, decision.FileHash, status)
}
