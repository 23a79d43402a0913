// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/northbound/pagechunk/internal/events"
	"github.com/northbound/pagechunk/internal/ingest"
	"github.com/northbound/pagechunk/internal/logger"
	"github.com/northbound/pagechunk/internal/parser"
	"github.com/northbound/pagechunk/internal/store"
	"github.com/northbound/pagechunk/internal/worker"
)

// ErrNoWatchPaths is returned by Start when no directory could be watched
var ErrNoWatchPaths = errors.New("no watch paths available")

// Options configures a Manager
type Options struct {
	Paths     []string
	Debounce  time.Duration
	Workers   int
	QueueSize int
}

// Status represents the current watcher status
type Status struct {
	WatchingPaths []string `json:"watching_paths"`
	Pending       int      `json:"pending"`
	Processed     int64    `json:"processed"`
	Errors        int64    `json:"errors"`
}

// Manager watches directories and chunks supported files as they settle
type Manager struct {
	opts        Options
	service     *ingest.Service
	decider     *Decider
	broadcaster *events.Broadcaster
	notifier    Notifier
	debouncer   *Debouncer
	pool        *worker.FilePool
	watchers    map[string]*fsnotify.Watcher
	processed   atomic.Int64
	failed      atomic.Int64
	mu          sync.RWMutex
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewManager creates a watcher manager. file_complete events come from the
// service's observer, so svc should normally report to broadcaster as well.
// tracker and notifier may be nil.
func NewManager(opts Options, svc *ingest.Service, tracker Tracker, broadcaster *events.Broadcaster, notifier Notifier) *Manager {
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	if broadcaster == nil {
		broadcaster = events.NewBroadcaster()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}

	m := &Manager{
		opts:        opts,
		service:     svc,
		decider:     NewDecider(tracker),
		broadcaster: broadcaster,
		notifier:    notifier,
		watchers:    make(map[string]*fsnotify.Watcher),
	}
	m.debouncer = NewDebouncer(opts.Debounce, m.enqueue)
	return m
}

// Start starts watching all configured paths. Existing files are scanned once.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, m.cancel = context.WithCancel(ctx)
	m.pool = worker.NewFilePool(ctx, m.opts.Workers, m.opts.QueueSize, m.ProcessFile)
	m.pool.Start()

	for _, path := range m.opts.Paths {
		if err := m.addWatchPath(path); err != nil {
			logger.Errorf("Failed to watch path %s: %v", path, err)
			continue
		}
	}
	if len(m.watchers) == 0 {
		m.cancel()
		m.pool.Stop()
		return ErrNoWatchPaths
	}

	for path, w := range m.watchers {
		m.wg.Add(1)
		go m.processEvents(ctx, path, w)
	}
	return nil
}

// Stop stops all watchers and waits for in-flight files to finish.
// Pending debounced paths are dropped.
func (m *Manager) Stop() {
	m.mu.Lock()
	for path, w := range m.watchers {
		if err := w.Close(); err != nil {
			logger.Warnf("Error closing watcher for %s: %v", path, err)
		}
		delete(m.watchers, path)
	}
	m.mu.Unlock()

	// Event loops and scans are done, nothing triggers the debouncer after this
	m.wg.Wait()
	m.debouncer.Stop()
	if m.pool != nil {
		m.pool.Stop()
	}
	if m.cancel != nil {
		m.cancel()
	}
}

// Status returns current status
func (m *Manager) Status() Status {
	m.mu.RLock()
	paths := make([]string, 0, len(m.watchers))
	for path := range m.watchers {
		paths = append(paths, path)
	}
	m.mu.RUnlock()
	sort.Strings(paths)

	return Status{
		WatchingPaths: paths,
		Pending:       m.debouncer.Pending(),
		Processed:     m.processed.Load(),
		Errors:        m.failed.Load(),
	}
}

// addWatchPath adds a directory to watch recursively. Callers hold m.mu.
func (m *Manager) addWatchPath(rootPath string) error {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if _, exists := m.watchers[absPath]; exists {
		return nil
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := addTree(w, absPath); err != nil {
		w.Close()
		return err
	}

	m.watchers[absPath] = w
	logger.Infof("Watching directory (recursive): %s", absPath)

	m.goScan(absPath)
	return nil
}

func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				logger.Warnf("Failed to watch %s: %v", path, err)
			}
		}
		return nil
	})
}

func (m *Manager) processEvents(ctx context.Context, root string, w *fsnotify.Watcher) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			m.handleEvent(w, event)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Errorf("Watcher error for %s: %v", root, err)
			m.broadcaster.BroadcastFile(events.TypeFileError, root, "watcher error", 0, err)
		}
	}
}

func (m *Manager) handleEvent(w *fsnotify.Watcher, event fsnotify.Event) {
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		m.debouncer.Cancel(event.Name)
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addTree(w, event.Name); err != nil {
				logger.Warnf("Failed to watch new directory %s: %v", event.Name, err)
			}
			m.goScan(event.Name)
			return
		}
	}

	if watchable(event.Name) {
		m.debouncer.Trigger(event.Name)
	}
}

// goScan runs scanExisting tracked by m.wg, so Stop waits for it
func (m *Manager) goScan(dir string) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.scanExisting(dir)
	}()
}

// scanExisting routes files already present through the debouncer
func (m *Manager) scanExisting(dir string) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && watchable(path) {
			m.debouncer.Trigger(path)
		}
		return nil
	})
	if err != nil {
		logger.Warnf("Error scanning directory %s: %v", dir, err)
	}
}

func watchable(path string) bool {
	return parser.IsSupportedFile(path) && !parser.IsTemporaryFile(path)
}

func (m *Manager) enqueue(path string) {
	m.broadcaster.BroadcastFile(events.TypeFileDetected, path, "file detected", 0, nil)
	if !m.pool.Submit(path) {
		logger.Warnf("Dropped %s, worker backlog is full or stopped", path)
	}
}

// ProcessFile chunks one file if its content changed since it was last processed
func (m *Manager) ProcessFile(ctx context.Context, path string) error {
	decision, err := m.decider.Decide(path)
	if err != nil {
		m.fail(path, err)
		return err
	}
	if !decision.ShouldProcess {
		logger.Debugf("Skipping %s: %s", path, decision.Reason)
		return nil
	}

	if err := m.decider.Mark(decision, store.StatusProcessing); err != nil {
		logger.Warnf("Failed to mark %s as processing: %v", path, err)
	}
	m.broadcaster.BroadcastFile(events.TypeFileProcessing, path,
		fmt.Sprintf("processing %s file", decision.Change), 0, nil)

	res, err := m.service.ProcessFile(ctx, path)
	if err != nil {
		if markErr := m.decider.Mark(decision, store.StatusError); markErr != nil {
			logger.Warnf("Failed to mark %s as failed: %v", path, markErr)
		}
		m.fail(path, err)
		return err
	}

	if err := m.decider.Mark(decision, store.StatusDone); err != nil {
		logger.Warnf("Failed to mark %s as done: %v", path, err)
	}
	m.processed.Add(1)
	logger.Infof("Chunked %s: %d pages, %d chunks, %d tokens in %s",
		path, res.Pages, len(res.Chunks), res.TokenCount, res.Duration)
	m.notifier.Notify("pagechunk", fmt.Sprintf("%s: %d chunks", filepath.Base(path), len(res.Chunks)), false)
	return nil
}

func (m *Manager) fail(path string, err error) {
	m.failed.Add(1)
	m.broadcaster.BroadcastFile(events.TypeFileError, path, "failed to process file", 0, err)
	m.notifier.Notify("pagechunk", fmt.Sprintf("Failed to process %s", filepath.Base(path)), true)
}
