package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/northbound/pagechunk/internal/events"
	"github.com/northbound/pagechunk/internal/ingest"
	"github.com/northbound/pagechunk/internal/pipeline"
	"github.com/northbound/pagechunk/internal/store"
	"github.com/northbound/pagechunk/internal/tokenizer"
)

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	alerts   int
}

func (f *fakeNotifier) Notify(title, message string, alert bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	if alert {
		f.alerts++
	}
}

func newManager(t *testing.T, dir string, st *store.Store, n Notifier) (*Manager, chan events.Event) {
	t.Helper()
	b := events.NewBroadcaster()
	ch := make(chan events.Event, 100)
	b.Subscribe(ch)

	p, err := pipeline.New(tokenizer.Words, pipeline.DefaultOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	svc := ingest.NewService(p, st, b)

	var tracker Tracker
	if st != nil {
		tracker = st
	}
	m := NewManager(Options{
		Paths:    []string{dir},
		Debounce: 20 * time.Millisecond,
		Workers:  2,
	}, svc, tracker, b, n)
	return m, ch
}

func waitFor(t *testing.T, ch chan events.Event, eventType, path string) events.Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e := <-ch:
			if e.Type == eventType && e.Path == path {
				return e
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s on %s", eventType, path)
		}
	}
}

func TestManager_ProcessesExistingAndNewFiles(t *testing.T) {
	dir := t.TempDir()
	st := openStore(t)
	notifier := &fakeNotifier{}

	existing := filepath.Join(dir, "existing.txt")
	os.WriteFile(existing, []byte("Existing notes are chunked at startup."), 0644)
	os.WriteFile(filepath.Join(dir, "ignored.bin"), []byte("binary"), 0644)

	m, ch := newManager(t, dir, st, notifier)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	e := waitFor(t, ch, events.TypeFileComplete, existing)
	if e.Chunks != 1 {
		t.Errorf("Chunks = %d, want 1", e.Chunks)
	}

	sub := filepath.Join(dir, "sub")
	os.Mkdir(sub, 0755)
	time.Sleep(50 * time.Millisecond)
	added := filepath.Join(sub, "added.txt")
	os.WriteFile(added, []byte("A file dropped into a new folder. It has two sentences."), 0644)
	waitFor(t, ch, events.TypeFileComplete, added)

	doc, err := st.DocumentByPath(context.Background(), added)
	if err != nil || doc == nil {
		t.Fatalf("document not stored: %v", err)
	}
	tracked, err := st.GetTrackedFile(added)
	if err != nil || tracked == nil || tracked.Status != store.StatusDone {
		t.Errorf("unexpected tracked file %+v, %v", tracked, err)
	}

	status := m.Status()
	if len(status.WatchingPaths) != 1 || status.Processed < 2 || status.Errors != 0 {
		t.Errorf("unexpected status %+v", status)
	}

	notifier.mu.Lock()
	if len(notifier.messages) < 2 || notifier.alerts != 0 {
		t.Errorf("unexpected notifications %v", notifier.messages)
	}
	notifier.mu.Unlock()
}

func TestManager_ProcessFileSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	st := openStore(t)
	m, ch := newManager(t, dir, st, nil)

	path := filepath.Join(dir, "doc.txt")
	os.WriteFile(path, []byte("Only processed once."), 0644)

	ctx := context.Background()
	if err := m.ProcessFile(ctx, path); err != nil {
		t.Fatal(err)
	}
	if err := m.ProcessFile(ctx, path); err != nil {
		t.Fatal(err)
	}

	completes := 0
	for len(ch) > 0 {
		if e := <-ch; e.Type == events.TypeFileComplete {
			completes++
		}
	}
	if completes != 1 {
		t.Errorf("expected 1 file_complete, got %d", completes)
	}
	if m.Status().Processed != 1 {
		t.Errorf("Processed = %d", m.Status().Processed)
	}
}

func TestManager_ProcessFileError(t *testing.T) {
	notifier := &fakeNotifier{}
	m, ch := newManager(t, t.TempDir(), nil, notifier)

	if err := m.ProcessFile(context.Background(), "/does/not/exist.txt"); err == nil {
		t.Fatal("expected error")
	}
	e := <-ch
	if e.Type != events.TypeFileError || e.Error == "" {
		t.Errorf("unexpected event %+v", e)
	}
	if notifier.alerts != 1 || m.Status().Errors != 1 {
		t.Errorf("alerts = %d, errors = %d", notifier.alerts, m.Status().Errors)
	}
}

func TestManager_StopWaitsForScan(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 200; i++ {
		name := filepath.Join(dir, fmt.Sprintf("note-%03d.txt", i))
		if err := os.WriteFile(name, []byte("Short note."), 0644); err != nil {
			t.Fatal(err)
		}
	}

	m, _ := newManager(t, dir, nil, nil)
	m.opts.Debounce = time.Hour
	m.debouncer = NewDebouncer(time.Hour, m.enqueue)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	m.Stop()

	// A scan still running after Stop would keep adding timers
	time.Sleep(50 * time.Millisecond)
	if n := m.Status().Pending; n != 0 {
		t.Errorf("Pending = %d after Stop, want 0", n)
	}
}
