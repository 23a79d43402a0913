package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/northbound/pagechunk/internal/ingest"
	"github.com/northbound/pagechunk/internal/pipeline"
	"github.com/northbound/pagechunk/internal/queue"
	"github.com/northbound/pagechunk/internal/store"
	"github.com/northbound/pagechunk/internal/tokenizer"
	"github.com/northbound/pagechunk/internal/worker"
)

func newQueue(t *testing.T) *queue.RedisQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	q, err := queue.NewRedisQueue(context.Background(), client, "test:jobs")
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func newService(t *testing.T, st *store.Store) *ingest.Service {
	t.Helper()
	p, err := pipeline.New(tokenizer.Words, pipeline.DefaultOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return ingest.NewService(p, st, nil)
}

func TestEnqueueChunkDocument(t *testing.T) {
	q := newQueue(t)
	ctx := context.Background()

	payload, err := EnqueueChunkDocument(ctx, q, "/data/report.pdf")
	if err != nil {
		t.Fatalf("EnqueueChunkDocument: %v", err)
	}
	if payload.DocumentID == "" {
		t.Error("expected a document id")
	}

	job, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if job.Type != JobTypeChunkDocument {
		t.Errorf("Type = %q", job.Type)
	}

	var got ChunkDocumentPayload
	if err := json.Unmarshal(job.Payload, &got); err != nil {
		t.Fatal(err)
	}
	if got.Path != "/data/report.pdf" || got.DocumentID != payload.DocumentID {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestHandler_RejectsOtherJobs(t *testing.T) {
	h := Handler(newService(t, nil))
	err := h(context.Background(), queue.Job{Type: "something_else"})
	if !errors.Is(err, ErrUnexpectedJob) {
		t.Errorf("expected ErrUnexpectedJob, got %v", err)
	}

	err = h(context.Background(), queue.Job{Type: JobTypeChunkDocument, Payload: []byte("{")})
	if err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestHandler_ThroughWorkers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("Shipping resumed on Monday. Orders cleared by Friday."), 0644); err != nil {
		t.Fatal(err)
	}

	st, err := store.Open(filepath.Join(dir, "chunks.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	q := newQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payload, err := EnqueueChunkDocument(ctx, q, path)
	if err != nil {
		t.Fatal(err)
	}

	handler := Handler(newService(t, st))
	stats := &worker.Stats{}
	done := make(chan struct{})
	go func() {
		worker.StartWorkers(ctx, q, handler, 2, stats)
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	for {
		if processed, _ := stats.Snapshot(); processed == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("job was not processed in time")
		case <-time.After(20 * time.Millisecond):
		}
	}
	cancel()
	<-done

	chunks, err := st.Chunks(context.Background(), payload.DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || chunks[0].Text != "Shipping resumed on Monday. Orders cleared by Friday." {
		t.Errorf("unexpected stored chunks %+v", chunks)
	}
}
