package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/northbound/pagechunk/internal/chunker"
	"github.com/northbound/pagechunk/internal/ingest"
	"github.com/northbound/pagechunk/internal/parser"
)

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	t.Setenv("PAGECHUNK_TOKENIZER_ENCODING", wordsEncoding)
	t.Setenv("PAGECHUNK_LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeReport(t *testing.T, dir string) string {
	t.Helper()
	pages := []string{
		"Acme Corp Report.\nThe first page talks about revenue growth.\nPage 1 of 3.",
		"Acme Corp Report.\nThe second page covers hiring plans.\nPage 2 of 3.",
		"Acme Corp Report.\nThe third page closes with the outlook.\nPage 3 of 3.",
	}
	path := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(path, []byte(strings.Join(pages, "\f")), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestChunkJSON(t *testing.T) {
	dir := setup(t)
	path := writeReport(t, dir)

	out, err := run(t, "--remove-headers-footers", "--token-limit", "12", "chunk", "--json", path)
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}

	var res ingest.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if res.Pages != 3 || len(res.Chunks) != 3 {
		t.Errorf("unexpected result %+v", res)
	}
	if strings.Contains(res.Text, "Acme Corp Report") || strings.Contains(res.Text, "Page 2 of 3") {
		t.Errorf("boilerplate left in %q", res.Text)
	}
}

func TestChunkText(t *testing.T) {
	dir := setup(t)
	path := writeReport(t, dir)

	out, err := run(t, "--no-color", "chunk", path)
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if !strings.Contains(out, "3 pages") || !strings.Contains(out, "[0]") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestChunkErrors(t *testing.T) {
	dir := setup(t)

	if _, err := run(t, "chunk", filepath.Join(dir, "archive.bin")); !errors.Is(err, parser.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := run(t, "--token-limit", "0", "chunk", writeReport(t, dir)); !errors.Is(err, chunker.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := run(t, "--mode", "paragraph", "chunk", writeReport(t, dir)); !errors.Is(err, chunker.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown mode, got %v", err)
	}
}

func TestClean(t *testing.T) {
	dir := setup(t)
	path := writeReport(t, dir)

	out, err := run(t, "--remove-headers-footers", "clean", path)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	want := "The first page talks about revenue growth. " +
		"The second page covers hiring plans. " +
		"The third page closes with the outlook.\n"
	if out != want {
		t.Errorf("clean output = %q", out)
	}

	out, err = run(t, "--remove-headers-footers", "--page-separators", "clean", "--json", path)
	if err != nil {
		t.Fatalf("clean --json: %v", err)
	}
	var res cleanOutput
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res.Boilerplate == nil || res.Boilerplate.Removed != 6 {
		t.Errorf("unexpected boilerplate %+v", res.Boilerplate)
	}
	if strings.Count(res.Text, "---") != 2 {
		t.Errorf("expected page separators in %q", res.Text)
	}
}

func TestInit(t *testing.T) {
	dir := setup(t)
	path := filepath.Join(dir, "conf", "config.yaml")

	if _, err := run(t, "init", path); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if _, err := run(t, "init", path); err == nil {
		t.Error("expected error when the file exists")
	}
	if _, err := run(t, "init", "--force", path); err != nil {
		t.Errorf("init --force: %v", err)
	}

	if _, err := run(t, "--config", path, "clean", writeReport(t, dir)); err != nil {
		t.Errorf("clean with written config: %v", err)
	}
}

func TestEnqueue(t *testing.T) {
	dir := setup(t)
	mr := miniredis.RunT(t)
	t.Setenv("PAGECHUNK_REDIS_ADDR", mr.Addr())
	path := writeReport(t, dir)

	out, err := run(t, "enqueue", path)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("unexpected output %q", out)
	}

	items, err := mr.List("pagechunk:jobs")
	if err != nil || len(items) != 1 {
		t.Fatalf("expected 1 queued job, got %v (%v)", items, err)
	}
	if !strings.Contains(items[0], "chunk_document") {
		t.Errorf("unexpected job %s", items[0])
	}

	if _, err := run(t, "enqueue", path, filepath.Join(dir, "image.png")); !errors.Is(err, parser.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if items, _ := mr.List("pagechunk:jobs"); len(items) != 1 {
		t.Errorf("batch with an unsupported file queued %d jobs", len(items)-1)
	}
}
