package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/northbound/pagechunk/internal/chunker"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Chunking.TokenLimit != 500 || cfg.Chunking.OverlapSize != 50 {
		t.Errorf("unexpected chunking defaults %+v", cfg.Chunking)
	}
	if !cfg.Cleaning.StripWatermarks || !cfg.Cleaning.NormalizeUnicode {
		t.Errorf("unexpected cleaning defaults %+v", cfg.Cleaning)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Debounce = %v", cfg.Watch.Debounce)
	}

	opts, err := cfg.PipelineOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Mode != chunker.ModeSentence || opts.TokenLimit != 500 {
		t.Errorf("unexpected pipeline options %+v", opts)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "config.yaml", `
chunking:
  token_limit: 256
  mode: legacy
cleaning:
  remove_headers_footers: true
watch:
  debounce: 500ms
`)
	t.Setenv("PAGECHUNK_CHUNKING_OVERLAP_SIZE", "10")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Chunking.TokenLimit != 256 {
		t.Errorf("TokenLimit = %d, want 256", cfg.Chunking.TokenLimit)
	}
	if cfg.Chunking.OverlapSize != 10 {
		t.Errorf("OverlapSize = %d, want env override 10", cfg.Chunking.OverlapSize)
	}
	if !cfg.Cleaning.RemoveHeadersFooters {
		t.Error("RemoveHeadersFooters not read from file")
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Watch.Debounce)
	}

	opts, err := cfg.PipelineOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Mode != chunker.ModeLegacy {
		t.Errorf("Mode = %q", opts.Mode)
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	writeFile(t, dir, ".env", "PAGECHUNK_REDIS_ADDR=redis.internal:6380\n")
	t.Cleanup(func() { os.Unsetenv("PAGECHUNK_REDIS_ADDR") })

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Redis.Addr != "redis.internal:6380" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "bad.yaml", "chunking:\n  token_limit: 0\n")

	_, err := LoadConfig(path)
	if !errors.Is(err, chunker.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "nested", "config.yaml")

	if err := WriteDefaultConfig(path); err != nil {
		t.Fatalf("WriteDefaultConfig: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Redis.Queue != "pagechunk:jobs" || cfg.Worker.Count != 4 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := NewRedisClient(context.Background(), RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	defer client.Close()

	mr.Close()
	if _, err := NewRedisClient(context.Background(), RedisConfig{Addr: addr}); err == nil {
		t.Error("expected error when redis is down")
	}
}
