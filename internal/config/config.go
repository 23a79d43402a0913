// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/northbound/pagechunk/internal/chunker"
	"github.com/northbound/pagechunk/internal/pipeline"
)

// EnvPrefix prefixes every environment override, e.g. PAGECHUNK_CHUNKING_TOKEN_LIMIT
const EnvPrefix = "PAGECHUNK"

// Config holds the pagechunk configuration
type Config struct {
	Chunking  ChunkingConfig  `mapstructure:"chunking"`
	Cleaning  CleaningConfig  `mapstructure:"cleaning"`
	Tokenizer TokenizerConfig `mapstructure:"tokenizer"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Store     StoreConfig     `mapstructure:"store"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Log       LogConfig       `mapstructure:"log"`
	Notify    NotifyConfig    `mapstructure:"notify"`
}

// ChunkingConfig holds chunk sizing
type ChunkingConfig struct {
	TokenLimit  int    `mapstructure:"token_limit"`
	OverlapSize int    `mapstructure:"overlap_size"` // legacy mode only
	Mode        string `mapstructure:"mode"`         // sentence | legacy
}

// CleaningConfig holds the normalization switches
type CleaningConfig struct {
	AddPageSeparators    bool `mapstructure:"add_page_separators"`
	RemoveHeadersFooters bool `mapstructure:"remove_headers_footers"`
	StripWatermarks      bool `mapstructure:"strip_watermarks"`
	NormalizeUnicode     bool `mapstructure:"normalize_unicode"`
}

// TokenizerConfig selects the BPE vocabulary
type TokenizerConfig struct {
	Encoding string `mapstructure:"encoding"`
	CacheDir string `mapstructure:"cache_dir"`
}

// RedisConfig holds Redis connection settings for the job queue
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
	Queue    string `mapstructure:"queue"`
}

// WorkerConfig holds worker pool settings
type WorkerConfig struct {
	Count int `mapstructure:"count"`
}

// StoreConfig holds chunk store settings. An empty path disables the store.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// WatchConfig holds directory watcher settings
type WatchConfig struct {
	Paths    []string      `mapstructure:"paths"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
	JSON  bool   `mapstructure:"json"`
}

// NotifyConfig controls desktop notifications from the watcher
type NotifyConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("chunking.token_limit", chunker.DefaultTokenLimit)
	v.SetDefault("chunking.overlap_size", chunker.DefaultOverlapSize)
	v.SetDefault("chunking.mode", string(chunker.ModeSentence))

	v.SetDefault("cleaning.add_page_separators", false)
	v.SetDefault("cleaning.remove_headers_footers", false)
	v.SetDefault("cleaning.strip_watermarks", true)
	v.SetDefault("cleaning.normalize_unicode", true)

	v.SetDefault("tokenizer.encoding", "cl100k_base")
	v.SetDefault("tokenizer.cache_dir", "")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.queue", "pagechunk:jobs")

	v.SetDefault("worker.count", 4)
	v.SetDefault("store.path", "")

	v.SetDefault("watch.paths", []string{"./watch"})
	v.SetDefault("watch.debounce", 2*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.json", false)

	v.SetDefault("notify.enabled", false)
}

// DefaultConfigPath returns ~/.pagechunk/config.yaml
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".pagechunk", "config.yaml"), nil
}

// LoadConfig loads configuration from defaults, the config file and environment.
// With an empty path, ~/.pagechunk/config.yaml is read if it exists. A .env file
// in the working directory is loaded into the environment first.
func LoadConfig(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if configPath == "" {
		if path, err := DefaultConfigPath(); err == nil {
			if _, statErr := os.Stat(path); statErr == nil {
				configPath = path
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
	}

	// Allow environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would make the pipeline unusable
func (c *Config) Validate() error {
	if _, err := chunker.ParseMode(c.Chunking.Mode); err != nil {
		return err
	}
	cfg := chunker.Config{
		TokenLimit:  c.Chunking.TokenLimit,
		OverlapSize: c.Chunking.OverlapSize,
		Mode:        chunker.Mode(strings.ToLower(strings.TrimSpace(c.Chunking.Mode))),
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.Worker.Count < 1 {
		return fmt.Errorf("worker.count must be at least 1, got %d", c.Worker.Count)
	}
	return nil
}

// PipelineOptions converts the chunking and cleaning sections into pipeline options
func (c *Config) PipelineOptions() (pipeline.Options, error) {
	mode, err := chunker.ParseMode(c.Chunking.Mode)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		AddPageSeparators:    c.Cleaning.AddPageSeparators,
		RemoveHeadersFooters: c.Cleaning.RemoveHeadersFooters,
		StripWatermarks:      c.Cleaning.StripWatermarks,
		NormalizeUnicode:     c.Cleaning.NormalizeUnicode,
		Mode:                 mode,
		TokenLimit:           c.Chunking.TokenLimit,
		OverlapSize:          c.Chunking.OverlapSize,
	}, nil
}

// WriteDefaultConfig writes a commented default configuration file
func WriteDefaultConfig(configFile string) error {
	defaultConfig := `# pagechunk configuration
# Every key can be overridden with PAGECHUNK_<SECTION>_<KEY>, e.g. PAGECHUNK_CHUNKING_TOKEN_LIMIT

chunking:
  token_limit: 500      # maximum tokens per chunk
  overlap_size: 50      # boundary shift in characters, legacy mode only
  mode: "sentence"      # sentence | legacy

cleaning:
  add_page_separators: false
  remove_headers_footers: false
  strip_watermarks: true
  normalize_unicode: true

tokenizer:
  encoding: "cl100k_base"
  cache_dir: ""         # where BPE files are cached

redis:
  addr: "127.0.0.1:6379"
  db: 0
  password: ""
  queue: "pagechunk:jobs"

worker:
  count: 4

store:
  path: ""              # SQLite file for chunks, empty disables

watch:
  paths:
    - "./watch"
  debounce: 2s

log:
  level: "info"
  file: ""
  json: false

notify:
  enabled: false
`

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return err
	}
	return os.WriteFile(configFile, []byte(defaultConfig), 0644)
}
