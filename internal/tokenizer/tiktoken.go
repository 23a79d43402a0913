// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package tokenizer

import (
	"fmt"
	"os"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is used when no encoding or model is configured
const DefaultEncoding = "cl100k_base"

// TiktokenConfig selects the BPE vocabulary
type TiktokenConfig struct {
	// Encoding is an encoding name (cl100k_base, o200k_base, ...) or a model name (gpt-4, ...)
	Encoding string

	// CacheDir holds downloaded BPE files; exported as TIKTOKEN_CACHE_DIR when set
	CacheDir string
}

// Tiktoken counts tokens with a tiktoken BPE vocabulary.
// The encoder is loaded once in NewTiktoken and only read afterwards, so a
// single instance can be shared by concurrent workers.
type Tiktoken struct {
	encoding string
	tke      *tiktoken.Tiktoken
}

// NewTiktoken loads the configured vocabulary. It never substitutes a different
// encoding or an approximation: an unknown name or a failed load wraps ErrUnavailable.
func NewTiktoken(cfg TiktokenConfig) (*Tiktoken, error) {
	name := cfg.Encoding
	if name == "" {
		name = DefaultEncoding
	}

	if cfg.CacheDir != "" {
		if err := os.Setenv("TIKTOKEN_CACHE_DIR", cfg.CacheDir); err != nil {
			return nil, fmt.Errorf("%w: set cache dir: %v", ErrUnavailable, err)
		}
	}

	tke, err := tiktoken.GetEncoding(name)
	if err != nil {
		// Not an encoding name, try it as a model name
		var modelErr error
		tke, modelErr = tiktoken.EncodingForModel(name)
		if modelErr != nil {
			return nil, fmt.Errorf("%w: load encoding %q: %v", ErrUnavailable, name, err)
		}
	}

	return &Tiktoken{
		encoding: name,
		tke:      tke,
	}, nil
}

// Count returns the number of BPE tokens in text
func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.tke.Encode(text, nil, nil))
}

// Encoding returns the configured encoding or model name
func (t *Tiktoken) Encoding() string {
	return t.encoding
}
