// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/northbound/pagechunk/internal/segment"
	"github.com/northbound/pagechunk/internal/tokenizer"
)

// ErrInvalidConfig is returned for a non-positive token limit, a negative
// overlap or an unknown mode
var ErrInvalidConfig = errors.New("chunker: invalid config")

const (
	// DefaultTokenLimit is the default maximum number of tokens per chunk
	DefaultTokenLimit = 500
	// DefaultOverlapSize is the default boundary shift in characters (legacy mode only)
	DefaultOverlapSize = 50
)

// Mode selects the chunking strategy
type Mode string

const (
	// ModeSentence packs whole sentences greedily up to the token limit
	ModeSentence Mode = "sentence"
	// ModeLegacy cuts the text at character offsets snapped to punctuation
	ModeLegacy Mode = "legacy"
)

// ParseMode converts a configuration string into a Mode. Empty means ModeSentence.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSentence:
		return ModeSentence, nil
	case ModeLegacy:
		return ModeLegacy, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
	}
}

// Config holds the chunking parameters
type Config struct {
	TokenLimit  int
	OverlapSize int
	Mode        Mode
}

// DefaultConfig returns sentence mode with the default limits
func DefaultConfig() Config {
	return Config{
		TokenLimit:  DefaultTokenLimit,
		OverlapSize: DefaultOverlapSize,
		Mode:        ModeSentence,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.TokenLimit <= 0 {
		return fmt.Errorf("%w: token limit must be positive, got %d", ErrInvalidConfig, c.TokenLimit)
	}
	if c.OverlapSize < 0 {
		return fmt.Errorf("%w: overlap size must not be negative, got %d", ErrInvalidConfig, c.OverlapSize)
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	return nil
}

// Span is a rune offset range into the chunked text
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Chunk is one token-bounded piece of a document. It is not modified after
// being returned.
type Chunk struct {
	Index      int      `json:"index"`
	Text       string   `json:"text"`
	Sentences  []string `json:"sentences,omitempty"`
	TokenCount int      `json:"token_count"`
	// Oversized is set when the chunk exceeds the limit. In sentence mode this only
	// happens for a chunk holding a single sentence.
	Oversized bool `json:"oversized,omitempty"`
	// Span is only set in legacy mode
	Span *Span `json:"span,omitempty"`
}

// Chunker splits text into chunks of at most TokenLimit tokens
type Chunker struct {
	counter tokenizer.Counter
	config  Config
}

// New creates a chunker. The counter is shared, never copied, and must be safe
// for concurrent use if the chunker is.
func New(counter tokenizer.Counter, config Config) (*Chunker, error) {
	if counter == nil {
		return nil, fmt.Errorf("%w: token counter is required", ErrInvalidConfig)
	}
	if config.Mode == "" {
		config.Mode = ModeSentence
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{counter: counter, config: config}, nil
}

// Config returns the chunker configuration
func (c *Chunker) Config() Config {
	return c.config
}

// Chunk splits text according to the configured mode. Empty text yields no chunks.
func (c *Chunker) Chunk(text string) []Chunk {
	if c.config.Mode == ModeLegacy {
		return c.chunkOffsets(text)
	}
	return c.PackSentences(segment.Split(text))
}

// PackSentences groups sentences greedily: a sentence is appended to the current
// chunk unless that would push it over the limit, in which case the chunk is
// closed and the sentence starts the next one. A sentence over the limit on its
// own becomes a single oversized chunk.
func (c *Chunker) PackSentences(sentences []string) []Chunk {
	chunks := make([]Chunk, 0)
	limit := c.config.TokenLimit

	var (
		current       []string
		currentText   string
		currentTokens int
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Index:      len(chunks),
			Text:       currentText,
			Sentences:  current,
			TokenCount: currentTokens,
			Oversized:  currentTokens > limit,
		})
		current = nil
		currentText = ""
		currentTokens = 0
	}

	for _, s := range sentences {
		if s == "" {
			continue
		}

		candidate := s
		if currentText != "" {
			candidate = currentText + " " + s
		}
		// Count the joined text, not a sum of parts: BPE merges across the space
		tokens := c.counter.Count(candidate)

		if tokens > limit && len(current) > 0 {
			flush()
			candidate = s
			tokens = c.counter.Count(s)
		}

		current = append(current, s)
		currentText = candidate
		currentTokens = tokens
	}
	flush()

	return chunks
}
