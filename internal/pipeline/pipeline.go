// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package pipeline

import (
	"fmt"
	"strings"

	"github.com/northbound/pagechunk/internal/boilerplate"
	"github.com/northbound/pagechunk/internal/chunker"
	"github.com/northbound/pagechunk/internal/cleaner"
	"github.com/northbound/pagechunk/internal/events"
	"github.com/northbound/pagechunk/internal/segment"
	"github.com/northbound/pagechunk/internal/tokenizer"
)

// PageBreak separates pages in normalized text
const PageBreak = boilerplate.PageBreak

// Options selects the pipeline behaviour
type Options struct {
	// AddPageSeparators keeps PageBreak between pages in the output text
	AddPageSeparators bool
	// RemoveHeadersFooters runs the boilerplate detector
	RemoveHeadersFooters bool
	// StripWatermarks drops margin marks and vertical watermark blocks
	StripWatermarks bool
	// NormalizeUnicode applies NFKC to page text
	NormalizeUnicode bool

	Mode        chunker.Mode
	TokenLimit  int
	OverlapSize int
}

// DefaultOptions returns sentence-mode chunking at 500 tokens with watermark
// stripping and Unicode normalization on
func DefaultOptions() Options {
	return Options{
		StripWatermarks:  true,
		NormalizeUnicode: true,
		Mode:             chunker.ModeSentence,
		TokenLimit:       chunker.DefaultTokenLimit,
		OverlapSize:      chunker.DefaultOverlapSize,
	}
}

// ChunkerConfig returns the chunking part of the options
func (o Options) ChunkerConfig() chunker.Config {
	return chunker.Config{
		TokenLimit:  o.TokenLimit,
		OverlapSize: o.OverlapSize,
		Mode:        o.Mode,
	}
}

// Result is the output of Process
type Result struct {
	// Text is the cleaned document text that was chunked
	Text string `json:"text"`
	// Pages is the number of non-empty input pages
	Pages int `json:"pages"`
	// Chunks are in document order
	Chunks []chunker.Chunk `json:"chunks"`
	// TokenCount is the token count of Text
	TokenCount int `json:"token_count"`
	// Boilerplate is nil when header/footer removal is off
	Boilerplate *boilerplate.Result `json:"boilerplate,omitempty"`
}

// Pipeline cleans, de-boilerplates and chunks documents. It holds only
// immutable configuration and the shared counter, so one value can serve
// concurrent callers as long as the counter and observer are safe to share.
type Pipeline struct {
	counter  tokenizer.Counter
	opts     Options
	cleaner  *cleaner.Cleaner
	detector *boilerplate.Detector
	chunker  *chunker.Chunker
	observer events.Observer
}

// New creates a pipeline. A nil observer means no events are emitted.
func New(counter tokenizer.Counter, opts Options, observer events.Observer) (*Pipeline, error) {
	ch, err := chunker.New(counter, opts.ChunkerConfig())
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if observer == nil {
		observer = events.Nop
	}

	return &Pipeline{
		counter: counter,
		opts:    opts,
		cleaner: cleaner.NewWithOptions(cleaner.Options{
			StripWatermarks:  opts.StripWatermarks,
			NormalizeUnicode: opts.NormalizeUnicode,
		}),
		detector: boilerplate.New(),
		chunker:  ch,
		observer: observer,
	}, nil
}

// Options returns the pipeline options
func (p *Pipeline) Options() Options {
	return p.opts
}

// Normalize cleans every page, drops empty ones and joins the rest. Pages are
// joined with PageBreak when separators or header/footer removal need page
// boundaries, and with a single space otherwise.
func (p *Pipeline) Normalize(pages []string) string {
	cleaned, _ := p.cleanPages(pages)
	text := strings.Join(cleaned, p.joiner())

	p.emit(events.TypeNormalized, "pages normalized", map[string]interface{}{
		"pages":      len(pages),
		"kept_pages": len(cleaned),
		"chars":      len(text),
	})
	return text
}

// RemoveBoilerplate removes repeated headers, footers and page numbers from
// PageBreak-joined text
func (p *Pipeline) RemoveBoilerplate(text string) string {
	return p.detect(text).Text
}

// Chunk splits text into chunks with the given limits and the pipeline's mode.
// Page breaks are treated as plain spaces.
func (p *Pipeline) Chunk(text string, tokenLimit, overlapSize int) ([]chunker.Chunk, error) {
	ch := p.chunker
	if tokenLimit != p.opts.TokenLimit || overlapSize != p.opts.OverlapSize {
		var err error
		ch, err = chunker.New(p.counter, chunker.Config{
			TokenLimit:  tokenLimit,
			OverlapSize: overlapSize,
			Mode:        p.opts.Mode,
		})
		if err != nil {
			return nil, err
		}
	}
	return p.chunk(ch, text), nil
}

// Process runs the whole flow over a document's pages
func (p *Pipeline) Process(pages []string) (*Result, error) {
	result := &Result{}
	cleaned, kept := p.cleanPages(pages)
	result.Pages = len(cleaned)

	var text string
	switch {
	case p.opts.RemoveHeadersFooters && len(cleaned) == 1:
		// The line fallback needs the page before its lines are flattened
		bp := p.detect(p.preparePage(pages[kept[0]]))
		result.Boilerplate = bp
		text = p.cleaner.Clean(bp.Text)
	case p.opts.RemoveHeadersFooters:
		joined := strings.Join(cleaned, PageBreak)
		bp := p.detect(joined)
		result.Boilerplate = bp
		text = bp.Text
	default:
		text = strings.Join(cleaned, p.joiner())
	}

	p.emit(events.TypeNormalized, "document normalized", map[string]interface{}{
		"pages":      len(pages),
		"kept_pages": len(cleaned),
		"chars":      len(text),
	})

	if !p.opts.AddPageSeparators {
		text = strings.ReplaceAll(text, PageBreak, " ")
	}
	result.Text = text
	result.TokenCount = p.counter.Count(text)
	result.Chunks = p.chunk(p.chunker, text)

	return result, nil
}

func (p *Pipeline) chunk(ch *chunker.Chunker, text string) []chunker.Chunk {
	text = strings.ReplaceAll(text, PageBreak, " ")

	var chunks []chunker.Chunk
	if ch.Config().Mode == chunker.ModeLegacy {
		chunks = ch.Chunk(text)
	} else {
		sentences := segment.Split(text)
		p.emit(events.TypeSegmented, "text segmented", map[string]interface{}{
			"sentences": len(sentences),
		})
		chunks = ch.PackSentences(sentences)
	}

	fields := map[string]interface{}{
		"chunks":      len(chunks),
		"token_limit": ch.Config().TokenLimit,
		"mode":        string(ch.Config().Mode),
	}
	oversized := 0
	for _, c := range chunks {
		if c.Oversized {
			oversized++
		}
	}
	fields["oversized"] = oversized

	e := events.New(events.TypeChunked, "text chunked", fields)
	e.Chunks = len(chunks)
	p.observer.Observe(e)
	return chunks
}

func (p *Pipeline) detect(text string) *boilerplate.Result {
	res := p.detector.Detect(text)

	p.emit(events.TypeBoilerplateDetected, "boilerplate detected", map[string]interface{}{
		"duplicates": len(res.Duplicates),
		"patterns":   len(res.Patterns),
		"fallback":   res.Fallback,
	})
	p.emit(events.TypeBoilerplateRemoved, "boilerplate removed", map[string]interface{}{
		"removed": res.Removed,
		"pages":   len(res.Pages),
		"chars":   len(res.Text),
	})
	return res
}

// cleanPages returns the non-empty cleaned pages and their input positions
func (p *Pipeline) cleanPages(pages []string) ([]string, []int) {
	cleaned := make([]string, 0, len(pages))
	kept := make([]int, 0, len(pages))
	for i, page := range pages {
		if c := p.cleaner.Clean(page); c != "" {
			cleaned = append(cleaned, c)
			kept = append(kept, i)
		}
	}
	return cleaned, kept
}

// preparePage applies watermark stripping only, keeping line breaks
func (p *Pipeline) preparePage(page string) string {
	if p.opts.StripWatermarks {
		return cleaner.StripWatermarks(page)
	}
	return page
}

func (p *Pipeline) joiner() string {
	if p.opts.AddPageSeparators || p.opts.RemoveHeadersFooters {
		return PageBreak
	}
	return " "
}

func (p *Pipeline) emit(eventType, message string, fields map[string]interface{}) {
	p.observer.Observe(events.New(eventType, message, fields))
}
