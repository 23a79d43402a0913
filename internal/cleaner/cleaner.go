// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package cleaner

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// MarginMarkMinTokens is the minimum token count for a line to be a margin mark
	MarginMarkMinTokens = 8
	// MarginMarkRatio is the minimum share of single-character tokens in a margin mark
	MarginMarkRatio = 0.8
	// VerticalRunMinLines is the minimum length of a run of short lines dropped as a watermark
	VerticalRunMinLines = 8
	// VerticalLineMaxChars is the maximum trimmed length of a line inside a vertical watermark
	VerticalLineMaxChars = 2
)

// Options controls which passes the cleaner runs
type Options struct {
	// StripWatermarks drops margin marks and vertical watermark blocks
	StripWatermarks bool

	// NormalizeUnicode applies NFKC before whitespace normalization
	NormalizeUnicode bool
}

// DefaultOptions returns the options used by the pipeline
func DefaultOptions() Options {
	return Options{
		StripWatermarks:  true,
		NormalizeUnicode: true,
	}
}

// Cleaner normalizes raw page text
type Cleaner struct {
	opts Options
}

// New creates a cleaner with default options
func New() *Cleaner {
	return &Cleaner{opts: DefaultOptions()}
}

// NewWithOptions creates a cleaner with custom options
func NewWithOptions(opts Options) *Cleaner {
	return &Cleaner{opts: opts}
}

// Clean runs watermark stripping on the line form first and only then flattens
// whitespace. The order matters: both watermark heuristics need line geometry.
//
// Clean is not idempotent. Flattening can join short lines into a single line
// of eight or more one-character tokens, which a second pass drops as a margin
// mark: "a b c d\ne f g h" cleans to "a b c d e f g h", and that cleans to "".
func (c *Cleaner) Clean(text string) string {
	if text == "" {
		return ""
	}
	if c.opts.StripWatermarks {
		text = StripWatermarks(text)
	}
	if c.opts.NormalizeUnicode {
		text = norm.NFKC.String(text)
	}
	return NormalizeWhitespace(text)
}

// StripWatermarks removes margin-mark lines and vertical watermark blocks,
// keeping every other line untouched.
func StripWatermarks(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(normalizeLineEndings(text), "\n")
	kept := make([]string, 0, len(lines))

	for i := 0; i < len(lines); {
		if n := verticalRunLength(lines, i); n >= VerticalRunMinLines {
			i += n
			continue
		}
		if !IsMarginMark(lines[i]) {
			kept = append(kept, lines[i])
		}
		i++
	}

	return strings.Join(kept, "\n")
}

// IsMarginMark reports whether a line is a watermark of widely spaced single characters
func IsMarginMark(line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) < MarginMarkMinTokens {
		return false
	}

	single := 0
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) == 1 {
			single++
		}
	}

	return float64(single) >= MarginMarkRatio*float64(len(tokens))
}

// verticalRunLength returns the length of the run of short non-empty lines starting at i
func verticalRunLength(lines []string, i int) int {
	n := 0
	for j := i; j < len(lines); j++ {
		trimmed := strings.TrimSpace(lines[j])
		if trimmed == "" || utf8.RuneCountInString(trimmed) > VerticalLineMaxChars {
			break
		}
		n++
	}
	return n
}

// NormalizeWhitespace turns line breaks into spaces, collapses whitespace runs and
// trims the result. It is idempotent.
func NormalizeWhitespace(text string) string {
	if text == "" {
		return ""
	}
	// strings.Fields splits on unicode.IsSpace, which covers \r and \n
	return strings.Join(strings.Fields(text), " ")
}

func normalizeLineEndings(text string) string {
	return strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(text)
}
