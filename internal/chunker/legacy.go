// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package chunker

import (
	"strings"
	"unicode"
)

// boundaryMarks are the characters a legacy boundary may snap to
const boundaryMarks = ".!?;"

// periodGuard is how far to look for another period before rejecting a boundary
const periodGuard = 5

// chunkOffsets splits text into roughly equal rune ranges sized from the token
// count, each interior boundary shifted left by OverlapSize and snapped to
// punctuation. Starts snap backward and ends snap forward, so neighbouring
// chunks may share text. Offsets are clamped to the text and chunks that come
// out empty are skipped.
func (c *Chunker) chunkOffsets(text string) []Chunk {
	chunks := make([]Chunk, 0)
	if strings.TrimSpace(text) == "" {
		return chunks
	}

	runes := []rune(text)
	n := len(runes)
	limit := c.config.TokenLimit
	overlap := c.config.OverlapSize

	total := c.counter.Count(text)
	if total <= limit {
		return append(chunks, c.spanChunk(runes, 0, n, 0))
	}

	numChunks := (total + limit - 1) / limit
	size := n / numChunks

	prevEnd := 0
	for i := 0; i < numChunks; i++ {
		start := 0
		if i > 0 {
			start = snapBackward(runes, clamp(i*size-overlap, 0, n))
		}
		if overlap == 0 && start < prevEnd {
			start = prevEnd
		}

		end := n
		if i < numChunks-1 {
			end = snapForward(runes, clamp((i+1)*size-overlap, 0, n))
		}
		if end < start {
			end = start
		}
		prevEnd = end

		if strings.TrimSpace(string(runes[start:end])) == "" {
			continue
		}
		chunks = append(chunks, c.spanChunk(runes, start, end, len(chunks)))
	}

	return chunks
}

func (c *Chunker) spanChunk(runes []rune, start, end, index int) Chunk {
	text := strings.TrimSpace(string(runes[start:end]))
	tokens := c.counter.Count(text)
	return Chunk{
		Index:      index,
		Text:       text,
		TokenCount: tokens,
		Oversized:  tokens > c.config.TokenLimit,
		Span:       &Span{Start: start, End: end},
	}
}

// snapBackward moves i left until the rune before it is a usable boundary mark
func snapBackward(runes []rune, i int) int {
	for i > 0 {
		if isBoundary(runes, i-1) {
			break
		}
		i--
	}
	return i
}

// snapForward moves i right past the next usable boundary mark
func snapForward(runes []rune, i int) int {
	for i < len(runes) {
		if isBoundary(runes, i) {
			return i + 1
		}
		i++
	}
	return i
}

func isBoundary(runes []rune, i int) bool {
	if !strings.ContainsRune(boundaryMarks, runes[i]) {
		return false
	}
	return !insideNumber(runes, i) && !nearPeriod(runes, i)
}

// insideNumber reports a period between two digits, as in 3.14
func insideNumber(runes []rune, i int) bool {
	return runes[i] == '.' &&
		i > 0 && i < len(runes)-1 &&
		unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1])
}

// nearPeriod reports another period within periodGuard runes, as in "e.g."
func nearPeriod(runes []rune, i int) bool {
	for off := -periodGuard; off <= periodGuard; off++ {
		j := i + off
		if off == 0 || j < 0 || j >= len(runes) {
			continue
		}
		if runes[j] == '.' {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
