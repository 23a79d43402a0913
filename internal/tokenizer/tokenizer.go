// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package tokenizer

import (
	"errors"
	"strings"
)

// ErrUnavailable is returned when no tokenizer vocabulary can be loaded.
// Callers must treat it as fatal: chunk sizes are only meaningful in real tokens.
var ErrUnavailable = errors.New("tokenizer: unavailable")

// Counter maps text to a non-negative token count.
//
// Implementations must be deterministic for a fixed vocabulary and safe for
// concurrent use once constructed; the pipeline shares a single Counter across
// every document it processes.
type Counter interface {
	Count(text string) int
}

// CounterFunc adapts a plain function to the Counter interface
type CounterFunc func(text string) int

// Count calls f(text)
func (f CounterFunc) Count(text string) int {
	return f(text)
}

// Words counts whitespace-separated words. It is deterministic and has no
// vocabulary, which makes it useful for tests and dry runs; it is never used as
// an implicit fallback for a missing subword tokenizer.
var Words = CounterFunc(func(text string) int {
	return len(strings.Fields(text))
})
