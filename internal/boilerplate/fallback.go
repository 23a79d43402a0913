// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package boilerplate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// fallback handles single-page input. Only the first and last few lines are
// inspected and each is dropped on its own; nothing is compared across sentences.
func (d *Detector) fallback(text string) *Result {
	lines := strings.Split(text, "\n")
	edge := d.config.FallbackEdgeLines

	// Too short to tell a header from the body
	if len(lines) <= 2*edge {
		return singlePage(text, 0)
	}

	drop := make(map[int]bool, 2*edge)
	for i := 0; i < edge; i++ {
		if d.isBoilerplateLine(lines[i]) {
			drop[i] = true
		}
		last := len(lines) - 1 - i
		if d.isBoilerplateLine(lines[last]) {
			drop[last] = true
		}
	}

	if len(drop) == 0 {
		return singlePage(text, 0)
	}

	kept := make([]string, 0, len(lines)-len(drop))
	for i, line := range lines {
		if !drop[i] {
			kept = append(kept, line)
		}
	}
	return singlePage(strings.Join(kept, "\n"), len(drop))
}

func singlePage(text string, removed int) *Result {
	r := &Result{Text: text, Removed: removed, Fallback: true}
	if strings.TrimSpace(text) != "" {
		r.Pages = []string{text}
	}
	return r
}

// isBoilerplateLine reports whether an edge line looks like a header or footer
func (d *Detector) isBoilerplateLine(line string) bool {
	line = strings.TrimSpace(line)
	if isNumeric(line) || utf8.RuneCountInString(line) < d.config.FallbackMinLineLength {
		return true
	}

	lower := strings.ToLower(line)
	if _, ok := fallbackPhrases[lower]; ok {
		return true
	}
	for _, kw := range legalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
