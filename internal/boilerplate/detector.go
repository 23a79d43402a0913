// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package boilerplate

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/northbound/pagechunk/internal/segment"
)

// PageBreak separates page texts when joined. Cleaned pages are single-line, so
// the marker cannot occur inside them.
const PageBreak = "\n\n---\n\n"

// placeholder stands in for a digit run in masked sentences. It is a
// private-use rune so it never collides with real text.
const placeholder = '\uE000'

// Config holds the detection thresholds
type Config struct {
	// MinSharedWords is how many meaningful words two sentences must share for a hit
	MinSharedWords int
	// MinSharedHits is how many other sentences must produce a hit to flag a numeric sentence
	MinSharedHits int
	// MinMaskedLength is the minimum rune length of a masked sentence
	MinMaskedLength int
	// MinPlaceholders is the minimum number of digit runs in a masked sentence
	MinPlaceholders int
	// MinStructureMatches is how many other sentences must share the masked form
	MinStructureMatches int
	// FallbackEdgeLines is how many lines at each end the fallback inspects
	FallbackEdgeLines int
	// FallbackMinLineLength drops shorter edge lines in fallback mode
	FallbackMinLineLength int
}

// DefaultConfig returns the thresholds used by the pipeline
func DefaultConfig() Config {
	return Config{
		MinSharedWords:        2,
		MinSharedHits:         2,
		MinMaskedLength:       5,
		MinPlaceholders:       2,
		MinStructureMatches:   2,
		FallbackEdgeLines:     2,
		FallbackMinLineLength: 20,
	}
}

// Sentence is a sentence with the page it came from
type Sentence struct {
	Text     string
	Page     int
	Position int
}

// Result describes one detection run
type Result struct {
	// Text is the input with boilerplate removed
	Text string `json:"text"`
	// Pages are the surviving non-empty pages, in order
	Pages []string `json:"pages"`
	// Duplicates are sentences found verbatim on two or more pages
	Duplicates []string `json:"duplicates"`
	// Patterns are sentences flagged by the numeric or masked-structure heuristics
	Patterns []string `json:"patterns"`
	// Removed counts removed sentence occurrences (lines in fallback mode)
	Removed int `json:"removed"`
	// Fallback is set when the line-based fallback ran instead of cross-page detection
	Fallback bool `json:"fallback"`
}

// Detector finds and removes repeated headers, footers and page numbers
type Detector struct {
	config Config
}

// New creates a detector with default thresholds
func New() *Detector {
	return &Detector{config: DefaultConfig()}
}

// NewWithConfig creates a detector with custom thresholds
func NewWithConfig(config Config) *Detector {
	return &Detector{config: config}
}

// RemoveBoilerplate returns text with boilerplate sentences removed
func (d *Detector) RemoveBoilerplate(text string) string {
	return d.Detect(text).Text
}

// Detect runs cross-page detection when text holds two or more pages and the
// line fallback otherwise. Pattern detection compares every sentence with every
// other one, so cost grows quadratically with the sentence count.
func (d *Detector) Detect(text string) *Result {
	if text == "" {
		return &Result{}
	}

	var pages []string
	if strings.Contains(text, PageBreak) {
		for _, p := range strings.Split(text, PageBreak) {
			if p = strings.TrimSpace(p); p != "" {
				pages = append(pages, p)
			}
		}
	}

	switch {
	case len(pages) >= 2:
		return d.detectPages(pages)
	case len(pages) == 1:
		return d.fallback(pages[0])
	default:
		return d.fallback(text)
	}
}

func (d *Detector) detectPages(pages []string) *Result {
	perPage := make([][]Sentence, len(pages))
	var all []Sentence
	for i, page := range pages {
		for pos, s := range segment.Split(page) {
			sent := Sentence{Text: s, Page: i, Position: pos}
			perPage[i] = append(perPage[i], sent)
			all = append(all, sent)
		}
	}

	duplicates := d.duplicateSet(perPage)
	patterns := d.patternSet(all)

	remove := make(map[string]struct{}, len(duplicates)+len(patterns))
	for s := range duplicates {
		remove[s] = struct{}{}
	}
	for s := range patterns {
		remove[s] = struct{}{}
	}

	result := &Result{
		Duplicates: sortedKeys(duplicates),
		Patterns:   sortedKeys(patterns),
	}

	for _, sentences := range perPage {
		kept := make([]string, 0, len(sentences))
		for _, s := range sentences {
			if _, ok := remove[s.Text]; ok {
				result.Removed++
				continue
			}
			kept = append(kept, s.Text)
		}
		if page := strings.Join(kept, " "); page != "" {
			result.Pages = append(result.Pages, page)
		}
	}

	result.Text = strings.Join(result.Pages, PageBreak)
	return result
}

// duplicateSet returns sentences that occur on at least two distinct pages
func (d *Detector) duplicateSet(perPage [][]Sentence) map[string]struct{} {
	pageCount := make(map[string]int)
	for _, sentences := range perPage {
		seen := make(map[string]struct{}, len(sentences))
		for _, s := range sentences {
			if _, ok := seen[s.Text]; ok {
				continue
			}
			seen[s.Text] = struct{}{}
			pageCount[s.Text]++
		}
	}

	dups := make(map[string]struct{})
	for text, n := range pageCount {
		if n >= 2 {
			dups[text] = struct{}{}
		}
	}
	return dups
}

// patternSet returns the union of the numeric co-occurrence and masked-structure heuristics
func (d *Detector) patternSet(all []Sentence) map[string]struct{} {
	flagged := make(map[string]struct{})
	if len(all) < 2 {
		return flagged
	}

	words := make([]map[string]struct{}, len(all))
	for i, s := range all {
		words[i] = meaningfulWords(s.Text)
	}

	// Numeric co-occurrence
	for i, s := range all {
		if !containsDigit(s.Text) || len(words[i]) == 0 {
			continue
		}
		hits := 0
		for j := range all {
			if i == j {
				continue
			}
			if sharedCount(words[i], words[j]) >= d.config.MinSharedWords {
				hits++
			}
		}
		if hits >= d.config.MinSharedHits {
			flagged[s.Text] = struct{}{}
		}
	}

	// Masked structure
	masked := make([]string, len(all))
	structureCount := make(map[string]int)
	for i, s := range all {
		m, runs := mask(s.Text)
		masked[i] = m
		if runs >= d.config.MinPlaceholders && utf8.RuneCountInString(m) >= d.config.MinMaskedLength {
			structureCount[m]++
		}
	}
	for i, s := range all {
		if n, ok := structureCount[masked[i]]; ok && n-1 >= d.config.MinStructureMatches {
			flagged[s.Text] = struct{}{}
		}
	}

	return flagged
}

// meaningfulWords returns the word tokens of s minus stop words
func meaningfulWords(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(s, func(r rune) bool { return !isWordRune(r) }) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

func sharedCount(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

// mask replaces maximal digit runs with the placeholder and reports how many it replaced
func mask(s string) (string, int) {
	var b strings.Builder
	b.Grow(len(s))
	runs := 0
	inDigits := false
	for _, r := range s {
		if unicode.IsDigit(r) {
			if !inDigits {
				b.WriteRune(placeholder)
				runs++
				inDigits = true
			}
			continue
		}
		inDigits = false
		b.WriteRune(r)
	}
	return b.String(), runs
}

func containsDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
