// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Split breaks text into sentences at every whitespace run that directly follows
// a '.', '!' or '?'. There is no abbreviation or decimal handling: "Fig. 3" yields
// two sentences. Fragments are trimmed and empty ones are dropped.
func Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var sentences []string
	start := 0
	prev := rune(0)

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) && isTerminal(prev) {
			sentences = appendFragment(sentences, text[start:i])

			// Swallow the whole whitespace run
			j := i
			for j < len(text) {
				r2, s2 := utf8.DecodeRuneInString(text[j:])
				if !unicode.IsSpace(r2) {
					break
				}
				j += s2
			}
			start = j
			i = j
			prev = ' '
			continue
		}
		prev = r
		i += size
	}

	return appendFragment(sentences, text[start:])
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func appendFragment(sentences []string, fragment string) []string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return sentences
	}
	return append(sentences, fragment)
}
