// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package boilerplate

// stopWords are ignored when comparing word sets of numeric sentences.
// Matching is case-sensitive, so "The" is still a meaningful word.
var stopWords = map[string]struct{}{
	"the": {}, "of": {}, "to": {}, "and": {}, "or": {}, "in": {}, "on": {}, "at": {},
	"for": {}, "with": {}, "by": {}, "from": {}, "up": {}, "down": {}, "out": {}, "off": {},
	"over": {}, "under": {}, "into": {}, "onto": {}, "upon": {}, "within": {}, "without": {},
	"through": {}, "throughout": {}, "during": {}, "before": {}, "after": {}, "since": {},
	"until": {}, "while": {}, "where": {}, "when": {}, "why": {}, "how": {}, "what": {},
	"which": {}, "who": {}, "whom": {}, "whose": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "a": {}, "an": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {},
	"been": {}, "being": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {}, "might": {}, "can": {},
	"must": {}, "shall": {},
}

// fallbackPhrases are lines that are boilerplate on their own (compared lowercased)
var fallbackPhrases = map[string]struct{}{
	"page":         {},
	"page of":      {},
	"confidential": {},
	"draft":        {},
	"final":        {},
}

// legalKeywords mark a line as boilerplate wherever they appear in it
var legalKeywords = []string{
	"copyright",
	"all rights reserved",
	"proprietary",
}
