// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

// Parser extracts the raw text of a document, one string per page, in order.
// Pages with no text are returned as empty strings so page positions are kept.
type Parser interface {
	ExtractPages(filePath string) ([]string, error)
}

// ParserFunc adapts a function to the Parser interface
type ParserFunc func(filePath string) ([]string, error)

// ExtractPages calls f(filePath)
func (f ParserFunc) ExtractPages(filePath string) ([]string, error) {
	return f(filePath)
}
