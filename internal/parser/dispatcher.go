// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedFormat is returned for files no parser can extract text from
var ErrUnsupportedFormat = errors.New("parser: unsupported format")

var parsers = map[string]Parser{
	".pdf":  ParserFunc(parsePDF),
	".docx": ParserFunc(parseDOCX),
	".txt":  ParserFunc(parseText),
	".md":   ParserFunc(parseText),
	".xlsx": ParserFunc(parseExcel),
	".xls":  ParserFunc(parseExcel),
	".html": ParserFunc(parseHTML),
	".htm":  ParserFunc(parseHTML),
	".eml":  ParserFunc(parseEmail),
}

// ForFile returns the parser for a file's extension. It fails before the file
// is touched when the format is not supported.
func ForFile(filePath string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	p, ok := parsers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return p, nil
}

// ExtractPages routes a file to the appropriate parser based on its extension
func ExtractPages(filePath string) ([]string, error) {
	p, err := ForFile(filePath)
	if err != nil {
		return nil, err
	}
	return p.ExtractPages(filePath)
}

// SupportedExtensions lists the extensions ForFile accepts, sorted
func SupportedExtensions() []string {
	exts := make([]string, 0, len(parsers))
	for ext := range parsers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// IsSupportedFile checks if a file extension is supported
func IsSupportedFile(filePath string) bool {
	_, ok := parsers[strings.ToLower(filepath.Ext(filePath))]
	return ok
}

// IsTemporaryFile checks if a file is a temporary file (e.g., ~$doc.docx)
func IsTemporaryFile(filePath string) bool {
	base := filepath.Base(filePath)
	// Check for common temporary file patterns
	if strings.HasPrefix(base, "~$") {
		return true
	}
	if strings.HasPrefix(base, "._") {
		return true
	}
	if strings.HasSuffix(base, ".tmp") {
		return true
	}
	return false
}
