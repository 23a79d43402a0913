// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseHTML extracts text from an HTML file as a single page
func parseHTML(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open HTML file: %w", err)
	}
	defer file.Close()

	text, err := htmlText(file)
	if err != nil {
		return nil, err
	}
	return []string{text}, nil
}

// htmlText returns the visible text of an HTML document with block elements on
// their own lines
func htmlText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Remove script, style, and noscript tags before extracting text
	doc.Find("script, style, noscript, template").Remove()

	// Keep block boundaries as line breaks for the watermark heuristics
	doc.Find("p, div, br, li, tr, h1, h2, h3, h4, h5, h6").Each(func(i int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return strings.TrimSpace(doc.Text()), nil
}
