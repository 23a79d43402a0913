// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var (
	docxPageBreak = regexp.MustCompile(`<w:br [^>]*w:type="page"[^>]*/>|<w:lastRenderedPageBreak/>`)
	docxParagraph = regexp.MustCompile(`</w:p>|<w:br[^>]*/>|<w:cr/>`)
	docxTab       = regexp.MustCompile(`<w:tab/>`)
	xmlTag        = regexp.MustCompile(`<[^>]+>`)
)

// parseDOCX extracts text from a DOCX file, splitting pages on explicit page breaks
func parseDOCX(filePath string) ([]string, error) {
	doc, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open DOCX file: %w", err)
	}
	defer doc.Close()

	return docxPages(doc.Editable().GetContent()), nil
}

// docxPages turns document.xml content into page texts
func docxPages(content string) []string {
	content = docxPageBreak.ReplaceAllString(content, "\f")
	content = docxParagraph.ReplaceAllString(content, "\n")
	content = docxTab.ReplaceAllString(content, "\t")
	content = xmlTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	if strings.TrimSpace(content) == "" {
		return nil
	}
	return strings.Split(content, "\f")
}
