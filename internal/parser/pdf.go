// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// parsePDF extracts the text of every PDF page using go-fitz (MuPDF)
// API reference: https://pkg.go.dev/github.com/gen2brain/go-fitz
func parsePDF(filePath string) ([]string, error) {
	doc, err := fitz.New(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	pages := make([]string, numPages)

	for i := 0; i < numPages; i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			// Keep the slot so page positions stay aligned
			continue
		}
		pages[i] = pageText
	}

	return pages, nil
}
