// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"
	"os"
	"strings"
)

// parseText reads plain text files (.txt, .md). Form feeds separate pages.
func parseText(filePath string) ([]string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	if len(content) == 0 {
		return nil, nil
	}
	return strings.Split(string(content), "\f"), nil
}
