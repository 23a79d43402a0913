// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// parseExcel extracts one page per sheet using a "markdownification" strategy:
// every data row becomes "Row N: Header: value, Header: value."
func parseExcel(filePath string) ([]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	pages := make([]string, 0, len(sheetList))

	for _, sheetName := range sheetList {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			// Skip this sheet if we can't read it (e.g., password protected)
			pages = append(pages, "")
			continue
		}
		pages = append(pages, sheetText(sheetName, rows))
	}

	return pages, nil
}

func sheetText(sheetName string, rows [][]string) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))

	if len(rows) == 0 || len(rows[0]) == 0 {
		return builder.String()
	}

	// First row is headers
	headers := rows[0]

	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]

		rowParts := []string{}
		for colIdx, header := range headers {
			if colIdx >= len(row) {
				break
			}
			value := strings.TrimSpace(row[colIdx])
			if value == "" {
				continue
			}
			headerName := strings.TrimSpace(header)
			if headerName == "" {
				headerName = fmt.Sprintf("Column %d", colIdx+1)
			}
			rowParts = append(rowParts, fmt.Sprintf("%s: %s", headerName, value))
		}

		if len(rowParts) > 0 {
			// The trailing period makes each row its own sentence
			builder.WriteString(fmt.Sprintf("Row %d: %s.\n", rowIdx+1, strings.Join(rowParts, ", ")))
		}
	}

	return builder.String()
}
