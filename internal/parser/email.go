// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mnako/letters"
)

// parseEmail extracts headers and body of an EML file as a single page
func parseEmail(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open EML file: %w", err)
	}
	defer file.Close()

	email, err := letters.ParseEmail(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse EML file: %w", err)
	}

	var builder strings.Builder

	if email.Headers.Subject != "" {
		builder.WriteString(fmt.Sprintf("Subject: %s\n", email.Headers.Subject))
	}

	if len(email.Headers.From) > 0 {
		from := email.Headers.From[0]
		sender := from.Address
		if from.Name != "" {
			sender = fmt.Sprintf("%s <%s>", from.Name, from.Address)
		}
		builder.WriteString(fmt.Sprintf("Sender: %s\n", sender))
	}

	if !email.Headers.Date.IsZero() {
		builder.WriteString(fmt.Sprintf("Date: %s\n", email.Headers.Date.Format(time.RFC3339)))
	}

	builder.WriteString("\n")

	// Prefer text body, fall back to the visible text of the HTML body
	switch {
	case email.Text != "":
		builder.WriteString(email.Text)
	case email.HTML != "":
		body, err := htmlText(strings.NewReader(email.HTML))
		if err != nil {
			return nil, err
		}
		builder.WriteString(body)
	}

	return []string{strings.TrimSpace(builder.String())}, nil
}
