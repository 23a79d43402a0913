// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/northbound/pagechunk/internal/boilerplate"
	"github.com/northbound/pagechunk/internal/parser"
)

type cleanOutput struct {
	Path        string              `json:"path"`
	Pages       int                 `json:"pages"`
	TokenCount  int                 `json:"token_count"`
	Text        string              `json:"text"`
	Boilerplate *boilerplate.Result `json:"boilerplate,omitempty"`
}

func newCleanCommand(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "clean <file>",
		Short: "Print the cleaned text of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.newPipeline()
			if err != nil {
				return err
			}

			pages, err := parser.ExtractPages(args[0])
			if err != nil {
				return err
			}
			res, err := p.Process(pages)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), cleanOutput{
					Path:        args[0],
					Pages:       res.Pages,
					TokenCount:  res.TokenCount,
					Text:        res.Text,
					Boilerplate: res.Boilerplate,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	return cmd
}
