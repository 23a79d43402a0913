// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/northbound/pagechunk/internal/ingest"
)

func newChunkCommand(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "chunk <file>",
		Short: "Extract, clean and chunk a document",
		Long:  "Extracts the pages of a document, cleans them and prints the resulting chunks with their token counts. Chunks are also saved when a store path is configured.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.newPipeline()
			if err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			res, err := ingest.NewService(p, st, nil).ProcessFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printChunks(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	return cmd
}

func printChunks(w io.Writer, res *ingest.Result) {
	heading := color.New(color.Bold, color.FgCyan)
	dim := color.New(color.FgHiBlack)
	warn := color.New(color.FgYellow)

	heading.Fprintf(w, "%s\n", res.Path)
	dim.Fprintf(w, "%d pages, %d tokens, %d chunks\n\n", res.Pages, res.TokenCount, len(res.Chunks))

	for _, c := range res.Chunks {
		label := fmt.Sprintf("[%d] %d tokens", c.Index, c.TokenCount)
		if c.Oversized {
			warn.Fprintf(w, "%s (oversized)\n", label)
		} else {
			dim.Fprintln(w, label)
		}
		fmt.Fprintf(w, "%s\n\n", c.Text)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
