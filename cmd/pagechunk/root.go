// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/northbound/pagechunk/internal/config"
	"github.com/northbound/pagechunk/internal/events"
	"github.com/northbound/pagechunk/internal/logger"
	"github.com/northbound/pagechunk/internal/pipeline"
	"github.com/northbound/pagechunk/internal/store"
	"github.com/northbound/pagechunk/internal/tokenizer"
)

// wordsEncoding selects whitespace word counts instead of a BPE vocabulary
const wordsEncoding = "words"

type globalFlags struct {
	configPath           string
	logLevel             string
	mode                 string
	tokenLimit           int
	overlap              int
	pageSeparators       bool
	removeHeadersFooters bool
	noColor              bool
}

// app carries state shared by every subcommand once the config is loaded
type app struct {
	flags globalFlags
	cfg   *config.Config
	log   *logger.Logger
}

// NewRootCommand creates the root command with all subcommands registered
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "pagechunk",
		Short: "Clean extracted document text and split it into token-bounded chunks",
		Long: `pagechunk normalizes text extracted from PDF, Office, HTML, email and text files,
removes repeated headers and footers, and packs sentences into chunks that fit a
token budget for embedding or retrieval.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&a.flags.configPath, "config", "", "Path to config file (default: ~/.pagechunk/config.yaml)")
	f.StringVar(&a.flags.logLevel, "log-level", "", "Log level: debug | info | warn | error")
	f.StringVar(&a.flags.mode, "mode", "", "Chunking mode: sentence | legacy")
	f.IntVar(&a.flags.tokenLimit, "token-limit", 0, "Maximum tokens per chunk")
	f.IntVar(&a.flags.overlap, "overlap", 0, "Boundary shift in characters (legacy mode)")
	f.BoolVar(&a.flags.pageSeparators, "page-separators", false, "Keep page separators in the cleaned text")
	f.BoolVar(&a.flags.removeHeadersFooters, "remove-headers-footers", false, "Remove repeated headers, footers and page numbers")
	f.BoolVar(&a.flags.noColor, "no-color", false, "Disable ANSI color output")

	rootCmd.AddCommand(newChunkCommand(a))
	rootCmd.AddCommand(newCleanCommand(a))
	rootCmd.AddCommand(newWatchCommand(a))
	rootCmd.AddCommand(newEnqueueCommand(a))
	rootCmd.AddCommand(newWorkerCommand(a))
	rootCmd.AddCommand(newInitCommand())

	return rootCmd
}

// load reads the config, applies flag overrides and sets up logging
func (a *app) load(cmd *cobra.Command) error {
	if a.flags.noColor {
		color.NoColor = true
	}

	cfg, err := config.LoadConfig(a.flags.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Chunking.Mode = a.flags.mode
	}
	if flags.Changed("token-limit") {
		cfg.Chunking.TokenLimit = a.flags.tokenLimit
	}
	if flags.Changed("overlap") {
		cfg.Chunking.OverlapSize = a.flags.overlap
	}
	if flags.Changed("page-separators") {
		cfg.Cleaning.AddPageSeparators = a.flags.pageSeparators
	}
	if flags.Changed("remove-headers-footers") {
		cfg.Cleaning.RemoveHeadersFooters = a.flags.removeHeadersFooters
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// stdout is reserved for command output
	l, err := logger.Init(logger.Options{
		File:   cfg.Log.File,
		Level:  cfg.Log.Level,
		JSON:   cfg.Log.JSON,
		Output: os.Stderr,
	})
	if err != nil {
		return err
	}
	if err := l.SetLevel(cfg.Log.Level); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = l
	return nil
}

// newCounter returns the token counter named by the tokenizer section
func newCounter(cfg config.TokenizerConfig) (tokenizer.Counter, error) {
	if strings.EqualFold(cfg.Encoding, wordsEncoding) {
		return tokenizer.Words, nil
	}
	return tokenizer.NewTiktoken(tokenizer.TiktokenConfig{
		Encoding: cfg.Encoding,
		CacheDir: cfg.CacheDir,
	})
}

// newPipeline builds the pipeline from the loaded config. Pipeline events are
// logged at debug level.
func (a *app) newPipeline() (*pipeline.Pipeline, error) {
	counter, err := newCounter(a.cfg.Tokenizer)
	if err != nil {
		return nil, err
	}
	opts, err := a.cfg.PipelineOptions()
	if err != nil {
		return nil, err
	}
	return pipeline.New(counter, opts, events.NewLogObserver(a.log))
}

// openStore opens the configured chunk store, or returns nil when none is set
func (a *app) openStore() (*store.Store, error) {
	if a.cfg.Store.Path == "" {
		return nil, nil
	}
	st, err := store.Open(a.cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}
