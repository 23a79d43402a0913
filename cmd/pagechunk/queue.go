// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/northbound/pagechunk/internal/config"
	"github.com/northbound/pagechunk/internal/ingest"
	"github.com/northbound/pagechunk/internal/jobs"
	"github.com/northbound/pagechunk/internal/parser"
	"github.com/northbound/pagechunk/internal/queue"
	"github.com/northbound/pagechunk/internal/worker"
)

// openQueue connects to Redis and returns the job queue with a close func
func (a *app) openQueue(ctx context.Context) (*queue.RedisQueue, func(), error) {
	client, err := config.NewRedisClient(ctx, a.cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	q, err := queue.NewRedisQueue(ctx, client, a.cfg.Redis.Queue)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return q, func() { client.Close() }, nil
}

func newEnqueueCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue <file>...",
		Short: "Queue documents for chunking by workers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Reject the whole batch before anything is queued
			paths := make([]string, 0, len(args))
			for _, arg := range args {
				if !parser.IsSupportedFile(arg) {
					return fmt.Errorf("%w: %s", parser.ErrUnsupportedFormat, arg)
				}
				abs, err := filepath.Abs(arg)
				if err != nil {
					return err
				}
				paths = append(paths, abs)
			}

			q, closeQueue, err := a.openQueue(cmd.Context())
			if err != nil {
				return err
			}
			defer closeQueue()

			dim := color.New(color.FgHiBlack)
			for _, path := range paths {
				payload, err := jobs.EnqueueChunkDocument(cmd.Context(), q, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", payload.DocumentID, dim.Sprint(path))
			}
			return nil
		},
	}
}

func newWorkerCommand(a *app) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Process queued documents until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Worker.Count
			}

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
			} else {
				a.log.Warnf("No store configured, chunks will only be logged")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			q, closeQueue, err := a.openQueue(ctx)
			if err != nil {
				return err
			}
			defer closeQueue()

			a.log.Infof("Consuming %s with %d workers", q.Key(), workers)
			stats := &worker.Stats{}
			if err := worker.StartWorkers(ctx, q, jobs.Handler(ingest.NewService(p, st, nil)), workers, stats); err != nil {
				return err
			}

			processed, failed := stats.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped: %d processed, %d failed\n", processed, failed)
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Number of workers (default: worker.count)")
	return cmd
}
