// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/northbound/pagechunk/internal/events"
	"github.com/northbound/pagechunk/internal/ingest"
	"github.com/northbound/pagechunk/internal/watcher"
)

func newWatchCommand(a *app) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "watch [dir...]",
		Short: "Watch directories and chunk documents as they change",
		Long:  "Watches directories recursively. New and modified supported files are chunked once they stop changing. Unchanged content is skipped when a store path is configured.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				paths = a.cfg.Watch.Paths
			}
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
			var tracker watcher.Tracker
			if st != nil {
				defer st.Close()
				tracker = st
			} else {
				a.log.Warnf("No store configured, every file will be processed on each change")
			}

			broadcaster := events.NewBroadcaster()
			var notifier watcher.Notifier
			if a.cfg.Notify.Enabled {
				notifier = watcher.DesktopNotifier{}
			}

			svc := ingest.NewService(p, st, broadcaster)
			mgr := watcher.NewManager(watcher.Options{
				Paths:    paths,
				Debounce: a.cfg.Watch.Debounce,
				Workers:  workers,
			}, svc, tracker, broadcaster, notifier)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			feed := make(chan events.Event, 64)
			broadcaster.Subscribe(feed)
			defer broadcaster.Unsubscribe(feed)
			go printEvents(ctx, cmd.OutOrStdout(), feed)

			if err := mgr.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %v. Press Ctrl+C to stop.\n", mgr.Status().WatchingPaths)

			<-ctx.Done()
			mgr.Stop()

			status := mgr.Status()
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped: %d processed, %d errors\n", status.Processed, status.Errors)
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Files processed concurrently (default: worker.count)")
	return cmd
}

func printEvents(ctx context.Context, w io.Writer, feed <-chan events.Event) {
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	dim := color.New(color.FgHiBlack)

	for {
		select {
		case <-ctx.Done():
			return
		case e := <-feed:
			switch e.Type {
			case events.TypeFileComplete:
				ok.Fprintf(w, "✓ %s: %s\n", e.Path, e.Message)
			case events.TypeFileError:
				bad.Fprintf(w, "✗ %s: %s\n", e.Path, e.Error)
			case events.TypeFileProcessing:
				dim.Fprintf(w, "… %s: %s\n", e.Path, e.Message)
			}
		}
	}
}
