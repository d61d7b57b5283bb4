package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/epuerta/codex-patch/internal/editor"
	"github.com/epuerta/codex-patch/internal/watch"
)

func watchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <inbox>",
		Short: "Apply operation files dropped into an inbox directory",
		Long: `Watch applies every *.json operation file that appears in <inbox>.
Processed files are renamed to .done, or .failed when any operation
failed, and their results are written next to them as .results.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Keys cannot be read while running unattended
			a.cfg.Confirm = false
			ed, cleanup, err := a.newEditor(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			w, err := watch.New(args[0], ed, watch.Options{
				Debounce: a.cfg.WatchDebounce(),
				Logger:   a.logger,
				OnProcessed: func(file string, results []editor.Result) {
					for _, res := range results {
						fmt.Fprintf(out, "%s: %s: %s\n", filepath.Base(file), res.Status, res.Output)
					}
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Watching %s (root %s)\n", w.Inbox(), ed.Root())
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	addApplyFlags(cmd)
	cmd.Flags().Int("debounce", 0, "Milliseconds the inbox must be quiet before files are applied")
	return cmd
}
