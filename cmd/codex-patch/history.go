package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/epuerta/codex-patch/internal/journal"
)

func historyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "List recently applied operations from the journal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.JournalPath == "" {
				return fmt.Errorf("journal is disabled")
			}
			limit, _ := cmd.Flags().GetInt("limit")
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			j, err := journal.Open(cmd.Context(), a.cfg.JournalPath)
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.Recent(cmd.Context(), path, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No operations recorded")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("TIME", "BATCH", "TYPE", "PATH", "STATUS", "FUZZ")
			for _, e := range entries {
				status := string(e.Status)
				if e.DryRun {
					status += " (dry run)"
				}
				t.Row(
					e.At.Local().Format("2006-01-02 15:04:05"),
					shortID(e.BatchID),
					string(e.Type),
					e.Path,
					status,
					strconv.Itoa(e.Fuzz),
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.Flags().String("journal", "", "Path to the operation journal (default: ~/.codex-patch/journal.db)")
	cmd.Flags().IntP("limit", "n", 20, "Number of entries to show")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
