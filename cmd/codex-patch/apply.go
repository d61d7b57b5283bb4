package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/epuerta/codex-patch/internal/editor"
	"github.com/epuerta/codex-patch/internal/journal"
	"github.com/epuerta/codex-patch/internal/ui"
)

func applyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply [file]",
		Short: "Apply a JSON list of patch operations",
		Long: `Apply reads a JSON array of operations (or a single operation object)
from file, or from stdin when file is omitted or "-":

  [{"type": "update_file", "path": "main.go", "diff": "@@ func main() {\n-\tfmt.Println(1)\n+\tfmt.Println(2)\n"}]

Every operation is applied independently; one failure does not stop the rest.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, fromStdin, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			ops, err := editor.DecodeOperations(data)
			if err != nil {
				return err
			}

			ed, cleanup, err := a.newEditor(cmd, fromStdin)
			if err != nil {
				return err
			}
			defer cleanup()

			results := ed.ApplyAll(ops)
			asJSON, _ := cmd.Flags().GetBool("json")
			return reportResults(cmd.OutOrStdout(), results, asJSON)
		},
	}

	addApplyFlags(cmd)
	cmd.Flags().Bool("json", false, "Print results as JSON")
	return cmd
}

func previewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preview [file]",
		Short: "Render patch operations without applying them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, _, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			ops, err := editor.DecodeOperations(data)
			if err != nil {
				return err
			}
			a.logger.Log("Previewing %d operations", len(ops))
			for _, op := range ops {
				fmt.Fprintln(cmd.OutOrStdout(), ui.FormatOperation(op))
			}
			return nil
		},
	}
}

// newEditor builds an editor from the resolved config. The returned cleanup
// closes the journal.
func (a *app) newEditor(cmd *cobra.Command, stdinBusy bool) (*editor.Editor, func(), error) {
	opts := editor.Options{
		Logger:            a.logger,
		DryRun:            a.cfg.DryRun,
		FuzzWarnThreshold: a.cfg.FuzzWarnThreshold,
	}
	cleanup := func() {}

	if a.cfg.JournalPath != "" {
		j, err := journal.Open(cmd.Context(), a.cfg.JournalPath)
		if err != nil {
			return nil, nil, err
		}
		opts.Recorder = j
		cleanup = func() {
			if err := j.Close(); err != nil {
				a.logger.Log("Error closing journal: %v", err)
			}
		}
	}

	if a.cfg.Confirm && !a.cfg.DryRun {
		opts.Approver = &ui.Approver{Output: cmd.ErrOrStderr(), TTY: stdinBusy}
	}

	ed, err := editor.New(a.cfg.Root, opts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	a.logger.Log("Editor ready: root=%s batch=%s", ed.Root(), ed.BatchID())
	return ed, cleanup, nil
}

// readInput reads args[0], or stdin when no file or "-" is given
func readInput(cmd *cobra.Command, args []string) ([]byte, bool, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, true, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, true, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return data, false, nil
}

// reportResults prints results and returns an error when any failed
func reportResults(w io.Writer, results []editor.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
	} else {
		for _, res := range results {
			fmt.Fprintf(w, "%s: %s\n", res.Status, res.Output)
		}
	}

	failures := 0
	for _, res := range results {
		if !res.OK() {
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d operations failed", failures, len(results))
	}
	return nil
}
