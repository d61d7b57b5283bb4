package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/epuerta/codex-patch/internal/fileops"
	"github.com/epuerta/codex-patch/internal/patch"
)

func diffCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <input> <patch>",
		Short: "Apply a single V4A diff to a file and print the result",
		Long: `Diff applies the V4A diff in <patch> to the contents of <input> and prints
the new content. With --create only <patch> is given and must contain
'+' lines only. The input file is not modified unless --write is set.`,
		Args: func(cmd *cobra.Command, args []string) error {
			create, _ := cmd.Flags().GetBool("create")
			if create {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			create, _ := cmd.Flags().GetBool("create")
			write, _ := cmd.Flags().GetBool("write")

			diffPath := args[len(args)-1]
			diffData, err := os.ReadFile(diffPath)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", diffPath, err)
			}

			mode := patch.ModeDefault
			input := ""
			if create {
				mode = patch.ModeCreate
			} else {
				input, err = fileops.ReadFile(args[0])
				if err != nil {
					return err
				}
			}

			result, fuzz, err := patch.ApplyDiffWithFuzz(input, string(diffData), mode)
			if err != nil {
				return err
			}
			a.logger.Log("Applied %s (fuzz %d)", diffPath, fuzz)
			if fuzz > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "context matched with fuzz %d\n", fuzz)
			}

			if write && !create {
				return fileops.WriteFile(args[0], result)
			}
			fmt.Fprint(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().Bool("create", false, "Treat the diff as a create-mode diff")
	cmd.Flags().BoolP("write", "w", false, "Write the result back to <input>")
	return cmd
}
