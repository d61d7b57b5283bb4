package main

import (
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/epuerta/codex-patch/internal/functions"
)

func toolSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tool-schema",
		Short: "Print the apply_patch function-tool definition as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(functions.ApplyPatchTool(), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode tool definition: %w", err)
			}
			a.logger.Log("Printing %s tool definition", functions.ApplyPatchName)
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func toolCallCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tool-call [file]",
		Short: "Handle an apply_patch tool call and print the tool output",
		Long: `Tool-call reads a function tool call as produced by a chat completion
({"id": ..., "type": "function", "function": {"name": "apply_patch", "arguments": "..."}})
from file or stdin, applies its operation and prints the JSON tool output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, fromStdin, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var call openai.ToolCall
			if err := json.Unmarshal(data, &call); err != nil {
				return fmt.Errorf("failed to parse tool call: %w", err)
			}

			ed, cleanup, err := a.newEditor(cmd, fromStdin)
			if err != nil {
				return err
			}
			defer cleanup()

			registry := functions.NewPatchRegistry(ed)
			out, err := registry.Call(call)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	addApplyFlags(cmd)
	return cmd
}
