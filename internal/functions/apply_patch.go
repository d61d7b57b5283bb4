package functions

import (
	"encoding/json"
	"fmt"

	"github.com/epuerta/codex-patch/internal/editor"
	"github.com/sashabaranov/go-openai"
)

// ApplyPatchName is the tool name models call
const ApplyPatchName = "apply_patch"

const applyPatchDescription = `Create, update or delete a single file in the workspace.
Diffs use the V4A format: every line starts with '+' (added), '-' (removed) or ' ' (context).
Create diffs contain only '+' lines. Update diffs may group hunks with '@@ <anchor line>'
and end with '*** End of File' when the hunk touches the end of the file.`

// ApplyPatchArgs are the arguments of an apply_patch call
type ApplyPatchArgs struct {
	CallID    string               `json:"call_id"`
	Operation editor.WireOperation `json:"operation"`
}

// ToolOutput is the JSON returned to the model for an apply_patch call
type ToolOutput struct {
	CallID string        `json:"call_id"`
	Status editor.Status `json:"status"`
	Output string        `json:"output,omitempty"`
}

// ApplyPatchTool returns the function-tool definition for apply_patch
func ApplyPatchTool() openai.Tool {
	params := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"call_id": map[string]interface{}{
				"type":        "string",
				"description": "Identifier echoed back in the result",
			},
			"operation": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"type": map[string]interface{}{
						"type": "string",
						"enum": []string{
							string(editor.OpCreateFile),
							string(editor.OpUpdateFile),
							string(editor.OpDeleteFile),
						},
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "File path relative to the workspace root",
					},
					"diff": map[string]interface{}{
						"type":        "string",
						"description": "V4A diff; required for create_file and update_file",
					},
				},
				"required": []string{"type", "path"},
			},
		},
		"required": []string{"operation"},
	}

	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        ApplyPatchName,
			Description: applyPatchDescription,
			Parameters:  params,
		},
	}
}

// DecodeApplyPatchArgs parses tool-call arguments. A bare operation object
// is accepted as well as the {call_id, operation} envelope.
func DecodeApplyPatchArgs(args string) (ApplyPatchArgs, error) {
	var parsed ApplyPatchArgs
	if err := json.Unmarshal([]byte(args), &parsed); err != nil {
		return parsed, fmt.Errorf("failed to parse arguments: %w", err)
	}
	if parsed.Operation.Type == "" {
		var bare editor.WireOperation
		if err := json.Unmarshal([]byte(args), &bare); err == nil && bare.Type != "" {
			parsed.Operation = bare
		}
	}
	if parsed.Operation.Type == "" {
		return parsed, fmt.Errorf("operation parameter is required")
	}
	return parsed, nil
}

// HandleToolCall applies the operation carried by call and returns the
// JSON-encoded ToolOutput. Malformed calls produce a failed output instead
// of an error.
func HandleToolCall(ed *editor.Editor, call openai.ToolCall) string {
	out := ToolOutput{CallID: call.ID}

	args, err := DecodeApplyPatchArgs(call.Function.Arguments)
	if args.CallID != "" {
		out.CallID = args.CallID
	}
	if err != nil {
		out.Status = editor.StatusFailed
		out.Output = err.Error()
		return encodeOutput(out)
	}

	op, err := editor.FromWire(args.Operation)
	if err != nil {
		out.Status = editor.StatusFailed
		out.Output = err.Error()
		return encodeOutput(out)
	}

	res := ed.Apply(op)
	out.Status = res.Status
	out.Output = res.Output
	return encodeOutput(out)
}

// ApplyPatch returns a registry handler bound to ed
func ApplyPatch(ed *editor.Editor) Function {
	return func(call openai.ToolCall) (string, error) {
		return HandleToolCall(ed, call), nil
	}
}

// NewPatchRegistry creates a registry with apply_patch bound to ed
func NewPatchRegistry(ed *editor.Editor) *Registry {
	r := NewRegistry()
	r.Register(ApplyPatchTool(), ApplyPatch(ed))
	return r
}

func encodeOutput(out ToolOutput) string {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"call_id":%q,"status":"failed","output":%q}`, out.CallID, err.Error())
	}
	return string(data)
}
