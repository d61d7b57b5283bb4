package functions

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/epuerta/codex-patch/internal/editor"
	"github.com/sashabaranov/go-openai"
)

func newEditor(t *testing.T) (*editor.Editor, string) {
	t.Helper()
	dir := t.TempDir()
	ed, err := editor.New(dir, editor.Options{})
	if err != nil {
		t.Fatalf("Failed to create editor: %v", err)
	}
	return ed, dir
}

func decodeOutput(t *testing.T, s string) ToolOutput {
	t.Helper()
	var out ToolOutput
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("Output is not JSON: %v (%s)", err, s)
	}
	return out
}

func TestApplyPatchTool(t *testing.T) {
	tool := ApplyPatchTool()
	if tool.Type != openai.ToolTypeFunction {
		t.Errorf("Unexpected tool type: %s", tool.Type)
	}
	if tool.Function == nil || tool.Function.Name != ApplyPatchName {
		t.Fatalf("Unexpected function definition: %+v", tool.Function)
	}

	data, err := json.Marshal(tool)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for _, want := range []string{`"create_file"`, `"update_file"`, `"delete_file"`, `"operation"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Schema is missing %s: %s", want, data)
		}
	}
}

func TestHandleToolCallCreatesFile(t *testing.T) {
	ed, dir := newEditor(t)

	call := openai.ToolCall{
		ID:   "call_abc",
		Type: openai.ToolTypeFunction,
		Function: openai.FunctionCall{
			Name:      ApplyPatchName,
			Arguments: `{"call_id":"op-1","operation":{"type":"create_file","path":"hello.txt","diff":"+hello\n+world\n"}}`,
		},
	}

	out := decodeOutput(t, HandleToolCall(ed, call))
	if out.CallID != "op-1" || out.Status != editor.StatusCompleted {
		t.Fatalf("Unexpected output: %+v", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, "hello.txt"))
	if err != nil {
		t.Fatalf("Failed to read created file: %v", err)
	}
	if string(data) != "hello\nworld" {
		t.Errorf("Unexpected content: %q", data)
	}
}

func TestHandleToolCallFailures(t *testing.T) {
	ed, _ := newEditor(t)

	tests := []struct {
		name string
		args string
		want string
	}{
		{"bad json", `{"operation":`, "failed to parse arguments"},
		{"no operation", `{"call_id":"x"}`, "operation parameter is required"},
		{"missing diff", `{"operation":{"type":"update_file","path":"a.txt"}}`, "missing a diff"},
		{"missing file", `{"operation":{"type":"update_file","path":"a.txt","diff":" a\n+b"}}`, "Cannot update missing file: a.txt"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			call := openai.ToolCall{ID: "call_1", Function: openai.FunctionCall{Name: ApplyPatchName, Arguments: tc.args}}
			out := decodeOutput(t, HandleToolCall(ed, call))
			if out.Status != editor.StatusFailed {
				t.Fatalf("Expected failed, got %+v", out)
			}
			if !strings.Contains(out.Output, tc.want) {
				t.Errorf("Expected output containing %q, got %q", tc.want, out.Output)
			}
			if out.CallID == "" {
				t.Errorf("Expected a call id in the output")
			}
		})
	}
}

func TestRegistryDispatch(t *testing.T) {
	ed, dir := newEditor(t)
	if err := os.WriteFile(filepath.Join(dir, "gone.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	r := NewPatchRegistry(ed)
	if len(r.Tools()) != 1 {
		t.Fatalf("Expected one tool, got %d", len(r.Tools()))
	}

	s, err := r.Call(openai.ToolCall{Function: openai.FunctionCall{
		Name:      ApplyPatchName,
		Arguments: `{"type":"delete_file","path":"gone.txt"}`,
	}})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if out := decodeOutput(t, s); out.Status != editor.StatusCompleted {
		t.Errorf("Unexpected output: %+v", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "gone.txt")); !os.IsNotExist(err) {
		t.Errorf("Expected file to be deleted")
	}

	if _, err := r.Call(openai.ToolCall{Function: openai.FunctionCall{Name: "shell"}}); err == nil {
		t.Errorf("Expected error for unknown function")
	}
}

func TestRegistryCallKeepsToolCallID(t *testing.T) {
	ed, _ := newEditor(t)
	r := NewPatchRegistry(ed)

	s, err := r.Call(openai.ToolCall{
		ID:   "call_9",
		Type: openai.ToolTypeFunction,
		Function: openai.FunctionCall{
			Name:      ApplyPatchName,
			Arguments: `{"operation":{"type":"create_file","path":"t.txt","diff":"+t"}}`,
		},
	})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	out := decodeOutput(t, s)
	if out.CallID != "call_9" || out.Status != editor.StatusCompleted {
		t.Errorf("Unexpected output: %+v", out)
	}
}
