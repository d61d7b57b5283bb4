package functions

import (
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Function handles one tool call
type Function func(call openai.ToolCall) (string, error)

// Registry holds registered tools and their handlers
type Registry struct {
	functions map[string]Function
	tools     []openai.Tool
}

// NewRegistry creates an empty function registry
func NewRegistry() *Registry {
	return &Registry{
		functions: make(map[string]Function),
	}
}

// Register adds a tool definition and its handler to the registry
func (r *Registry) Register(tool openai.Tool, fn Function) {
	if tool.Function == nil {
		return
	}
	if _, exists := r.functions[tool.Function.Name]; !exists {
		r.tools = append(r.tools, tool)
	}
	r.functions[tool.Function.Name] = fn
}

// Get retrieves a handler from the registry
func (r *Registry) Get(name string) Function {
	return r.functions[name]
}

// Tools returns the registered tool definitions in registration order
func (r *Registry) Tools() []openai.Tool {
	return r.tools
}

// Call dispatches a tool call to its registered handler
func (r *Registry) Call(call openai.ToolCall) (string, error) {
	fn := r.Get(call.Function.Name)
	if fn == nil {
		return "", fmt.Errorf("unknown function: %s", call.Function.Name)
	}
	return fn(call)
}
