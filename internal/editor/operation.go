package editor

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OperationType is the wire discriminator of an apply_patch operation
type OperationType string

const (
	OpCreateFile OperationType = "create_file"
	OpUpdateFile OperationType = "update_file"
	OpDeleteFile OperationType = "delete_file"
)

// Operation is one of CreateFile, UpdateFile or DeleteFile.
type Operation interface {
	Type() OperationType
	FilePath() string
	isOperation()
}

// CreateFile writes a new file whose content is a create-mode diff
type CreateFile struct {
	Path string
	Diff string
}

// UpdateFile patches an existing file with an update-mode diff
type UpdateFile struct {
	Path string
	Diff string
}

// DeleteFile removes a file
type DeleteFile struct {
	Path string
}

func (CreateFile) Type() OperationType { return OpCreateFile }
func (UpdateFile) Type() OperationType { return OpUpdateFile }
func (DeleteFile) Type() OperationType { return OpDeleteFile }

func (o CreateFile) FilePath() string { return o.Path }
func (o UpdateFile) FilePath() string { return o.Path }
func (o DeleteFile) FilePath() string { return o.Path }

func (CreateFile) isOperation() {}
func (UpdateFile) isOperation() {}
func (DeleteFile) isOperation() {}

// WireOperation is the JSON form produced by tool calls
type WireOperation struct {
	Type OperationType `json:"type"`
	Path string        `json:"path"`
	Diff *string       `json:"diff,omitempty"`
}

// FromWire validates w and converts it to an Operation
func FromWire(w WireOperation) (Operation, error) {
	if w.Path == "" {
		return nil, fmt.Errorf("operation %q is missing a path", w.Type)
	}

	switch w.Type {
	case OpCreateFile, OpUpdateFile:
		if w.Diff == nil {
			return nil, fmt.Errorf("operation %s on %s is missing a diff", w.Type, w.Path)
		}
		if w.Type == OpCreateFile {
			return CreateFile{Path: w.Path, Diff: *w.Diff}, nil
		}
		return UpdateFile{Path: w.Path, Diff: *w.Diff}, nil
	case OpDeleteFile:
		return DeleteFile{Path: w.Path}, nil
	default:
		return nil, fmt.Errorf("unknown operation type: %q", w.Type)
	}
}

// ToWire converts op to its JSON form
func ToWire(op Operation) WireOperation {
	w := WireOperation{Type: op.Type(), Path: op.FilePath()}
	switch o := op.(type) {
	case CreateFile:
		w.Diff = &o.Diff
	case UpdateFile:
		w.Diff = &o.Diff
	}
	return w
}

// DecodeOperation parses a single JSON operation
func DecodeOperation(data []byte) (Operation, error) {
	var w WireOperation
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse operation: %w", err)
	}
	return FromWire(w)
}

// DecodeOperations parses either a JSON array of operations or a single
// operation object.
func DecodeOperations(data []byte) ([]Operation, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("no operations given")
	}

	if trimmed[0] != '[' {
		op, err := DecodeOperation(trimmed)
		if err != nil {
			return nil, err
		}
		return []Operation{op}, nil
	}

	var wires []WireOperation
	if err := json.Unmarshal(trimmed, &wires); err != nil {
		return nil, fmt.Errorf("failed to parse operations: %w", err)
	}

	ops := make([]Operation, 0, len(wires))
	for i, w := range wires {
		op, err := FromWire(w)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}
