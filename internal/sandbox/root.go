package sandbox

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrOutsideWorkspace is returned when a path resolves outside the root
var ErrOutsideWorkspace = errors.New("operation outside workspace")

// Root confines file operations to a single directory tree
type Root struct {
	abs string
}

// New creates a Root for dir, resolved to an absolute, cleaned path
func New(dir string) (*Root, error) {
	if dir == "" {
		return nil, errors.New("workspace root is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root %s: %w", dir, err)
	}
	return &Root{abs: abs}, nil
}

// Path returns the absolute root directory
func (r *Root) Path() string {
	return r.abs
}

// Resolve maps a path from a patch operation to an absolute path under the
// root. Relative paths are taken from the root; absolute paths are accepted
// only if they already lie inside it.
func (r *Root) Resolve(path string) (string, error) {
	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(r.abs, target)
	}
	target = filepath.Clean(target)

	if !r.Contains(target) {
		return "", fmt.Errorf("%w: %s", ErrOutsideWorkspace, path)
	}
	return target, nil
}

// Contains reports whether the absolute path abs is the root or below it
func (r *Root) Contains(abs string) bool {
	if abs == r.abs {
		return true
	}
	prefix := r.abs
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(abs, prefix)
}

// Rel returns path relative to the root, for messages
func (r *Root) Rel(abs string) string {
	rel, err := filepath.Rel(r.abs, abs)
	if err != nil {
		return abs
	}
	return rel
}
