package fileops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotExist is returned by ReadFile when the file is missing
var ErrNotExist = errors.New("file does not exist")

const (
	dirMode  = 0755
	fileMode = 0644
)

// ReadFile reads a file and returns its contents
func ReadFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return "", fmt.Errorf("error reading file: %w", err)
	}
	return string(content), nil
}

// WriteFile writes content to a file, keeping the mode of an existing file
func WriteFile(path string, content string) error {
	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("error creating directories: %w", err)
	}

	mode := os.FileMode(fileMode)
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fmt.Errorf("error writing file: %s is a directory", path)
		}
		mode = info.Mode().Perm()
	}

	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}

	return nil
}

// RemoveFile deletes a file. A missing file is not an error.
func RemoveFile(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error getting file info: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot delete %s: is a directory", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error deleting file: %w", err)
	}
	return nil
}

// Exists checks if a file or directory exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsFile checks if a path is a regular file
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
