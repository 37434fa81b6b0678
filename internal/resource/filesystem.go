package resource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"craftbench/internal/bench"
)

// OSStore reads and writes resources on the local filesystem. IDs are
// absolute paths.
type OSStore struct{}

var _ bench.ResourceStore = (*OSStore)(nil)

// NewOSStore creates a store that operates on the real filesystem.
func NewOSStore() *OSStore {
	return &OSStore{}
}

// Resolve converts rawPath to an absolute path and checks that it names a
// regular file.
func (s *OSStore) Resolve(rawPath string) (string, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := checkRegular(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// ReadText returns the content of the file at id.
func (s *OSStore) ReadText(_ context.Context, id string) (string, error) {
	if err := checkRegular(id); err != nil {
		return "", err
	}
	data, err := os.ReadFile(id)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), nil
}

// WriteText replaces the file at id with content, creating parent
// directories as needed. An existing file keeps its permissions.
func (s *OSStore) WriteText(_ context.Context, id string, content string) error {
	mode := os.FileMode(0644)
	if info, err := os.Lstat(id); err == nil {
		if !info.Mode().IsRegular() {
			return fmt.Errorf("not a regular file: %s", id)
		}
		mode = info.Mode().Perm()
	}

	if err := os.MkdirAll(filepath.Dir(id), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(id), "."+filepath.Base(id)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, id); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing file: %w", err)
	}
	return nil
}

// Delete removes the file at id.
func (s *OSStore) Delete(_ context.Context, id string) error {
	if err := os.Remove(id); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

func (s *OSStore) Basename(id string) string {
	return filepath.Base(id)
}

func (s *OSStore) Dirname(id string) string {
	return filepath.Dir(id)
}

func (s *OSStore) Join(dir, name string) string {
	return filepath.Join(dir, name)
}

// checkRegular rejects directories, symlinks, devices, pipes and sockets.
func checkRegular(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	switch {
	case mode.IsDir():
		return fmt.Errorf("directories not supported: %s", path)
	case mode&os.ModeSymlink != 0:
		return fmt.Errorf("symlinks not supported: %s", path)
	case mode&os.ModeDevice != 0:
		return fmt.Errorf("device files not supported: %s", path)
	case mode&os.ModeNamedPipe != 0:
		return fmt.Errorf("named pipes not supported: %s", path)
	case mode&os.ModeSocket != 0:
		return fmt.Errorf("sockets not supported: %s", path)
	}
	return nil
}
