package fileio

import (
	"fmt"
	"os"
	"path/filepath"
)

// Manager abstracts whole-file text access so callers can be tested
// without touching the disk.
type Manager interface {
	ReadTextFile(path string) (string, error)
	WriteTextFile(path, content string) error
}

// DiskManager implements Manager against the local filesystem.
type DiskManager struct{}

func NewDiskManager() *DiskManager {
	return &DiskManager{}
}

func (m *DiskManager) ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func (m *DiskManager) WriteTextFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
