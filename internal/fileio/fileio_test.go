package fileio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskManagerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.txt")

	m := NewDiskManager()
	if err := m.WriteTextFile(path, "你好, world"); err != nil {
		t.Fatalf("WriteTextFile error: %v", err)
	}

	got, err := m.ReadTextFile(path)
	if err != nil {
		t.Fatalf("ReadTextFile error: %v", err)
	}
	if got != "你好, world" {
		t.Errorf("read back %q, want %q", got, "你好, world")
	}
}

func TestDiskManagerReadMissingFile(t *testing.T) {
	m := NewDiskManager()
	_, err := m.ReadTextFile(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDiskManagerWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	m := NewDiskManager()

	if err := m.WriteTextFile(path, "first"); err != nil {
		t.Fatalf("WriteTextFile error: %v", err)
	}
	if err := m.WriteTextFile(path, "second"); err != nil {
		t.Fatalf("WriteTextFile error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("file contains %q, want %q", data, "second")
	}
}
