package runtimepath

import (
	"path/filepath"
	"testing"
)

func TestSocketPathUsesRuntimeDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)

	got, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath: %v", err)
	}
	if got != filepath.Join(dir, "smartile.sock") {
		t.Fatalf("SocketPath = %q", got)
	}
}

func TestSocketPathFallsBackToTmp(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath: %v", err)
	}
	if filepath.Base(got) != "smartile.sock" {
		t.Fatalf("SocketPath = %q", got)
	}
}
