// Package runtimepath resolves per-user runtime file locations.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// SocketPath returns the daemon control socket location: under
// XDG_RUNTIME_DIR when set, otherwise a per-user directory in /tmp.
func SocketPath() (string, error) {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = filepath.Join(os.TempDir(), fmt.Sprintf("smartile-runtime-%d", os.Getuid()))
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create runtime directory %s: %w", dir, err)
	}
	return filepath.Join(dir, "smartile.sock"), nil
}
