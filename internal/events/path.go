package events

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultSocketPath returns the per-user collector socket location.
func DefaultSocketPath() string {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir != "" {
		return filepath.Join(runtimeDir, "shellsig", "events.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("shellsig-%d", os.Getuid()), "events.sock")
}
