package hook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RCPath returns the rc file the snippet is installed into for a dialect.
func RCPath(d Dialect) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	switch d {
	case Bash:
		return filepath.Join(home, ".bashrc"), nil
	case Zsh:
		return filepath.Join(home, ".zshrc"), nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", d)
	}
}

// InstallRC appends the dialect's snippet to the rc file at path. The write
// is guarded by the marker comment: a second install is a silent no-op, so
// repeated setup runs never stack reporter invocations.
func InstallRC(d Dialect, path string) error {
	snippet := Snippet(d)
	if snippet == "" {
		return fmt.Errorf("unsupported dialect %q", d)
	}

	existing, _ := os.ReadFile(path) // missing rc file is fine — created below
	if strings.Contains(string(existing), Marker) {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "\n%s (%s)\n%s", Marker, d, snippet); err != nil {
		return fmt.Errorf("append snippet to %s: %w", path, err)
	}
	return nil
}

// Status reports the integration state for a dialect's rc file.
type Status struct {
	Dialect   Dialect `json:"dialect"`
	RCFile    string  `json:"rc_file"`
	RCExists  bool    `json:"rc_exists"`
	Installed bool    `json:"installed"`
}

// StatusRC inspects the rc file at path for the snippet marker.
func StatusRC(d Dialect, path string) Status {
	st := Status{Dialect: d, RCFile: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return st
	}
	st.RCExists = true
	st.Installed = strings.Contains(string(data), Marker)
	return st
}
