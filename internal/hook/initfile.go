package hook

import (
	"fmt"
	"os"
	"path/filepath"
)

// SpawnSpec describes how to launch a shell with the hook injected.
// Argv is the full command line; Env entries are appended to the
// child's environment.
type SpawnSpec struct {
	Dialect Dialect
	Argv    []string
	Env     []string
}

// WriteInitFile materializes the injection Script for a dialect under dir
// and returns the path the spawner needs.
//
// bash takes the init file directly via --rcfile. zsh has no equivalent
// flag, so the script is written as .zshrc inside a private directory and
// the shell is pointed at it with ZDOTDIR.
func WriteInitFile(dir string, d Dialect) (string, error) {
	switch d {
	case Bash:
		path := filepath.Join(dir, fmt.Sprintf("shellsig_bashrc_%d", os.Getpid()))
		if err := os.WriteFile(path, []byte(Script(Bash)), 0o600); err != nil {
			return "", fmt.Errorf("write bash init file: %w", err)
		}
		return path, nil
	case Zsh:
		zdot := filepath.Join(dir, fmt.Sprintf("shellsig_zsh_%d", os.Getpid()))
		if err := os.MkdirAll(zdot, 0o700); err != nil {
			return "", fmt.Errorf("create zsh init dir: %w", err)
		}
		path := filepath.Join(zdot, ".zshrc")
		if err := os.WriteFile(path, []byte(Script(Zsh)), 0o600); err != nil {
			return "", fmt.Errorf("write zsh init file: %w", err)
		}
		return path, nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", d)
	}
}

// Spawn returns the SpawnSpec for running a shell with the init file at
// initPath active. TERM is pinned the way the hosting terminal pins it.
func Spawn(d Dialect, initPath string) (SpawnSpec, error) {
	spec := SpawnSpec{
		Dialect: d,
		Env:     []string{"TERM=xterm-256color"},
	}
	switch d {
	case Bash:
		spec.Argv = []string{"bash", "--rcfile", initPath}
	case Zsh:
		spec.Argv = []string{"zsh"}
		spec.Env = append(spec.Env, "ZDOTDIR="+filepath.Dir(initPath))
	default:
		return SpawnSpec{}, fmt.Errorf("unsupported dialect %q", d)
	}
	return spec, nil
}
