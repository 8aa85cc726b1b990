package hook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInstallRC_CreatesMissingFile(t *testing.T) {
	rc := filepath.Join(t.TempDir(), ".bashrc")

	if err := InstallRC(Bash, rc); err != nil {
		t.Fatalf("InstallRC error: %v", err)
	}

	data, err := os.ReadFile(rc)
	if err != nil {
		t.Fatalf("read rc: %v", err)
	}
	if !strings.Contains(string(data), Marker) {
		t.Error("installed rc must carry the marker comment")
	}
	if !strings.Contains(string(data), reporterFunc) {
		t.Error("installed rc must define the reporter")
	}
}

func TestInstallRC_PreservesExistingContent(t *testing.T) {
	rc := filepath.Join(t.TempDir(), ".zshrc")
	user := "alias ll='ls -la'\nprecmd() { echo marker; }\n"
	if err := os.WriteFile(rc, []byte(user), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := InstallRC(Zsh, rc); err != nil {
		t.Fatalf("InstallRC error: %v", err)
	}

	data, _ := os.ReadFile(rc)
	if !strings.HasPrefix(string(data), user) {
		t.Error("install must append, leaving the user's rc content untouched")
	}
}

func TestInstallRC_Idempotent(t *testing.T) {
	rc := filepath.Join(t.TempDir(), ".bashrc")

	if err := InstallRC(Bash, rc); err != nil {
		t.Fatalf("first install: %v", err)
	}
	first, _ := os.ReadFile(rc)

	if err := InstallRC(Bash, rc); err != nil {
		t.Fatalf("second install: %v", err)
	}
	second, _ := os.ReadFile(rc)

	if string(first) != string(second) {
		t.Error("second install must be a no-op")
	}
	if n := strings.Count(string(second), reporterFunc+"() {"); n != 1 {
		t.Errorf("reporter defined %d times after double install, want 1", n)
	}
}

func TestStatusRC(t *testing.T) {
	dir := t.TempDir()

	missing := StatusRC(Bash, filepath.Join(dir, ".bashrc"))
	if missing.RCExists || missing.Installed {
		t.Errorf("missing rc: got %+v, want not-exists/not-installed", missing)
	}

	rc := filepath.Join(dir, ".zshrc")
	if err := os.WriteFile(rc, []byte("export FOO=1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	bare := StatusRC(Zsh, rc)
	if !bare.RCExists || bare.Installed {
		t.Errorf("bare rc: got %+v, want exists/not-installed", bare)
	}

	if err := InstallRC(Zsh, rc); err != nil {
		t.Fatal(err)
	}
	installed := StatusRC(Zsh, rc)
	if !installed.RCExists || !installed.Installed {
		t.Errorf("installed rc: got %+v, want exists/installed", installed)
	}
}
