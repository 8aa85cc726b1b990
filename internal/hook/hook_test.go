package hook

import (
	"strings"
	"testing"
)

func TestFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    Dialect
		wantErr bool
	}{
		{"bash", Bash, false},
		{"zsh", Zsh, false},
		{"fish", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromName(%q): error = %v, wantErr = %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FromName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	t.Setenv("SHELL", "/usr/bin/zsh")
	d, err := Detect()
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	if d != Zsh {
		t.Errorf("Detect() = %q, want %q", d, Zsh)
	}

	t.Setenv("SHELL", "")
	if _, err := Detect(); err == nil {
		t.Error("Detect() with empty $SHELL: expected error")
	}
}

// The exit status capture must be the very first statement of the reporter.
// Anything before it would overwrite the status being reported.
func TestReporterCapturesStatusFirst(t *testing.T) {
	for _, d := range []Dialect{Bash, Zsh} {
		t.Run(string(d), func(t *testing.T) {
			snippet := Snippet(d)

			var body string
			switch d {
			case Bash:
				idx := strings.Index(snippet, reporterFunc+"() {")
				if idx < 0 {
					t.Fatalf("bash snippet missing %s definition", reporterFunc)
				}
				body = snippet[idx:]
			case Zsh:
				idx := strings.Index(snippet, "precmd() {")
				if idx < 0 {
					t.Fatal("zsh snippet missing precmd definition")
				}
				body = snippet[idx:]
			}

			lines := strings.Split(body, "\n")
			if len(lines) < 2 {
				t.Fatalf("reporter body too short:\n%s", body)
			}
			first := strings.TrimSpace(lines[1])
			if first != "local __shellsig_status=$?" {
				t.Errorf("first reporter statement = %q, want the $? capture", first)
			}
		})
	}
}

func TestSnippetEmitsOSCUnconditionally(t *testing.T) {
	for _, d := range []Dialect{Bash, Zsh} {
		t.Run(string(d), func(t *testing.T) {
			snippet := Snippet(d)

			const emit = `printf '\033]1337;command-exit=%d\007'`
			if n := strings.Count(snippet, emit); n != 1 {
				t.Errorf("OSC emit appears %d times, want exactly 1:\n%s", n, snippet)
			}

			// The OSC emit must sit outside the error-line conditional:
			// the conditional block closes (fi) before the emit.
			condEnd := strings.Index(snippet, "fi")
			emitIdx := strings.Index(snippet, emit)
			if condEnd < 0 || emitIdx < condEnd {
				t.Error("OSC emit must come after the error-line conditional")
			}
		})
	}
}

func TestSnippetSuppressesIgnorableCodes(t *testing.T) {
	for _, d := range []Dialect{Bash, Zsh} {
		t.Run(string(d), func(t *testing.T) {
			snippet := Snippet(d)
			if !strings.Contains(snippet, "-ne 0 ]") {
				t.Error("visible error line must be suppressed for status 0")
			}
			for _, code := range IgnorableCodes {
				if !strings.Contains(snippet, "-ne 130 ]") {
					t.Errorf("visible error line must be suppressed for ignorable code %d", code)
				}
			}
		})
	}
}

func TestSnippetErrorLineFormat(t *testing.T) {
	for _, d := range []Dialect{Bash, Zsh} {
		t.Run(string(d), func(t *testing.T) {
			snippet := Snippet(d)
			const line = `printf '\033[31m❌ Error code: %d\033[0m\n'`
			if n := strings.Count(snippet, line); n != 1 {
				t.Errorf("error line appears %d times, want exactly 1", n)
			}
		})
	}
}

func TestSnippetPropagatesStatus(t *testing.T) {
	for _, d := range []Dialect{Bash, Zsh} {
		t.Run(string(d), func(t *testing.T) {
			if !strings.Contains(Snippet(d), "return $__shellsig_status") {
				t.Error("reporter must propagate the captured status")
			}
		})
	}
}

// Installing twice must not duplicate the chained invocation.
func TestBashSnippetIdempotencyGuard(t *testing.T) {
	snippet := Snippet(Bash)

	// Membership test on PROMPT_COMMAND before prepending.
	if !strings.Contains(snippet, `case ";${PROMPT_COMMAND};" in`) {
		t.Error("bash snippet missing PROMPT_COMMAND membership guard")
	}
	if !strings.Contains(snippet, `*";`+reporterFunc+`;"*) ;;`) {
		t.Error("bash guard must match an already-installed reporter")
	}
	// Prepend, preserving existing entries.
	if !strings.Contains(snippet, `PROMPT_COMMAND="`+reporterFunc+`${PROMPT_COMMAND:+;${PROMPT_COMMAND}}"`) {
		t.Error("bash snippet must prepend the reporter, keeping existing PROMPT_COMMAND entries")
	}
}

func TestZshSnippetIdempotencyGuard(t *testing.T) {
	snippet := Snippet(Zsh)

	if !strings.Contains(snippet, `if [ -z "$`+installedGuard+`" ]`) {
		t.Error("zsh snippet missing installed-marker guard")
	}
	// A pre-existing precmd is saved under the private name before the
	// wrapper replaces the slot...
	saveIdx := strings.Index(snippet, "functions["+savedPrecmd+"]=$functions[precmd]")
	defIdx := strings.Index(snippet, "precmd() {")
	if saveIdx < 0 {
		t.Fatal("zsh snippet must save a pre-existing precmd under a private name")
	}
	if defIdx < saveIdx {
		t.Error("precmd must be saved before the wrapper overwrites the slot")
	}
	// ...and invoked after the reporter's own logic.
	callIdx := strings.LastIndex(snippet, savedPrecmd)
	emitIdx := strings.Index(snippet, "command-exit")
	if callIdx < emitIdx {
		t.Error("saved precmd must run after the OSC emit")
	}
}

func TestScriptSourcesUserRCFirst(t *testing.T) {
	tests := []struct {
		dialect Dialect
		rc      string
	}{
		{Bash, `"$HOME/.bashrc"`},
		{Zsh, `"$HOME/.zshrc"`},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			script := Script(tt.dialect)
			srcIdx := strings.Index(script, tt.rc)
			if srcIdx < 0 {
				t.Fatalf("script must source the user's %s", tt.rc)
			}
			// Guarded by an existence check — a missing rc is not an error.
			if !strings.Contains(script, "if [ -f "+tt.rc+" ]") {
				t.Error("user rc sourcing must be guarded by an existence check")
			}
			if srcIdx > strings.Index(script, "command-exit") {
				t.Error("user rc must be sourced before the reporter is installed")
			}
		})
	}
}

func TestIgnoreClause(t *testing.T) {
	got := ignoreClause("s")
	want := "[ $s -ne 0 ] && [ $s -ne 130 ]"
	if got != want {
		t.Errorf("ignoreClause = %q, want %q", got, want)
	}
}
