// Package hook generates the command-completion signal hook for bash and zsh.
//
// Both dialects encode the same contract: after every foreground command and
// before the next prompt, capture the command's exit status, print a visible
// error line for non-ignorable failures, and emit an OSC 1337 command-exit
// sequence that the hosting terminal consumes. The shell fragments are
// generated from shared constants so the two encodings can never drift apart.
package hook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dialect identifies a supported shell dialect.
type Dialect string

const (
	Bash Dialect = "bash"
	Zsh  Dialect = "zsh"
)

// Wire contract shared by both dialects and by the terminal-side scanner.
const (
	// OSCPrefix starts the machine-readable exit signal:
	// ESC ] 1337 ; command-exit = <status> BEL
	OSCPrefix = "\x1b]1337;command-exit="

	// OSCFormat is the full emit format with the status interpolated.
	OSCFormat = "\x1b]1337;command-exit=%d\x07"

	// ErrorLineFormat is the human-visible error line: SGR red, message,
	// SGR reset, newline.
	ErrorLineFormat = "\x1b[31m❌ Error code: %d\x1b[0m\n"

	// reporterFunc is the shell function name installed by both dialects.
	reporterFunc = "__shellsig_report"

	// savedPrecmd is the private name a pre-existing zsh precmd is saved
	// under at install time.
	savedPrecmd = "__shellsig_saved_precmd"

	// installedGuard marks a session where the hook is already wired,
	// so re-sourcing the init file never duplicates the chain.
	installedGuard = "__SHELLSIG_INSTALLED"
)

// IgnorableCodes are exit statuses that suppress the visible error line but
// still emit the OSC signal. 130 is an interactive interrupt (SIGINT), a
// deliberate user action rather than a program fault.
var IgnorableCodes = []int{130}

// Marker is the comment line identifying an installed snippet in an rc file.
// InstallRC refuses to append a second copy when it is present.
const Marker = "# shellsig shell integration"

// FromName returns the dialect for a shell name ("bash", "zsh").
func FromName(name string) (Dialect, error) {
	switch name {
	case "bash":
		return Bash, nil
	case "zsh":
		return Zsh, nil
	default:
		return "", fmt.Errorf("unsupported shell %q (supported: bash, zsh)", name)
	}
}

// Detect returns the dialect of the user's login shell from $SHELL.
func Detect() (Dialect, error) {
	sh := os.Getenv("SHELL")
	if sh == "" {
		return "", fmt.Errorf("$SHELL is not set")
	}
	return FromName(filepath.Base(sh))
}

// Snippet returns the reporter + installer fragment for a dialect. It is
// safe to append to an rc file or to eval in an already-initialized session:
// both encodings carry an idempotency guard, so sourcing it twice still
// results in exactly one reporter invocation per command.
func Snippet(d Dialect) string {
	switch d {
	case Bash:
		return bashSnippet()
	case Zsh:
		return zshSnippet()
	default:
		return ""
	}
}

// Script returns the full startup file for injection mode (bash --rcfile /
// zsh ZDOTDIR). It sources the user's own rc first — a missing rc is a
// valid, common state, not an error — then installs the reporter.
func Script(d Dialect) string {
	switch d {
	case Bash:
		return Marker + " (bash)\n" +
			"if [ -f \"$HOME/.bashrc\" ]; then\n" +
			"  . \"$HOME/.bashrc\"\n" +
			"fi\n\n" +
			bashSnippet()
	case Zsh:
		return Marker + " (zsh)\n" +
			"if [ -f \"$HOME/.zshrc\" ]; then\n" +
			"  . \"$HOME/.zshrc\"\n" +
			"fi\n\n" +
			zshSnippet()
	default:
		return ""
	}
}

// ignoreClause renders the visible-line suppression condition from
// IgnorableCodes, e.g. `[ $s -ne 0 ] && [ $s -ne 130 ]`.
func ignoreClause(statusVar string) string {
	parts := []string{fmt.Sprintf("[ $%s -ne 0 ]", statusVar)}
	for _, code := range IgnorableCodes {
		parts = append(parts, fmt.Sprintf("[ $%s -ne %d ]", statusVar, code))
	}
	return strings.Join(parts, " && ")
}

// reporterBody is shared between the dialects: capture $? first, print the
// visible line for non-ignorable failures, always emit the OSC signal, and
// propagate the captured status. The capture MUST stay the first statement —
// anything before it would clobber the status being reported.
func reporterBody() string {
	return fmt.Sprintf(`  local __shellsig_status=$?
  if %s; then
    printf '\033[31m❌ Error code: %%d\033[0m\n' "$__shellsig_status"
  fi
  printf '\033]1337;command-exit=%%d\007' "$__shellsig_status"`, ignoreClause("__shellsig_status"))
}

// bashSnippet installs the reporter at the front of PROMPT_COMMAND,
// preserving whatever the user's own configuration already put there.
// The case guard keeps a re-source from prepending a duplicate.
func bashSnippet() string {
	return fmt.Sprintf(`%s() {
%s
  return $__shellsig_status
}
case ";${PROMPT_COMMAND};" in
  *";%s;"*) ;;
  *) PROMPT_COMMAND="%s${PROMPT_COMMAND:+;${PROMPT_COMMAND}}" ;;
esac
`, reporterFunc, reporterBody(), reporterFunc, reporterFunc)
}

// zshSnippet wraps precmd. A pre-existing precmd (from the user's zshrc) is
// saved once under a private name and invoked after the reporter on every
// prompt cycle. The marker variable prevents a re-source from capturing the
// wrapper as the "user hook" and chaining onto itself.
func zshSnippet() string {
	return fmt.Sprintf(`if [ -z "$%s" ]; then
  %s=1
  if (( $+functions[precmd] )); then
    functions[%s]=$functions[precmd]
  fi
  precmd() {
%s
    if (( $+functions[%s] )); then
      %s
    fi
    return $__shellsig_status
  }
fi
`, installedGuard, installedGuard,
		savedPrecmd,
		indent(reporterBody(), "  "),
		savedPrecmd, savedPrecmd)
}

// indent prefixes every line of s with pad.
func indent(s, pad string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}
