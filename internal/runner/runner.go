// Package runner hosts an interactive shell on a PTY with the completion
// hook injected, and turns the hook's command-exit sequences into
// CommandResult events.
package runner

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/nisdos/shellsig/internal/hook"
	"github.com/nisdos/shellsig/internal/model"
	"github.com/nisdos/shellsig/internal/osc"
	"golang.org/x/term"
)

const (
	readBufferBytes = 4096
	tailBufferBytes = 64 * 1024
)

// Summary is the per-session tally printed when the shell exits.
type Summary struct {
	Commands   int `json:"commands"`
	Failures   int `json:"failures"`
	Interrupts int `json:"interrupts"`
}

// Session runs one hooked shell on a PTY. Create with New, run with Run.
type Session struct {
	dialect  hook.Dialect
	name     string
	onResult func(model.CommandResult)

	mu      sync.Mutex
	scanner *osc.Scanner
	tail    *Tail
	seq     int
	summary Summary
}

// New creates a session for the given dialect. onResult is invoked for
// every decoded command completion; nil disables the callback.
func New(d hook.Dialect, onResult func(model.CommandResult)) *Session {
	return &Session{
		dialect:  d,
		name:     fmt.Sprintf("%s-%d", d, os.Getpid()),
		onResult: onResult,
		scanner:  osc.NewScanner(),
		tail:     NewTail(tailBufferBytes),
	}
}

// Name returns the session identifier carried on every event.
func (s *Session) Name() string {
	return s.name
}

// Summary returns the tally of commands observed so far.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// TailLines returns up to n recent output lines for explainer context.
func (s *Session) TailLines(n int) string {
	return s.tail.Lines(n)
}

// Run spawns the shell and blocks until it exits, returning the shell's
// exit status. Stdin/stdout are bridged to the PTY; the hook's OSC
// sequences pass through to the hosting terminal untouched.
func (s *Session) Run() (int, error) {
	initPath, err := hook.WriteInitFile(os.TempDir(), s.dialect)
	if err != nil {
		return 1, err
	}
	defer func() {
		// zsh gets a private ZDOTDIR, bash a single rcfile.
		if s.dialect == hook.Zsh {
			_ = os.RemoveAll(filepath.Dir(initPath))
		} else {
			_ = os.Remove(initPath)
		}
	}()

	spec, err := hook.Spawn(s.dialect, initPath)
	if err != nil {
		return 1, err
	}

	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
	cmd.Env = append(os.Environ(), spec.Env...)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return 1, fmt.Errorf("start pty: %w", err)
	}
	defer ptmx.Close()

	// Keep the child PTY sized like the hosting terminal.
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)
	go func() {
		for range winch {
			_ = pty.InheritSize(os.Stdin, ptmx)
		}
	}()
	winch <- syscall.SIGWINCH // initial size

	// Raw mode so keystrokes reach the child unmangled. Skipped when
	// stdin is not a terminal (pipes, CI).
	stdinFd := int(os.Stdin.Fd())
	if term.IsTerminal(stdinFd) {
		oldState, err := term.MakeRaw(stdinFd)
		if err != nil {
			return 1, fmt.Errorf("raw mode: %w", err)
		}
		defer func() { _ = term.Restore(stdinFd, oldState) }()
	}

	// Keystrokes in; the copy ends when the PTY closes.
	go func() {
		_, _ = io.Copy(ptmx, os.Stdin)
	}()

	// Output out, scanning for command-exit sequences along the way.
	buf := make([]byte, readBufferBytes)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			_, _ = os.Stdout.Write(buf[:n])
			s.processChunk(buf[:n], time.Now().UTC())
		}
		if err != nil {
			// PTY read returns EIO when the child exits; either way
			// the session is over.
			break
		}
	}

	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return 1, err
	}
	return 0, nil
}

// processChunk feeds one PTY output chunk to the tail buffer and the OSC
// scanner, emitting a CommandResult per completed command.
func (s *Session) processChunk(chunk []byte, now time.Time) {
	s.tail.Write(chunk)

	statuses := s.scanner.Feed(chunk)
	if len(statuses) == 0 {
		return
	}

	results := make([]model.CommandResult, 0, len(statuses))
	s.mu.Lock()
	for _, status := range statuses {
		s.seq++
		s.summary.Commands++
		switch {
		case status == model.InterruptStatus:
			s.summary.Interrupts++
		case status != 0:
			s.summary.Failures++
		}
		results = append(results, model.CommandResult{
			Session: s.name,
			Shell:   string(s.dialect),
			Seq:     s.seq,
			Status:  status,
			TS:      now,
		})
	}
	s.mu.Unlock()

	if s.onResult == nil {
		return
	}
	for _, r := range results {
		s.onResult(r)
	}
}
