// Package model defines the shared types for command-exit tracking.
package model

import "time"

// InterruptStatus is the exit status of an interactively interrupted
// command (128 + SIGINT). It is signalled like any other status but not
// surfaced as an error to the user.
const InterruptStatus = 130

// CommandResult is one decoded command-exit signal: the termination status
// of a single foreground command, captured by the hook and recovered from
// the output stream by the scanner.
type CommandResult struct {
	// Session identifies the shell session the command ran in
	// (e.g., "bash-41235").
	Session string `json:"session"`
	// Shell is the dialect of the emitting shell ("bash", "zsh").
	Shell string `json:"shell"`
	// Seq is the 1-based position of the command within its session.
	Seq int `json:"seq"`
	// Status is the exit status in [0, 255].
	Status int `json:"status"`
	// TS is when the signal was decoded.
	TS time.Time `json:"ts"`
}

// Ok reports whether the command succeeded.
func (r CommandResult) Ok() bool {
	return r.Status == 0
}

// Interrupted reports whether the command was interactively interrupted.
func (r CommandResult) Interrupted() bool {
	return r.Status == InterruptStatus
}

// Failed reports whether the command failed for a reason other than an
// interactive interrupt.
func (r CommandResult) Failed() bool {
	return r.Status != 0 && r.Status != InterruptStatus
}

// Explanation is the LLM's analysis of a failed command, parsed from the
// explainer's JSON response.
type Explanation struct {
	// Summary is a one-line description of what the exit status means.
	Summary string `json:"summary"`
	// LikelyCause is the most probable reason given the terminal context.
	LikelyCause string `json:"likely_cause"`
	// Suggestion is a concrete next step for the user.
	Suggestion string `json:"suggestion"`

	// Usage is populated by the explainer, not parsed from the response.
	Usage TokenUsage `json:"-"`
}

// TokenUsage tracks LLM token consumption for a single explanation.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}
