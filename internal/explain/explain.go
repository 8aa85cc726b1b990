// Package explain turns a failed command's exit status and surrounding
// terminal output into a short human-readable diagnosis via an LLM.
//
// Go code constructs the prompt and parses the response; the diagnosis
// itself (what failed, why, what to try) is made entirely by the LLM.
package explain

import (
	"context"

	"github.com/nisdos/shellsig/internal/model"
)

// Request carries everything the explainer sees about a failure.
type Request struct {
	// Shell is the dialect that reported the failure ("bash", "zsh").
	Shell string
	// Status is the command's exit status (non-zero).
	Status int
	// Output is the recent terminal output preceding the failure,
	// already truncated to the configured number of lines.
	Output string
}

// Explainer sends a failure to an LLM and returns an explanation.
type Explainer interface {
	// Explain sends the failure context to an LLM and returns the diagnosis.
	Explain(ctx context.Context, req Request) (*model.Explanation, error)

	// Provider returns the provider name (e.g., "anthropic", "openai").
	Provider() string

	// Model returns the model name used for explanations.
	Model() string
}
