package explain

import (
	_ "embed"
	"fmt"
	"strings"
)

// SystemPrompt is the system-level instruction for the LLM explainer.
// Loaded from prompts/system.md at compile time.
//
//go:embed prompts/system.md
var SystemPrompt string

// UserPromptTemplate is the user-level prompt template.
// The failure context is appended after this template at runtime.
// Loaded from prompts/user.md at compile time.
//
//go:embed prompts/user.md
var UserPromptTemplate string

// BuildUserMessage renders the user prompt for a failure request.
func BuildUserMessage(req Request) string {
	var b strings.Builder
	b.WriteString(UserPromptTemplate)
	fmt.Fprintf(&b, "\nShell: %s\nExit status: %d\n", req.Shell, req.Status)
	if req.Output != "" {
		b.WriteString("\nRecent terminal output:\n```\n")
		b.WriteString(req.Output)
		if !strings.HasSuffix(req.Output, "\n") {
			b.WriteByte('\n')
		}
		b.WriteString("```\n")
	}
	return b.String()
}

// stripMarkdownFences removes a surrounding ```json ... ``` (or plain ```)
// fence from an LLM response, leaving the inner payload.
func stripMarkdownFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	// Drop the opening fence line (``` or ```json).
	rest := trimmed[3:]
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		rest = rest[idx+1:]
	} else {
		rest = ""
	}

	// Drop the closing fence.
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSuffix(rest, "```")
	return strings.TrimSpace(rest)
}
