// Package events moves command results between processes.
//
// A shellsig run session publishes every decoded command-exit signal as a
// JSON datagram on a unix socket; the watch TUI binds the socket, validates
// the payloads, and aggregates them per session in an in-memory store.
package events

import (
	"fmt"
	"strings"

	"github.com/nisdos/shellsig/internal/model"
)

// Validate checks a datagram payload before it enters the store.
func Validate(r model.CommandResult) error {
	if strings.TrimSpace(r.Session) == "" {
		return fmt.Errorf("session is required")
	}
	switch r.Shell {
	case "bash", "zsh":
	default:
		return fmt.Errorf("invalid shell %q", r.Shell)
	}
	if r.Seq < 1 {
		return fmt.Errorf("invalid seq %d", r.Seq)
	}
	if r.Status < 0 || r.Status > 255 {
		return fmt.Errorf("status %d out of range [0,255]", r.Status)
	}
	if r.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}
