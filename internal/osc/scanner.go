// Package osc extracts command-exit signals from a terminal output stream.
//
// The hook emits one OSC sequence per completed foreground command:
//
//	ESC ] 1337 ; command-exit=<status> BEL
//
// This is protocol parsing, not interpretation — the sequence grammar is
// fixed by the hook, so the scanner decodes it deterministically. Everything
// else in the stream (visible text, CSI sequences, other OSC commands) is
// left alone; the scanner reports statuses and never rewrites bytes.
package osc

import (
	"bytes"
	"strconv"
	"strings"
)

const (
	esc = 0x1b
	bel = 0x07

	// maxSequenceBytes bounds how much of an unterminated sequence is
	// carried between chunks. Anything longer is abandoned — a real
	// command-exit sequence is a few dozen bytes at most.
	maxSequenceBytes = 4096
)

// Scanner is an incremental decoder. Output arrives in arbitrary chunks
// from the PTY, so a sequence may be split anywhere; the scanner keeps the
// incomplete tail and resumes on the next Feed.
type Scanner struct {
	pending []byte
}

// NewScanner returns a scanner with no pending state.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Feed scans one output chunk and returns the exit statuses of every
// command-exit sequence completed within it, in stream order.
func (s *Scanner) Feed(chunk []byte) []int {
	buf := chunk
	if len(s.pending) > 0 {
		buf = append(s.pending, chunk...)
		s.pending = nil
	}

	var statuses []int
	i := 0
	for i < len(buf) {
		j := bytes.IndexByte(buf[i:], esc)
		if j < 0 {
			return statuses
		}
		start := i + j
		rest := buf[start:]

		// A bare ESC at the end of the chunk may be the start of an
		// OSC introducer split across reads.
		if len(rest) == 1 {
			s.carry(rest)
			return statuses
		}
		if rest[1] != ']' {
			// Not an OSC sequence; CSI and the rest are none of our
			// business.
			i = start + 1
			continue
		}

		end, termLen := oscEnd(rest)
		if end < 0 {
			// Unterminated: carry it into the next Feed unless it has
			// grown past any plausible command-exit sequence.
			if len(rest) <= maxSequenceBytes {
				s.carry(rest)
			}
			return statuses
		}

		if status, ok := parseCommandExit(rest[2:end]); ok {
			statuses = append(statuses, status)
		}
		i = start + end + termLen
	}
	return statuses
}

// carry saves an incomplete sequence tail for the next Feed.
func (s *Scanner) carry(tail []byte) {
	s.pending = append(s.pending[:0], tail...)
}

// oscEnd finds the terminator of an OSC sequence starting at seq[0] (ESC).
// Returns the index of the terminator and its length, or -1 when the
// sequence is not yet complete. OSC ends with BEL or ST (ESC \).
func oscEnd(seq []byte) (int, int) {
	for k := 2; k < len(seq); k++ {
		switch seq[k] {
		case bel:
			return k, 1
		case esc:
			if k+1 >= len(seq) {
				// Could be the first byte of ST — incomplete.
				return -1, 0
			}
			if seq[k+1] == '\\' {
				return k, 2
			}
		}
	}
	return -1, 0
}

// parseCommandExit decodes the body between "ESC ]" and the terminator.
// Whitespace around the status value is tolerated; values outside [0,255]
// and every other OSC command are rejected.
func parseCommandExit(body []byte) (int, bool) {
	text := string(body)
	rest, ok := strings.CutPrefix(text, "1337;")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutPrefix(strings.TrimSpace(rest), "command-exit")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutPrefix(strings.TrimSpace(rest), "=")
	if !ok {
		return 0, false
	}
	status, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || status < 0 || status > 255 {
		return 0, false
	}
	return status, true
}
