package runner

import (
	"strings"
	"sync"
)

// Tail keeps the most recent terminal output, bounded by byte size.
// It backs the failure context handed to the explainer, so holding the
// whole scrollback is unnecessary.
type Tail struct {
	mu  sync.Mutex
	buf []byte
	max int
}

// NewTail creates a tail bounded to max bytes.
func NewTail(max int) *Tail {
	return &Tail{max: max}
}

// Write appends chunk, discarding the oldest bytes beyond the bound.
func (t *Tail) Write(chunk []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, chunk...)
	if len(t.buf) > t.max {
		// Drop on a line boundary when one exists inside the overflow,
		// so Lines never starts mid-line after a trim.
		cut := len(t.buf) - t.max
		if nl := indexByteFrom(t.buf, '\n', cut); nl >= 0 && nl < len(t.buf)-1 {
			cut = nl + 1
		}
		t.buf = append(t.buf[:0], t.buf[cut:]...)
	}
}

// Lines returns up to n most recent complete-ish lines as a single string.
// Carriage returns from the PTY are stripped.
func (t *Tail) Lines(n int) string {
	t.mu.Lock()
	text := string(t.buf)
	t.mu.Unlock()

	if n <= 0 || text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func indexByteFrom(b []byte, c byte, from int) int {
	for i := from; i < len(b); i++ {
		if b[i] == c {
			return i
		}
	}
	return -1
}
