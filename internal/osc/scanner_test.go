package osc

import (
	"fmt"
	"testing"
)

func seq(status int) string {
	return fmt.Sprintf("\x1b]1337;command-exit=%d\x07", status)
}

func TestFeed_SingleChunk(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []int
	}{
		{
			name:  "plain failure",
			input: "$ false\r\n" + seq(1),
			want:  []int{1},
		},
		{
			name:  "status zero is still signalled",
			input: seq(0),
			want:  []int{0},
		},
		{
			name:  "interrupt",
			input: "^C\r\n" + seq(130),
			want:  []int{130},
		},
		{
			name:  "st terminator",
			input: "\x1b]1337;command-exit=42\x1b\\",
			want:  []int{42},
		},
		{
			name:  "whitespace around status",
			input: "\x1b]1337;command-exit= 7 \x07",
			want:  []int{7},
		},
		{
			name:  "multiple commands in one chunk",
			input: seq(0) + "ok\r\n" + seq(2) + seq(127),
			want:  []int{0, 2, 127},
		},
		{
			name:  "title OSC is ignored",
			input: "\x1b]0;window title\x07" + seq(3),
			want:  []int{3},
		},
		{
			name:  "csi sequences are ignored",
			input: "\x1b[31mred\x1b[0m" + seq(5),
			want:  []int{5},
		},
		{
			name:  "status above 255 rejected",
			input: "\x1b]1337;command-exit=300\x07",
			want:  nil,
		},
		{
			name:  "negative status rejected",
			input: "\x1b]1337;command-exit=-1\x07",
			want:  nil,
		},
		{
			name:  "non-numeric status rejected",
			input: "\x1b]1337;command-exit=abc\x07",
			want:  nil,
		},
		{
			name:  "other 1337 key ignored",
			input: "\x1b]1337;SetUserVar=foo\x07",
			want:  nil,
		},
		{
			name:  "no sequences",
			input: "hello world\r\n",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewScanner().Feed([]byte(tt.input))
			assertStatuses(t, got, tt.want)
		})
	}
}

// A PTY delivers output in arbitrary chunks; the sequence must decode no
// matter where the read boundary lands.
func TestFeed_SplitAtEveryBoundary(t *testing.T) {
	full := "echo out\r\n" + seq(17) + "$ "
	for cut := 1; cut < len(full); cut++ {
		s := NewScanner()
		got := s.Feed([]byte(full[:cut]))
		got = append(got, s.Feed([]byte(full[cut:]))...)
		if len(got) != 1 || got[0] != 17 {
			t.Fatalf("split at %d: got %v, want [17]", cut, got)
		}
	}
}

func TestFeed_SplitSTTerminator(t *testing.T) {
	full := "\x1b]1337;command-exit=9\x1b\\"
	for cut := 1; cut < len(full); cut++ {
		s := NewScanner()
		got := s.Feed([]byte(full[:cut]))
		got = append(got, s.Feed([]byte(full[cut:]))...)
		if len(got) != 1 || got[0] != 9 {
			t.Fatalf("split at %d: got %v, want [9]", cut, got)
		}
	}
}

func TestFeed_ByteAtATime(t *testing.T) {
	s := NewScanner()
	input := seq(130) + "x" + seq(0)
	var got []int
	for i := 0; i < len(input); i++ {
		got = append(got, s.Feed([]byte{input[i]})...)
	}
	assertStatuses(t, got, []int{130, 0})
}

// Every representable exit status round-trips through the emit format.
func TestFeed_FullStatusRange(t *testing.T) {
	s := NewScanner()
	for status := 0; status <= 255; status++ {
		got := s.Feed([]byte(seq(status)))
		if len(got) != 1 || got[0] != status {
			t.Fatalf("status %d: got %v", status, got)
		}
	}
}

func TestFeed_AbandonsOversizedSequence(t *testing.T) {
	s := NewScanner()

	// An OSC that never terminates within the size bound.
	junk := make([]byte, maxSequenceBytes+10)
	junk[0] = 0x1b
	junk[1] = ']'
	for i := 2; i < len(junk); i++ {
		junk[i] = 'x'
	}
	if got := s.Feed(junk); got != nil {
		t.Fatalf("oversized sequence produced statuses: %v", got)
	}

	// The scanner must recover: the next well-formed sequence decodes.
	assertStatuses(t, s.Feed([]byte("\x07"+seq(4))), []int{4})
}

func TestFeed_PendingDoesNotLeakAcrossSequences(t *testing.T) {
	s := NewScanner()
	if got := s.Feed([]byte("\x1b]1337;command-")); got != nil {
		t.Fatalf("incomplete sequence produced %v", got)
	}
	assertStatuses(t, s.Feed([]byte("exit=8\x07after")), []int{8})
	// Nothing pending afterwards.
	assertStatuses(t, s.Feed([]byte(seq(1))), []int{1})
}

func assertStatuses(t *testing.T, got, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
