package watch

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nisdos/shellsig/internal/events"
	"github.com/nisdos/shellsig/internal/model"
)

// newTestModel creates a tuiModel over a store seeded with one ok session
// and one failing session.
func newTestModel() *tuiModel {
	now := time.Now().UTC()
	store := events.NewStore(time.Hour)
	store.Record(model.CommandResult{Session: "bash-1", Shell: "bash", Seq: 1, Status: 0, TS: now})
	store.Record(model.CommandResult{Session: "zsh-2", Shell: "zsh", Seq: 1, Status: 127, TS: now})

	fi := textinput.New()
	m := &tuiModel{
		store:  store,
		st:     newStyles(DarkTheme()),
		filter: fi,
		width:  120,
		height: 40,
	}
	m.refresh()
	return m
}

func TestRefresh_ListsAllSessions(t *testing.T) {
	m := newTestModel()
	if len(m.sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(m.sessions))
	}
	// Store snapshots are sorted by session name.
	if m.sessions[0].Session != "bash-1" || m.sessions[1].Session != "zsh-2" {
		t.Errorf("sessions: %+v", m.sessions)
	}
}

func TestKey_FailingOnlyToggle(t *testing.T) {
	m := newTestModel()
	_, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})

	if !m.failingOnly {
		t.Fatal("expected failing-only mode after pressing f")
	}
	if len(m.sessions) != 1 || m.sessions[0].Session != "zsh-2" {
		t.Fatalf("expected only the failing session, got %+v", m.sessions)
	}

	_, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	if m.failingOnly || len(m.sessions) != 2 {
		t.Error("expected toggle back to all sessions")
	}
}

func TestKey_CursorNavigation(t *testing.T) {
	m := newTestModel()

	_, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 1 {
		t.Errorf("cursor = %d after down, want 1", m.cursor)
	}
	// Bottom of the list: no further movement.
	_, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1 (clamped)", m.cursor)
	}
	_, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up, want 0", m.cursor)
	}
}

func TestKey_FilterMode(t *testing.T) {
	m := newTestModel()

	_, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if !m.filtering {
		t.Fatal("expected filter mode after pressing /")
	}

	// Typing narrows the list immediately.
	_, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}})
	if len(m.sessions) != 1 || m.sessions[0].Session != "zsh-2" {
		t.Fatalf("expected filter to narrow to zsh-2, got %+v", m.sessions)
	}

	// Escape clears the filter.
	_, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filtering {
		t.Error("expected filter mode off after escape")
	}
	if len(m.sessions) != 2 {
		t.Errorf("expected full list after clearing filter, got %d", len(m.sessions))
	}
}

func TestKey_QuitQuits(t *testing.T) {
	m := newTestModel()
	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Errorf("expected tea.QuitMsg, got %T", msg)
	}
}

func TestCursorClampedAfterRefresh(t *testing.T) {
	m := newTestModel()
	m.cursor = 1

	// Narrowing to one session must pull the cursor back in range.
	m.failingOnly = true
	m.refresh()
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0 after list shrank", m.cursor)
	}
}

func TestView_ShowsSessionsAndFailures(t *testing.T) {
	m := newTestModel()
	m.cursor = 1 // zsh-2, the failing one

	view := m.View()
	for _, want := range []string{"bash-1", "zsh-2", "recent failures in zsh-2", "exit 127"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestView_EmptyStore(t *testing.T) {
	fi := textinput.New()
	m := &tuiModel{
		store:  events.NewStore(time.Hour),
		st:     newStyles(DarkTheme()),
		filter: fi,
		width:  80,
		height: 24,
	}
	m.refresh()

	view := m.View()
	if !strings.Contains(view, "No sessions yet") {
		t.Errorf("empty view missing placeholder:\n%s", view)
	}
}

func TestThemeByName(t *testing.T) {
	if ThemeByName("light") != LightTheme() {
		t.Error("ThemeByName(light) should return the light theme")
	}
	if ThemeByName("dark") != DarkTheme() {
		t.Error("ThemeByName(dark) should return the dark theme")
	}
	if ThemeByName("") != DarkTheme() {
		t.Error("ThemeByName should default to dark")
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "now"},
		{5 * time.Second, "5s"},
		{3 * time.Minute, "3m"},
		{2 * time.Hour, "2h"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestVisibleLen_IgnoresANSI(t *testing.T) {
	styled := newStyles(DarkTheme()).err.Render("abc")
	if got := visibleLen(styled); got != 3 {
		t.Errorf("visibleLen = %d, want 3", got)
	}
}
