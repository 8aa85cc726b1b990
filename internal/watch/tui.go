// Package watch renders a live dashboard over the command-result store:
// one row per shell session with its counters, plus the recent failures
// of the selected session.
package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nisdos/shellsig/internal/events"
	"github.com/nisdos/shellsig/internal/model"
)

type tickMsg struct{}

// TUI runs the interactive session dashboard.
type TUI struct {
	Store           *events.Store
	Theme           Theme
	RefreshInterval time.Duration // 0 disables auto-refresh
	SocketPath      string        // shown in the header
}

// tuiModel implements tea.Model.
type tuiModel struct {
	store           *events.Store
	st              styles
	refreshInterval time.Duration
	socketPath      string

	sessions []events.SessionState
	cursor   int

	failingOnly bool
	filter      textinput.Model
	filtering   bool

	width  int
	height int

	refreshCount int
}

// Run starts the dashboard and blocks until the user quits.
func (t *TUI) Run() error {
	fi := textinput.New()
	fi.Placeholder = "filter sessions..."
	fi.CharLimit = 128
	fi.Width = 40

	m := &tuiModel{
		store:           t.Store,
		st:              newStyles(t.Theme),
		refreshInterval: t.RefreshInterval,
		socketPath:      t.SocketPath,
		filter:          fi,
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return m.scheduleTick()
}

// scheduleTick returns a tea.Cmd that sends a tickMsg after the refresh
// interval. Returns nil if auto-refresh is disabled (interval <= 0).
func (m *tuiModel) scheduleTick() tea.Cmd {
	if m.refreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// refresh pulls the current snapshot from the store, applying the
// failing-only and name filters.
func (m *tuiModel) refresh() {
	now := time.Now().UTC()
	var snap []events.SessionState
	if m.failingOnly {
		snap = m.store.SnapshotFailing(now)
	} else {
		snap = m.store.Snapshot(now)
	}

	if q := strings.TrimSpace(m.filter.Value()); q != "" {
		filtered := snap[:0]
		for _, s := range snap {
			if strings.Contains(s.Session, q) {
				filtered = append(filtered, s)
			}
		}
		snap = filtered
	}

	m.sessions = snap
	m.refreshCount++
	if m.cursor >= len(m.sessions) {
		m.cursor = len(m.sessions) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.refresh()
		return m, m.scheduleTick()
	}

	return m, nil
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch msg.String() {
		case "esc", "escape":
			m.filtering = false
			m.filter.SetValue("")
			m.filter.Blur()
			m.refresh()
			return m, nil
		case "enter":
			m.filtering = false
			m.filter.Blur()
			m.refresh()
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.refresh()
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.sessions)-1 {
			m.cursor++
		}

	case "f":
		m.failingOnly = !m.failingOnly
		m.refresh()

	case "/":
		m.filtering = true
		m.filter.Focus()
		return m, textinput.Blink

	case "r":
		m.refresh()
	}

	return m, nil
}

func (m *tuiModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	// Header: title + keybindings
	b.WriteString(m.st.title.Render("shellsig watch"))
	b.WriteString("  ")
	mode := "f=failing-only:OFF"
	if m.failingOnly {
		mode = "f=failing-only:ON"
	}
	b.WriteString(m.st.dim.Render(fmt.Sprintf("↑↓=select  %s  /=filter  r=refresh  q=quit", mode)))
	if m.socketPath != "" {
		b.WriteString("  ")
		b.WriteString(m.st.dim.Render(m.socketPath))
	}
	b.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString("  ")
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	if len(m.sessions) == 0 {
		if m.failingOnly {
			b.WriteString("  No failing sessions.\n")
		} else {
			b.WriteString("  No sessions yet. Run `shellsig run` in another terminal.\n")
		}
		return b.String()
	}

	// Column widths
	nameWidth := 12
	for _, s := range m.sessions {
		if len(s.Session)+4 > nameWidth {
			nameWidth = len(s.Session) + 4
		}
	}

	header := padRight("  SESSION", nameWidth) + "  SHELL  CMDS  FAIL  INT  LAST   AGE"
	b.WriteString(m.st.header.Render(header))
	b.WriteString("\n")

	now := time.Now().UTC()
	for i, s := range m.sessions {
		row := fmt.Sprintf("%s  %-5s  %4d  %4d  %3d  %s  %s",
			padRight("  "+s.Session, nameWidth),
			s.Shell,
			s.Commands,
			s.Failures,
			s.Interrupts,
			m.renderStatus(s.Last.Status),
			formatAge(now.Sub(s.Last.TS)),
		)
		if i == m.cursor {
			b.WriteString(m.st.selected.Render("→" + row[1:]))
		} else {
			b.WriteString(row)
		}
		b.WriteString("\n")
	}

	// Recent failures of the selected session
	if m.cursor >= 0 && m.cursor < len(m.sessions) {
		s := m.sessions[m.cursor]
		if len(s.RecentFailures) > 0 {
			b.WriteString("\n")
			b.WriteString(m.st.dim.Render(fmt.Sprintf("  recent failures in %s:", s.Session)))
			b.WriteString("\n")
			for _, f := range s.RecentFailures {
				line := fmt.Sprintf("    #%d exit %d at %s", f.Seq, f.Status, f.TS.Format("15:04:05"))
				b.WriteString(m.st.err.Render(line))
				b.WriteString("\n")
			}
		}
	}

	// Summary line
	failing := 0
	for _, s := range m.sessions {
		if s.Last.Failed() {
			failing++
		}
	}
	b.WriteString(m.st.dim.Render(fmt.Sprintf("  %d sessions | %d failing | refresh #%d",
		len(m.sessions), failing, m.refreshCount)))
	b.WriteString("\n")

	return b.String()
}

// renderStatus renders a fixed-width colored exit status cell.
func (m *tuiModel) renderStatus(status int) string {
	cell := fmt.Sprintf("%5d", status)
	switch {
	case status == 0:
		return m.st.ok.Render(cell)
	case status == model.InterruptStatus:
		return m.st.warn.Render(cell)
	default:
		return m.st.err.Render(cell)
	}
}

// formatAge formats a duration since the last command compactly.
func formatAge(d time.Duration) string {
	switch {
	case d < 0:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}

// padRight pads a string with spaces to reach the desired visible width.
func padRight(s string, width int) string {
	visible := visibleLen(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

// visibleLen returns the visible length of a string, ignoring ANSI escape sequences.
func visibleLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		n++
	}
	return n
}
