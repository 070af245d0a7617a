package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/screener/internal/logtail"
)

// logView holds the activity log overlay state.
type logView struct {
	viewport  viewport.Model
	filter    textinput.Model
	filtering bool
	entries   []logtail.Entry
	shown     int
	err       error
	loaded    bool
}

func newLogView() logView {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter log..."
	ti.CharLimit = 100
	return logView{
		viewport: viewport.New(0, 0),
		filter:   ti,
	}
}

func (l *logView) resize(width, height int) {
	l.viewport.Width = max(width, 10)
	l.viewport.Height = max(height, 3)
}

// load replaces the entries.
func (l *logView) load(entries []logtail.Entry, err error) {
	l.entries = entries
	l.err = err
	l.loaded = true
}

// render rebuilds the viewport content from the filtered entries.
func (l *logView) render(theme Theme, width int) {
	styles := theme.Styles()
	if !l.loaded {
		l.viewport.SetContent(styles.MutedText.Render("Reading log..."))
		return
	}
	if l.err != nil {
		l.shown = 0
		l.viewport.SetContent(styles.DangerText.Render("Log unavailable: " + l.err.Error()))
		return
	}

	entries := logtail.Filter(l.entries, l.filter.Value())
	l.shown = len(entries)
	if len(entries) == 0 {
		msg := "Log is empty"
		if strings.TrimSpace(l.filter.Value()) != "" {
			msg = "No entries match the filter"
		}
		l.viewport.SetContent(styles.MutedText.Render(msg))
		return
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, formatLogEntry(e, styles, width))
	}
	l.viewport.SetContent(strings.Join(lines, "\n"))
	l.viewport.GotoBottom()
}

// formatLogEntry renders "15:04:05 LEVEL message key=value".
func formatLogEntry(e logtail.Entry, styles Styles, width int) string {
	if e.Time.IsZero() && e.Level == "" {
		return styles.Text.Render(truncate(e.Raw, width))
	}
	ts := "--:--:--"
	if !e.Time.IsZero() {
		ts = e.Time.Local().Format(time.TimeOnly)
	}
	level := fmt.Sprintf("%-5s", e.Level)
	line := styles.FaintText.Render(ts) + " " +
		styles.LevelStyle(e.Level).Render(level) + " " +
		styles.Text.Render(e.Message)
	if fields := e.FieldString(); fields != "" {
		line += " " + styles.MutedText.Render(fields)
	}
	if width > 0 {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return line
}

// renderLogs renders the activity log overlay.
func (m Model) renderLogs() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	title := "Activity Log"
	if q := strings.TrimSpace(m.logs.filter.Value()); q != "" {
		title += " (filtered)"
	}
	box := m.renderTitledBox(title, m.logs.viewport.View(), m.width, m.height-2, true)

	var status []string
	if m.logs.filtering {
		status = append(status, m.logs.filter.View())
	} else {
		status = append(status,
			bg.Render(fmt.Sprintf("%d of %d entries", m.logs.shown, len(m.logs.entries)), styles.FaintText))
		if m.logPath != "" {
			status = append(status, bg.Render(truncateMiddle(m.logPath, 50), styles.MutedText))
		}
		status = append(status,
			bg.Render("/", styles.AccentText)+bg.Render(" filter", styles.FaintText),
			bg.Render("r", styles.AccentText)+bg.Render(" reload", styles.FaintText),
			bg.Render("esc", styles.AccentText)+bg.Render(" close", styles.FaintText),
		)
	}
	sep := bg.Space() + bg.Render("•", styles.FaintText) + bg.Space()
	return m.renderHeader() + "\n" + box + "\n" + bg.FillLine(strings.Join(status, sep), m.width)
}

// handleLogsKey processes keyboard input for the log overlay.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.logs.filtering {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.logs.filtering = false
			m.logs.filter.Blur()
			return m, nil
		case key.Matches(msg, m.keys.Escape):
			m.logs.filtering = false
			m.logs.filter.Blur()
			m.logs.filter.SetValue("")
			m.logs.render(m.theme, m.logs.viewport.Width)
			return m, nil
		}
		var cmd tea.Cmd
		m.logs.filter, cmd = m.logs.filter.Update(msg)
		m.logs.render(m.theme, m.logs.viewport.Width)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Search):
		m.logs.filtering = true
		return m, m.logs.filter.Focus()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.readLogsCmd()
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Logs), key.Matches(msg, m.keys.Quit):
		m.overlay = overlayNone
	case key.Matches(msg, m.keys.Down):
		m.logs.viewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.logs.viewport.ScrollUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logs.viewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logs.viewport.HalfPageUp()
	case key.Matches(msg, m.keys.Top):
		m.logs.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logs.viewport.GotoBottom()
	}
	return m, nil
}
