package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// anyOption is the first entry of every picker and maps to an unset filter.
const anyOption = "Any"

// pickerModal selects a sector or industry from the loaded list. Typing
// narrows the options.
type pickerModal struct {
	field   focusArea
	title   string
	names   []string
	current string
	loading bool
	filter  textinput.Model
	cursor  int

	chosen bool
	value  string
}

func newPickerModal(field focusArea, title string, names []string, current string, loading bool) pickerModal {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "type to filter"
	ti.CharLimit = 64
	ti.Focus()

	p := pickerModal{
		field:   field,
		title:   title,
		names:   names,
		current: current,
		loading: loading,
		filter:  ti,
	}
	p.cursor = p.indexOf(current)
	return p
}

// withNames replaces the option list, keeping the cursor on the same option
// when it is still present.
func (p pickerModal) withNames(names []string, loading bool) pickerModal {
	visible := p.visible()
	selected := ""
	if p.cursor < len(visible) {
		selected = visible[p.cursor]
	}
	p.names = names
	p.loading = loading
	p.cursor = max(p.indexOf(selected), 0)
	return p
}

// visible returns the options matching the filter, "Any" first.
func (p pickerModal) visible() []string {
	query := strings.ToLower(strings.TrimSpace(p.filter.Value()))
	out := make([]string, 0, len(p.names)+1)
	if query == "" {
		out = append(out, anyOption)
	}
	for _, name := range p.names {
		if query == "" || strings.Contains(strings.ToLower(name), query) {
			out = append(out, name)
		}
	}
	return out
}

func (p pickerModal) indexOf(name string) int {
	if name == "" {
		return 0
	}
	for i, opt := range p.visible() {
		if opt == name {
			return i
		}
	}
	return 0
}

// Update implements Modal.
func (p pickerModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil, false
	}

	visible := p.visible()
	switch {
	case key.Matches(keyMsg, keys.Escape):
		return p, nil, true
	case key.Matches(keyMsg, keys.Confirm):
		if len(visible) == 0 {
			return p, nil, false
		}
		p.chosen = true
		p.value = visible[p.cursor]
		if p.value == anyOption {
			p.value = ""
		}
		return p, nil, true
	case key.Matches(keyMsg, keys.ListUp):
		if p.cursor > 0 {
			p.cursor--
		}
		return p, nil, false
	case key.Matches(keyMsg, keys.ListDown):
		if p.cursor < len(visible)-1 {
			p.cursor++
		}
		return p, nil, false
	}

	var cmd tea.Cmd
	p.filter, cmd = p.filter.Update(keyMsg)
	p.cursor = 0
	return p, cmd, false
}

// View implements Modal.
func (p pickerModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	modalWidth := min(max(width/2, 36), 60)
	rows := max(height-12, 3)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(p.title))
	b.WriteString("\n")
	b.WriteString(p.filter.View())
	b.WriteString("\n\n")

	visible := p.visible()
	switch {
	case p.loading && len(p.names) == 0:
		b.WriteString(styles.MutedText.Render("Loading..."))
	case len(visible) == 0:
		b.WriteString(styles.MutedText.Render("No matches"))
	default:
		start := 0
		if p.cursor >= rows {
			start = p.cursor - rows + 1
		}
		end := min(start+rows, len(visible))
		lines := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			opt := visible[i]
			marker := "  "
			if opt == p.current || (opt == anyOption && p.current == "") {
				marker = "• "
			}
			line := truncate(marker+opt, modalWidth-6)
			if i == p.cursor {
				line = styles.Selected.Width(modalWidth - 6).Render(line)
			} else {
				line = styles.Text.Render(line)
			}
			lines = append(lines, line)
		}
		b.WriteString(strings.Join(lines, "\n"))
	}

	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("enter select · esc cancel"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(modalWidth).
		Render(b.String())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

// openPicker opens the option list for the sector or industry field.
func (m *Model) openPicker(field focusArea) {
	var p pickerModal
	switch field {
	case focusSector:
		p = newPickerModal(field, "Sector", m.state.Sectors, m.state.Criteria.Sector, m.state.SectorsLoading)
	case focusIndustry:
		title := "Industry"
		if s := m.state.Criteria.Sector; s != "" {
			title += " · " + s
		}
		p = newPickerModal(field, title, m.state.Industries, m.state.Criteria.Industry, m.state.IndustriesLoading)
	default:
		return
	}
	m.modal = p
	m.overlay = overlayPicker
}

// refreshPicker feeds newly loaded names into an open picker.
func (m *Model) refreshPicker() {
	p, ok := m.modal.(pickerModal)
	if !ok || m.overlay != overlayPicker {
		return
	}
	switch p.field {
	case focusSector:
		m.modal = p.withNames(m.state.Sectors, m.state.SectorsLoading)
	case focusIndustry:
		m.modal = p.withNames(m.state.Industries, m.state.IndustriesLoading)
	}
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal == nil {
		m.overlay = overlayNone
		return m, nil
	}
	updated, cmd, closed := m.modal.Update(msg, m.keys)
	m.modal = updated
	if !closed {
		return m, cmd
	}

	m.overlay = overlayNone
	m.modal = nil
	p, ok := updated.(pickerModal)
	if !ok || !p.chosen {
		return m, cmd
	}
	switch p.field {
	case focusSector:
		return m, tea.Batch(cmd, m.selectSector(p.value))
	case focusIndustry:
		m.state = m.state.SelectIndustry(p.value)
	}
	return m, cmd
}
