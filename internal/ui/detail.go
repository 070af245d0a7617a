package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/five82/screener/internal/screener"
)

// detailSize returns the outer size of the company dialog.
func (m Model) detailSize() (width, height int) {
	return max(min(m.width-4, 84), 30), max(min(m.height-4, 28), 10)
}

// detailBody renders the dialog body for the viewport.
func (m Model) detailBody(width int) string {
	d := m.state.Detail
	if d == nil {
		return ""
	}
	styles := m.theme.Styles()
	width = max(width, 20)

	type row struct{ label, value string }
	c := d.Company
	rows := []row{
		{"Symbol", c.Symbol},
		{"Sector", c.Sector},
		{"Industry", c.Industry},
		{"Market cap", screener.FormatMarketCap(c.MarketCap)},
		{"Price", screener.FormatPrice(c.Price)},
	}
	website := c.Website
	if p := d.Profile; p != nil {
		if p.Website != "" {
			website = p.Website
		}
		rows = append(rows,
			row{"CEO", p.CEO},
			row{"Country", p.Country},
			row{"Exchange", p.Exchange},
		)
		if p.Employees > 0 {
			rows = append(rows, row{"Employees", humanize.Comma(int64(p.Employees))})
		}
	}
	rows = append(rows, row{"Website", website})

	labelStyle := styles.MutedText.Width(12)
	var b strings.Builder
	for _, r := range rows {
		if strings.TrimSpace(r.value) == "" {
			continue
		}
		b.WriteString(labelStyle.Render(r.label))
		b.WriteString(styles.Text.Render(truncate(r.value, width-12)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.AccentText.Bold(true).Render("About"))
	b.WriteString("\n")
	desc := d.Description()
	if desc == "" {
		b.WriteString(styles.MutedText.Render(m.spinner.View() + " Loading profile..."))
		return b.String()
	}
	descStyle := styles.Text
	if desc == screener.NoDescription {
		descStyle = styles.FaintText
	}
	b.WriteString(descStyle.Width(width).Render(desc))
	return b.String()
}

// renderDetail renders the company dialog over the screen.
func (m Model) renderDetail() string {
	d := m.state.Detail
	if d == nil {
		return m.renderMain()
	}
	styles := m.theme.Styles()
	w, _ := m.detailSize()

	title := d.Company.Symbol + " · " + d.Company.DisplayName()
	if d.Loading {
		title += " " + m.spinner.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.Text.Bold(true).Render(truncate(title, w-6)),
		styles.FaintText.Render(strings.Repeat("─", max(w-6, 1))),
		m.detailViewport.View(),
		styles.FaintText.Render("j/k scroll · esc close"),
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(0, 1).
		Width(w).
		Render(content)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Confirm), key.Matches(msg, m.keys.Quit):
		m.state = m.state.CloseDetail()
		m.overlay = overlayNone
	case key.Matches(msg, m.keys.Down):
		m.detailViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.detailViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.detailViewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.detailViewport.HalfPageUp()
	case key.Matches(msg, m.keys.Top):
		m.detailViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.detailViewport.GotoBottom()
	}
	return m, nil
}
