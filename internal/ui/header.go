package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/five82/screener/internal/marketdata"
)

// renderHeader renders the status bar with all information.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < compactWidth

	parts := []string{bg.Render("screener", styles.Logo)}

	if host := displayHost(m.apiURL); host != "" && !compact {
		parts = append(parts, bg.Render(truncateMiddle(host, 40), styles.MutedText))
	}

	switch {
	case m.state.SectorsLoading:
		parts = append(parts, bg.Render(m.spinner.View()+" sectors", styles.WarningText))
	default:
		parts = append(parts,
			bg.Render("Sectors:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", len(m.state.Sectors)), styles.Text))
	}
	switch {
	case m.state.IndustriesLoading:
		parts = append(parts, bg.Render(m.spinner.View()+" industries", styles.WarningText))
	default:
		parts = append(parts,
			bg.Render("Industries:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", len(m.state.Industries)), styles.Text))
	}

	if m.state.Queried {
		matches := fmt.Sprintf("%d", len(m.state.Results))
		if m.state.Total != nil {
			matches = humanize.Comma(int64(*m.state.Total))
		}
		parts = append(parts,
			bg.Render("Matches:", styles.MutedText)+bg.Space()+bg.Render(matches, styles.InfoText))
	}
	if m.state.Loading {
		parts = append(parts, bg.Render(m.spinner.View()+" querying", styles.WarningText.Bold(true)))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderBanner renders the dismissible error banner, or "" when there is
// nothing to report. Query errors take precedence over metadata errors.
func (m Model) renderBanner() string {
	err := m.state.Err
	prefix := marketdata.Describe(err)
	if err == nil {
		err = m.state.MetadataErr
		if err == nil {
			return ""
		}
		prefix = "Filter lists unavailable"
	}
	styles := m.theme.Styles()
	text := prefix + ": " + err.Error()
	hint := "  x dismiss"
	text = truncate(text, max(m.width-len(hint)-2, 10))
	return styles.Banner.Width(m.width).Render(text + hint)
}

// renderCommandBar renders the command hints bar for the focused area.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.focus {
	case focusSector, focusIndustry:
		commands = []cmd{
			{"enter", "Pick"},
			{"tab", "Next"},
			{"ctrl+r", "Run"},
			{"ctrl+l", "Clear"},
			{"L", "Log"},
			{"?", "More"},
		}
	case focusMinCap, focusMaxCap, focusPageSize:
		commands = []cmd{
			{"enter", "Run"},
			{"tab", "Next"},
			{"esc", "Results"},
			{"ctrl+l", "Clear"},
		}
	default:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"enter", "Details"},
			{"s", "Name"},
			{"m", "Cap"},
			{"n/p", "Page"},
			{"tab", "Filters"},
			{"?", "More"},
		}
	}

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(bg.Join(segments, "  "))
}

// truncate truncates a string to max display columns with ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return strings.TrimRight(string(r[:max-3]), " ") + "..."
}

// truncateMiddle truncates a string in the middle, preserving start and end.
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 5 {
		return string(r[:max])
	}
	endLen := (max - 3) * 2 / 3
	startLen := max - 3 - endLen
	return string(r[:startLen]) + "..." + string(r[len(r)-endLen:])
}
