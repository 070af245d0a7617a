package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// renderForm renders the filter box: sector and industry pickers on the
// first line, market cap bounds and page size on the second, and the
// validation message or a hint on the third.
func (m Model) renderForm(width int) string {
	focused := m.focus != focusResults
	bgColor := m.theme.SurfaceAlt
	if focused {
		bgColor = m.theme.FocusBg
	}
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)
	sep := bg.Spaces(3)

	sector := m.fieldValue(m.state.Criteria.Sector, m.state.SectorsLoading, len(m.state.Sectors))
	industry := m.fieldValue(m.state.Criteria.Industry, m.state.IndustriesLoading, len(m.state.Industries))

	line1 := bg.Space() +
		m.formLabel(focusSector, "Sector", styles, bg) + bg.Render(sector, styles.Text) + sep +
		m.formLabel(focusIndustry, "Industry", styles, bg) + bg.Render(industry, styles.Text)

	line2 := bg.Space() +
		m.formLabel(focusMinCap, "Min cap", styles, bg) + m.inputs[inputMinCap].View() + sep +
		m.formLabel(focusMaxCap, "Max cap", styles, bg) + m.inputs[inputMaxCap].View() + sep +
		m.formLabel(focusPageSize, "Page size", styles, bg) + m.inputs[inputPageSize].View()

	var line3 string
	if inv := m.state.Invalid; inv != nil {
		line3 = bg.Space() + bg.Render("! "+inv.Message, styles.DangerText)
	} else {
		line3 = bg.Space() + bg.Render(m.formHint(), styles.FaintText)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		bg.FillLine(line1, width-2),
		bg.FillLine(line2, width-2),
		bg.FillLine(line3, width-2),
	)
	return m.renderTitledBox("Filters", content, width, formHeight, focused)
}

// fieldValue describes a picker's current choice.
func (m Model) fieldValue(value string, loading bool, options int) string {
	if value == "" {
		value = anyOption
	}
	switch {
	case loading:
		return value + " " + m.spinner.View()
	case options == 0:
		return value + " (none loaded)"
	}
	return value
}

// formLabel renders a field label, marking the focused one.
func (m Model) formLabel(field focusArea, label string, styles Styles, bg BgStyle) string {
	if m.focus == field {
		return bg.Render("› "+label+":", styles.AccentText.Bold(true)) + bg.Space()
	}
	return bg.Render("  "+label+":", styles.MutedText) + bg.Space()
}

func (m Model) formHint() string {
	switch m.focus {
	case focusSector, focusIndustry:
		return "enter opens the list · caps accept 500M, 2B, 1.5T"
	case focusMinCap, focusMaxCap, focusPageSize:
		return "enter runs the screen · ctrl+l clears all filters"
	default:
		return "tab returns to the filters"
	}
}
