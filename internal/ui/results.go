package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/screener/internal/marketdata"
	"github.com/five82/screener/internal/screener"
)

// formHeight is the form box height including borders.
const formHeight = 5

// compactWidth hides the sector and industry columns below this width.
const compactWidth = 100

type column struct {
	title string
	width int // 0 = flexible
	right bool
	value func(marketdata.Company) string
}

// renderMain renders the screener: header, command bar, optional error
// banner, filter form, results and status line.
func (m Model) renderMain() string {
	parts := []string{m.renderHeader(), m.renderCommandBar()}
	if banner := m.renderBanner(); banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts,
		m.renderForm(m.width),
		m.renderResults(m.width, m.resultsBoxHeight()),
		m.renderStatusLine(),
	)
	return strings.Join(parts, "\n")
}

// resultsBoxHeight is what remains after the fixed rows.
func (m Model) resultsBoxHeight() int {
	fixed := 3 + formHeight // header, command bar, status line
	if m.renderBanner() != "" {
		fixed++
	}
	return max(m.height-fixed, 4)
}

// visibleRows is how many result rows fit in the results box.
func (m Model) visibleRows() int {
	return max(m.resultsBoxHeight()-3, 1) // borders and column header
}

func (m Model) columns(width int) []column {
	cols := []column{
		{title: "Symbol", width: 8, value: func(c marketdata.Company) string { return c.Symbol }},
		{title: "Name", value: func(c marketdata.Company) string { return c.DisplayName() }},
	}
	if width >= compactWidth {
		cols = append(cols,
			column{title: "Sector", width: 20, value: func(c marketdata.Company) string { return c.Sector }},
			column{title: "Industry", width: 26, value: func(c marketdata.Company) string { return c.Industry }},
		)
	}
	cols = append(cols,
		column{title: "Market Cap", width: 12, right: true, value: func(c marketdata.Company) string {
			return screener.FormatMarketCap(c.MarketCap)
		}},
		column{title: "Price", width: 11, right: true, value: func(c marketdata.Company) string {
			return screener.FormatPrice(c.Price)
		}},
	)

	fixed := 0
	for _, c := range cols {
		fixed += c.width + 1
	}
	for i := range cols {
		if cols[i].width == 0 {
			cols[i].width = max(width-fixed-1, 10)
		}
	}
	return cols
}

// sortIndicator marks the sorted column header.
func (m Model) sortIndicator(title string) string {
	var field screener.SortField
	switch title {
	case "Name":
		field = screener.SortName
	case "Market Cap":
		field = screener.SortMarketCap
	default:
		return title
	}
	if m.state.Sort.Field != field {
		return title
	}
	switch m.state.Sort.Order {
	case screener.OrderAscending:
		return title + " ▲"
	case screener.OrderDescending:
		return title + " ▼"
	}
	return title
}

func (m Model) renderResults(width, height int) string {
	focused := m.focus == focusResults
	bgColor := m.theme.SurfaceAlt
	if focused {
		bgColor = m.theme.FocusBg
	}
	content := m.renderResultsTable(width-2, bgColor)
	return m.renderTitledBox(m.resultsTitle(), content, width, height, focused)
}

func (m Model) resultsTitle() string {
	c := m.state.Criteria
	switch {
	case c.Industry != "":
		return "Results · " + c.Industry
	case c.Sector != "":
		return "Results · " + c.Sector
	default:
		return "Results"
	}
}

func (m Model) renderResultsTable(width int, bgColor string) string {
	styles := m.theme.Styles()
	bg := NewBgStyle(bgColor)
	rows := m.state.Visible()

	if len(rows) == 0 {
		var msg string
		switch {
		case m.state.Loading:
			msg = m.spinner.View() + " Running screen..."
		case m.state.Err != nil:
			msg = "Query failed. Adjust the filters and run again."
		case !m.state.Queried:
			msg = "Set filters and press enter to run the screen"
		default:
			msg = "No companies match these filters"
		}
		return bg.FillLine(bg.Render(msg, styles.MutedText), width)
	}

	cols := m.columns(width)
	headers := make([]string, 0, len(cols))
	for _, c := range cols {
		headers = append(headers, bg.Render(cell(m.sortIndicator(c.title), c.width, c.right), styles.AccentText.Bold(true)))
	}
	lines := []string{bg.FillLine(bg.Join(headers, " "), width)}

	limit := m.visibleRows()
	start := 0
	if m.selectedRow >= limit {
		start = m.selectedRow - limit + 1
	}
	end := min(start+limit, len(rows))

	focused := m.focus == focusResults
	for i := start; i < end; i++ {
		company := rows[i]
		selected := focused && i == m.selectedRow
		rowBg := bg
		if selected {
			rowBg = NewBgStyle(m.theme.SelectionBg)
		}
		cells := make([]string, 0, len(cols))
		for j, c := range cols {
			style := styles.Text
			switch {
			case selected:
				style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
			case j == 0:
				style = styles.AccentText
			case c.right:
				style = styles.InfoText
			}
			cells = append(cells, rowBg.Render(cell(c.value(company), c.width, c.right), style))
		}
		lines = append(lines, rowBg.FillLine(rowBg.Join(cells, " "), width))
	}
	return strings.Join(lines, "\n")
}

// cell pads or truncates s to exactly width columns.
func cell(s string, width int, right bool) string {
	s = truncate(s, width)
	pad := width - lipgloss.Width(s)
	if pad <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", pad) + s
	}
	return s + strings.Repeat(" ", pad)
}

// renderStatusLine summarises the page, sort and loading state.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	var parts []string
	if m.state.Queried {
		parts = append(parts, bg.Render(
			screener.PageLabel(m.state.Criteria, len(m.state.Results), m.state.Total), styles.Text))
		if m.state.HasMore {
			parts = append(parts, bg.Render("more →", styles.InfoText))
		} else {
			parts = append(parts, bg.Render("end", styles.FaintText))
		}
	}
	if !m.state.Sort.IsNone() {
		parts = append(parts, bg.Render("sorted by "+sortLabel(m.state.Sort), styles.MutedText))
	}
	if m.state.Loading {
		parts = append(parts, bg.Render(m.spinner.View()+" loading", styles.WarningText))
	}
	if len(parts) == 0 {
		parts = append(parts, bg.Render("No query yet", styles.FaintText))
	}
	sep := bg.Space() + bg.Render("•", styles.FaintText) + bg.Space()
	return bg.FillLine(bg.Space()+strings.Join(parts, sep), m.width)
}

func sortLabel(s screener.SortState) string {
	field := "name"
	if s.Field == screener.SortMarketCap {
		field = "market cap"
	}
	if s.Order == screener.OrderDescending {
		return field + " (desc)"
	}
	return field + " (asc)"
}

// handleResultsKey handles navigation, sorting, paging and opening details.
func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.state.Visible()
	half := max(m.visibleRows()/2, 1)

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < len(rows)-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = max(len(rows)-1, 0)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selectedRow = max(m.selectedRow-half, 0)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selectedRow = max(min(m.selectedRow+half, len(rows)-1), 0)

	case key.Matches(msg, m.keys.SortName):
		m.state = m.state.ToggleSort(screener.SortName)
		m.selectedRow = 0
	case key.Matches(msg, m.keys.SortCap):
		m.state = m.state.ToggleSort(screener.SortMarketCap)
		m.selectedRow = 0

	case key.Matches(msg, m.keys.NextPage):
		var req *screener.QueryRequest
		m.state, req = m.state.NextPage()
		if req != nil {
			return m, m.queryCmd(*req)
		}
	case key.Matches(msg, m.keys.PrevPage):
		var req *screener.QueryRequest
		m.state, req = m.state.PrevPage()
		if req != nil {
			return m, m.queryCmd(*req)
		}

	case key.Matches(msg, m.keys.Confirm):
		if m.selectedRow >= len(rows) {
			return m, nil
		}
		var req *screener.ProfileRequest
		m.state, req = m.state.OpenDetail(rows[m.selectedRow].Symbol)
		if req == nil {
			return m, nil
		}
		m.overlay = overlayDetail
		m.detailViewport.GotoTop()
		m.syncDetail()
		return m, m.profileCmd(*req)

	case key.Matches(msg, m.keys.Escape):
		return m, m.setFocus(focusSector)
	}
	return m, nil
}

func (m *Model) clampSelection() {
	n := len(m.state.Results)
	if m.selectedRow >= n {
		m.selectedRow = max(n-1, 0)
	}
}

// renderTitledBox renders content in a box with the title embedded in the top border.
// When focused is true, uses BorderFocus color and FocusBg background.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColorStr))
	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	lines := make([]string, 0, boxHeight)
	for i := range boxHeight {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines,
			bg.Render("│", borderStyle)+contentStyle.Render(line)+bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(lines, "\n") + "\n" + bottomBorder
}
