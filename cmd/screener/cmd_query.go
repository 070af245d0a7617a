package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/five82/screener/internal/marketdata"
	"github.com/five82/screener/internal/screener"
)

type queryFlags struct {
	sector   string
	industry string
	minCap   string
	maxCap   string
	page     int
	pageSize string
	sort     string
	json     bool
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run one screen and print the page",
		Example: `  screener query --sector Technology --min-cap 10B --sort -cap
  screener query --industry Software --page 2 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newCLIEnv(opts)
			if err != nil {
				return err
			}
			defer env.close()

			criteria, sortState, err := f.criteria(env.cfg.PageSize)
			if err != nil {
				return err
			}
			page, err := env.client.FetchScreener(cmd.Context(), criteria.Query())
			if err != nil {
				return fmt.Errorf("%s: %w", marketdata.Describe(err), err)
			}
			page.Results = screener.Sort(page.Results, sortState)

			if f.json {
				return writeQueryJSON(cmd.OutOrStdout(), criteria, page)
			}
			return writeQueryTable(cmd.OutOrStdout(), criteria, page)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.sector, "sector", "", "sector filter")
	fl.StringVar(&f.industry, "industry", "", "industry filter")
	fl.StringVar(&f.minCap, "min-cap", "", "minimum market cap (e.g. 500M, 2B)")
	fl.StringVar(&f.maxCap, "max-cap", "", "maximum market cap")
	fl.IntVar(&f.page, "page", 1, "page number, starting at 1")
	fl.StringVar(&f.pageSize, "page-size", "", "rows per page (default from config)")
	fl.StringVar(&f.sort, "sort", "", "sort the page: name, -name, cap, -cap")
	fl.BoolVar(&f.json, "json", false, "print JSON instead of a table")
	return cmd
}

// criteria validates the flags the same way the TUI validates its form.
func (f *queryFlags) criteria(defaultPageSize int) (screener.FilterCriteria, screener.SortState, error) {
	minCap, err := screener.ParseCap(screener.FieldMinCap, f.minCap)
	if err != nil {
		return screener.FilterCriteria{}, screener.SortState{}, err
	}
	maxCap, err := screener.ParseCap(screener.FieldMaxCap, f.maxCap)
	if err != nil {
		return screener.FilterCriteria{}, screener.SortState{}, err
	}
	pageSize, err := screener.ParsePageSize(f.pageSize, defaultPageSize)
	if err != nil {
		return screener.FilterCriteria{}, screener.SortState{}, err
	}
	if f.page < 1 {
		return screener.FilterCriteria{}, screener.SortState{}, fmt.Errorf("page must be 1 or more, got %d", f.page)
	}
	sortState, err := parseSort(f.sort)
	if err != nil {
		return screener.FilterCriteria{}, screener.SortState{}, err
	}

	c := screener.FilterCriteria{
		Sector:   f.sector,
		Industry: f.industry,
		MinCap:   minCap,
		MaxCap:   maxCap,
		Page:     f.page - 1,
		PageSize: pageSize,
	}.Normalized()
	if err := c.Validate(); err != nil {
		return screener.FilterCriteria{}, screener.SortState{}, err
	}
	return c, sortState, nil
}

func parseSort(s string) (screener.SortState, error) {
	order := screener.OrderAscending
	s = strings.ToLower(strings.TrimSpace(s))
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		order = screener.OrderDescending
		s = rest
	}
	switch s {
	case "":
		return screener.SortState{}, nil
	case "name":
		return screener.SortState{Field: screener.SortName, Order: order}, nil
	case "cap", "marketcap", "market-cap":
		return screener.SortState{Field: screener.SortMarketCap, Order: order}, nil
	default:
		return screener.SortState{}, fmt.Errorf("unknown sort %q (want name, -name, cap or -cap)", s)
	}
}

type queryOutput struct {
	Page     int                  `json:"page"`
	PageSize int                  `json:"pageSize"`
	Total    *int                 `json:"total,omitempty"`
	HasMore  bool                 `json:"hasMore"`
	Results  []marketdata.Company `json:"results"`
}

func writeQueryJSON(w io.Writer, c screener.FilterCriteria, page marketdata.ScreenerPage) error {
	out := queryOutput{
		Page:     c.Page + 1,
		PageSize: c.PageSize,
		Total:    page.Total,
		HasMore:  screener.HasMore(page, c),
		Results:  page.Results,
	}
	if out.Results == nil {
		out.Results = []marketdata.Company{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeQueryTable(w io.Writer, c screener.FilterCriteria, page marketdata.ScreenerPage) error {
	if len(page.Results) == 0 {
		_, err := fmt.Fprintln(w, "No companies match these filters")
		return err
	}

	rows := make([][]string, 0, len(page.Results))
	for _, co := range page.Results {
		rows = append(rows, []string{
			co.Symbol,
			co.DisplayName(),
			co.Sector,
			co.Industry,
			screener.FormatMarketCap(co.MarketCap),
			screener.FormatPrice(co.Price),
		})
	}

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Symbol", "Name", "Sector", "Industry", "Market Cap", "Price").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := cellStyle
			if row == table.HeaderRow {
				style = style.Bold(true)
			}
			if col >= 4 {
				style = style.Align(lipgloss.Right)
			}
			return style
		})

	footer := screener.PageLabel(c, len(page.Results), page.Total)
	if screener.HasMore(page, c) {
		footer += fmt.Sprintf(" · next: --page %d", c.Page+2)
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n", t.Render(), footer)
	return err
}
