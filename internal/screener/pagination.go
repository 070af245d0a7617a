package screener

import (
	"fmt"

	"github.com/five82/screener/internal/marketdata"
)

// HasMore reports whether another page likely follows the one just returned.
//
// An authoritative total from the service wins, then an explicit hasMore flag.
// Without either the answer is a heuristic: a full page implies more rows.
// That heuristic is wrong when the final page happens to be exactly full; the
// next request then comes back empty.
func HasMore(page marketdata.ScreenerPage, criteria FilterCriteria) bool {
	c := criteria.Normalized()
	if page.Total != nil {
		return (c.Page+1)*c.PageSize < *page.Total
	}
	if page.HasMore != nil {
		return *page.HasMore
	}
	return len(page.Results) == c.PageSize
}

// RowRange returns the 1-based row numbers covered by a page of returned rows.
// Both are zero when the page is empty.
func RowRange(criteria FilterCriteria, returned int) (first, last int) {
	if returned <= 0 {
		return 0, 0
	}
	c := criteria.Normalized()
	first = c.Page*c.PageSize + 1
	return first, first + returned - 1
}

// PageLabel summarises the current page for a status line.
func PageLabel(criteria FilterCriteria, returned int, total *int) string {
	c := criteria.Normalized()
	first, last := RowRange(c, returned)
	switch {
	case returned == 0:
		return fmt.Sprintf("Page %d · no rows", c.Page+1)
	case total != nil:
		return fmt.Sprintf("Page %d · %d–%d of %d", c.Page+1, first, last, *total)
	default:
		return fmt.Sprintf("Page %d · %d–%d", c.Page+1, first, last)
	}
}
