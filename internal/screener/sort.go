package screener

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/five82/screener/internal/marketdata"
)

// SortField is a sortable result column.
type SortField int

const (
	SortNone SortField = iota
	SortName
	SortMarketCap
)

func (f SortField) String() string {
	switch f {
	case SortName:
		return "name"
	case SortMarketCap:
		return "marketCap"
	default:
		return "none"
	}
}

// SortOrder is the direction of a sort.
type SortOrder int

const (
	OrderNone SortOrder = iota
	OrderAscending
	OrderDescending
)

func (o SortOrder) String() string {
	switch o {
	case OrderAscending:
		return "ascending"
	case OrderDescending:
		return "descending"
	default:
		return "none"
	}
}

// SortState is the transient client-side sort. The zero value means server
// order. Valid states are (none,none), (field,asc) and (field,desc).
type SortState struct {
	Field SortField
	Order SortOrder
}

// IsNone reports whether results are shown in server order.
func (s SortState) IsNone() bool {
	return s.Field == SortNone || s.Order == OrderNone
}

// Toggle advances the tri-state cycle for field: none → asc → desc → none.
// Toggling a different field starts that field at ascending.
func (s SortState) Toggle(field SortField) SortState {
	if field == SortNone {
		return SortState{}
	}
	if s.Field != field || s.IsNone() {
		return SortState{Field: field, Order: OrderAscending}
	}
	if s.Order == OrderAscending {
		return SortState{Field: field, Order: OrderDescending}
	}
	return SortState{}
}

// Sort returns results ordered by state without touching the input slice.
// Ties keep their server order. An unset state returns server order.
func Sort(results []marketdata.Company, state SortState) []marketdata.Company {
	out := slices.Clone(results)
	if state.IsNone() || len(out) < 2 {
		return out
	}

	var compare func(a, b marketdata.Company) int
	switch state.Field {
	case SortName:
		// Collators keep scratch buffers, so each call gets its own.
		col := collate.New(language.English, collate.IgnoreCase)
		compare = func(a, b marketdata.Company) int {
			return col.CompareString(a.DisplayName(), b.DisplayName())
		}
	case SortMarketCap:
		compare = func(a, b marketdata.Company) int {
			return cmp.Compare(a.MarketCap, b.MarketCap)
		}
	default:
		return out
	}

	if state.Order == OrderDescending {
		asc := compare
		compare = func(a, b marketdata.Company) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out
}
