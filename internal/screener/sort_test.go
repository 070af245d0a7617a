package screener

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/five82/screener/internal/marketdata"
)

func symbols(items []marketdata.Company) []string {
	out := make([]string, len(items))
	for i, c := range items {
		out[i] = c.Symbol
	}
	return out
}

func sampleResults() []marketdata.Company {
	return []marketdata.Company{
		{Symbol: "ZZZ", Name: "zeta corp", MarketCap: 5e9},
		{Symbol: "AAA", Name: "Alpha Inc", MarketCap: 2e12},
		{Symbol: "BBB", Name: "beta LLC", MarketCap: 7e6},
		{Symbol: "ÉCL", Name: "Éclair SA", MarketCap: 5e9},
		{Symbol: "ALP", Name: "alpha inc", MarketCap: 1e3},
	}
}

func TestSortStateToggleCycle(t *testing.T) {
	var s SortState
	s = s.Toggle(SortName)
	if s != (SortState{Field: SortName, Order: OrderAscending}) {
		t.Fatalf("first toggle = %+v, want name asc", s)
	}
	s = s.Toggle(SortName)
	if s != (SortState{Field: SortName, Order: OrderDescending}) {
		t.Fatalf("second toggle = %+v, want name desc", s)
	}
	s = s.Toggle(SortName)
	if s != (SortState{}) {
		t.Fatalf("third toggle = %+v, want none", s)
	}
}

func TestSortStateToggleOtherFieldStartsAscending(t *testing.T) {
	s := SortState{Field: SortName, Order: OrderDescending}
	s = s.Toggle(SortMarketCap)
	if s != (SortState{Field: SortMarketCap, Order: OrderAscending}) {
		t.Fatalf("toggle other field = %+v, want marketCap asc", s)
	}
	if got := s.Toggle(SortNone); got != (SortState{}) {
		t.Fatalf("toggle none = %+v, want none", got)
	}
}

func TestSortNoneKeepsServerOrder(t *testing.T) {
	in := sampleResults()
	got := Sort(in, SortState{})
	if diff := cmp.Diff(symbols(in), symbols(got)); diff != "" {
		t.Fatalf("Sort none mismatch (-want +got):\n%s", diff)
	}
	if len(got) > 0 && &got[0] == &in[0] {
		t.Fatalf("Sort should return a new slice")
	}
}

func TestSortByMarketCap(t *testing.T) {
	in := sampleResults()

	asc := Sort(in, SortState{Field: SortMarketCap, Order: OrderAscending})
	// ZZZ and ÉCL tie at 5e9 and keep server order.
	if diff := cmp.Diff([]string{"ALP", "BBB", "ZZZ", "ÉCL", "AAA"}, symbols(asc)); diff != "" {
		t.Fatalf("asc mismatch (-want +got):\n%s", diff)
	}

	desc := Sort(in, SortState{Field: SortMarketCap, Order: OrderDescending})
	if diff := cmp.Diff([]string{"AAA", "ZZZ", "ÉCL", "BBB", "ALP"}, symbols(desc)); diff != "" {
		t.Fatalf("desc mismatch (-want +got):\n%s", diff)
	}
}

func TestSortByNameIsCaseInsensitiveAndCollated(t *testing.T) {
	in := sampleResults()
	col := collate.New(language.English, collate.IgnoreCase)

	asc := Sort(in, SortState{Field: SortName, Order: OrderAscending})
	for i := 1; i < len(asc); i++ {
		if col.CompareString(asc[i-1].Name, asc[i].Name) > 0 {
			t.Fatalf("asc out of order at %d: %q before %q", i, asc[i-1].Name, asc[i].Name)
		}
	}
	// "Éclair" collates with the e's, not after "zeta".
	if asc[len(asc)-1].Symbol != "ZZZ" {
		t.Fatalf("asc last = %s, want ZZZ", asc[len(asc)-1].Symbol)
	}
	// Case-only differences tie and keep server order.
	if asc[0].Symbol != "AAA" || asc[1].Symbol != "ALP" {
		t.Fatalf("asc head = %v, want AAA then ALP", symbols(asc[:2]))
	}

	desc := Sort(in, SortState{Field: SortName, Order: OrderDescending})
	for i := 1; i < len(desc); i++ {
		if col.CompareString(desc[i-1].Name, desc[i].Name) < 0 {
			t.Fatalf("desc out of order at %d: %q before %q", i, desc[i-1].Name, desc[i].Name)
		}
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	in := sampleResults()
	before := symbols(in)
	_ = Sort(in, SortState{Field: SortName, Order: OrderDescending})
	if diff := cmp.Diff(before, symbols(in)); diff != "" {
		t.Fatalf("input mutated (-before +after):\n%s", diff)
	}
}

func TestSortNameFallsBackToSymbol(t *testing.T) {
	in := []marketdata.Company{{Symbol: "ZED"}, {Symbol: "abc", Name: " "}}
	got := Sort(in, SortState{Field: SortName, Order: OrderAscending})
	if strings.Join(symbols(got), ",") != "abc,ZED" {
		t.Fatalf("Sort = %v, want abc,ZED", symbols(got))
	}
}
