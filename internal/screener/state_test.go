package screener

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/five82/screener/internal/marketdata"
)

func submitted(t *testing.T, s State) (State, QueryRequest) {
	t.Helper()
	s, req := s.Submit()
	if req == nil {
		t.Fatalf("Submit returned nil request (invalid: %v)", s.Invalid)
	}
	if !s.Loading {
		t.Fatalf("Submit should set Loading")
	}
	return s, *req
}

func TestSubmit_RejectsMinAboveMaxWithoutRequest(t *testing.T) {
	s := New(50).SetMinCap(capPtr(10)).SetMaxCap(capPtr(5))
	s.Loading = true

	next, req := s.Submit()
	if req != nil {
		t.Fatalf("Submit returned request %+v, want nil", req)
	}
	if next.Invalid == nil || next.Invalid.Field != FieldMinCap {
		t.Fatalf("Invalid = %+v, want min cap error", next.Invalid)
	}
	if next.Loading {
		t.Fatalf("Loading should be cleared on validation failure")
	}
	if next.Seq() != s.Seq() {
		t.Fatalf("Seq advanced on rejected submit")
	}
}

func TestSubmit_ClampsPageSize(t *testing.T) {
	for _, size := range []int{-5, 0, 201, 5000} {
		s := New(50)
		s.Criteria.PageSize = size
		_, req := submitted(t, s)
		if req.Criteria.PageSize < MinPageSize || req.Criteria.PageSize > MaxPageSize {
			t.Fatalf("page size %d submitted as %d, want clamped", size, req.Criteria.PageSize)
		}
	}
	if got := New(50).SetPageSize(1000).Criteria.PageSize; got != MaxPageSize {
		t.Fatalf("SetPageSize(1000) = %d, want %d", got, MaxPageSize)
	}
}

func TestResultsArrived_ReplacesResultsAndResetsSort(t *testing.T) {
	s, req := submitted(t, New(2))
	s = s.ResultsArrived(req.Seq, marketdata.ScreenerPage{Results: sampleResults()[:2]})
	s = s.ToggleSort(SortMarketCap).ToggleSort(SortMarketCap)
	if s.Sort.Order != OrderDescending {
		t.Fatalf("sort = %+v, want desc", s.Sort)
	}

	s, req = submitted(t, s)
	s = s.ResultsArrived(req.Seq, marketdata.ScreenerPage{Results: sampleResults()[2:4]})
	if s.Sort != (SortState{}) {
		t.Fatalf("sort after new results = %+v, want none", s.Sort)
	}
	if diff := cmp.Diff([]string{"BBB", "ÉCL"}, symbols(s.Visible())); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
	if s.Loading || s.Err != nil || !s.Queried {
		t.Fatalf("state after results = loading %v err %v queried %v", s.Loading, s.Err, s.Queried)
	}
	if !s.HasMore {
		t.Fatalf("full page of 2 should report more")
	}
}

func TestResultsArrived_IgnoresStaleResponses(t *testing.T) {
	s, first := submitted(t, New(50))
	s, second := submitted(t, s)

	// Second response lands first, then the slow first one.
	s = s.ResultsArrived(second.Seq, marketdata.ScreenerPage{Results: []marketdata.Company{{Symbol: "NEW"}}})
	s = s.ResultsArrived(first.Seq, marketdata.ScreenerPage{Results: []marketdata.Company{{Symbol: "OLD"}}})
	s = s.QueryFailed(first.Seq, errors.New("late failure"))

	if diff := cmp.Diff([]string{"NEW"}, symbols(s.Results)); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
	if s.Err != nil {
		t.Fatalf("stale failure applied: %v", s.Err)
	}
}

func TestQueryFailed_ClearsResultsAndLoading(t *testing.T) {
	s, req := submitted(t, New(50))
	s = s.ResultsArrived(req.Seq, marketdata.ScreenerPage{Results: sampleResults()})
	s, req = submitted(t, s)

	boom := &marketdata.ServiceError{Path: "/api/screener", StatusCode: 502}
	s = s.QueryFailed(req.Seq, boom)
	if len(s.Results) != 0 {
		t.Fatalf("results = %d, want cleared", len(s.Results))
	}
	if s.Loading {
		t.Fatalf("Loading should be cleared on failure")
	}
	if !errors.Is(s.Err, boom) {
		t.Fatalf("Err = %v, want %v", s.Err, boom)
	}

	s = s.DismissError()
	if s.Err != nil {
		t.Fatalf("DismissError left %v", s.Err)
	}
	if _, req := s.Submit(); req == nil {
		t.Fatalf("state should be re-submittable after failure")
	}
}

func TestSelectSector_AlwaysResetsIndustry(t *testing.T) {
	s := New(50)
	s, req := s.SelectSector("Technology")
	if req == nil || req.Sector != "Technology" {
		t.Fatalf("SelectSector request = %+v, want Technology", req)
	}
	s = s.IndustriesLoaded(req.Gen, []string{"Software", "Conglomerates"}, nil)
	s = s.SelectIndustry("Conglomerates")

	// Industrials also offers "Conglomerates"; the selection still resets.
	s, req = s.SelectSector("Industrials")
	if s.Criteria.Industry != "" {
		t.Fatalf("industry = %q, want unset", s.Criteria.Industry)
	}
	if !s.IndustriesLoading || len(s.Industries) != 0 {
		t.Fatalf("industries should be reloading: loading %v list %v", s.IndustriesLoading, s.Industries)
	}
	if req == nil || req.Sector != "Industrials" || !s.IndustriesPending(*req) {
		t.Fatalf("request = %+v, want pending Industrials fetch", req)
	}
	if s.Loading {
		t.Fatalf("metadata loading must not touch result loading")
	}

	if _, again := s.SelectSector("Industrials"); again != nil {
		t.Fatalf("re-selecting the same sector should not refetch")
	}
}

func TestIndustriesLoaded_DropsSupersededSector(t *testing.T) {
	s := New(50)
	s, tech := s.SelectSector("Technology")
	s, energy := s.SelectSector("Energy")

	if s.IndustriesPending(*tech) {
		t.Fatalf("superseded request should not be pending")
	}
	s = s.IndustriesLoaded(tech.Gen, []string{"Software"}, nil)
	if len(s.Industries) != 0 || !s.IndustriesLoading {
		t.Fatalf("stale industries applied: %v", s.Industries)
	}
	s = s.IndustriesLoaded(energy.Gen, []string{"Oil & Gas"}, nil)
	if diff := cmp.Diff([]string{"Oil & Gas"}, s.Industries); diff != "" {
		t.Fatalf("industries mismatch (-want +got):\n%s", diff)
	}

	s, again := s.RequestIndustries()
	s = s.IndustriesLoaded(again.Gen, nil, errors.New("down"))
	if s.MetadataErr == nil || s.IndustriesLoading || s.Industries != nil {
		t.Fatalf("failed industries: err %v loading %v list %v", s.MetadataErr, s.IndustriesLoading, s.Industries)
	}
}

func TestSectorsLoaded(t *testing.T) {
	s, req := New(50).RequestSectors()
	if !s.SectorsLoading {
		t.Fatalf("SectorsLoading = false after request")
	}
	s = s.SectorsLoaded(req.Gen+1, []string{"ignored"}, nil)
	if len(s.Sectors) != 0 {
		t.Fatalf("stale sectors applied")
	}
	s = s.SectorsLoaded(req.Gen, []string{"Energy"}, nil)
	if s.SectorsLoading || len(s.Sectors) != 1 {
		t.Fatalf("sectors = %v loading %v", s.Sectors, s.SectorsLoading)
	}
}

func TestPaging(t *testing.T) {
	s, req := submitted(t, New(2))
	if _, prev := s.PrevPage(); prev != nil {
		t.Fatalf("PrevPage at page 0 should not request")
	}
	if _, next := s.NextPage(); next != nil {
		t.Fatalf("NextPage while loading should not request")
	}
	s = s.ResultsArrived(req.Seq, marketdata.ScreenerPage{Results: rows(2)})

	s, next := s.NextPage()
	if next == nil || next.Criteria.Page != 1 {
		t.Fatalf("NextPage = %+v, want page 1", next)
	}
	s = s.ResultsArrived(next.Seq, marketdata.ScreenerPage{Results: rows(1)})
	if s.HasMore {
		t.Fatalf("short page should end paging")
	}
	if _, none := s.NextPage(); none != nil {
		t.Fatalf("NextPage without more should not request")
	}

	s, prev := s.PrevPage()
	if prev == nil || prev.Criteria.Page != 0 {
		t.Fatalf("PrevPage = %+v, want page 0", prev)
	}
}

func TestFilterEditsResetPage(t *testing.T) {
	s := New(10)
	s.Criteria.Page = 4
	if got := s.SetMinCap(capPtr(1)).Criteria.Page; got != 0 {
		t.Fatalf("SetMinCap kept page %d", got)
	}
	if got := s.SelectIndustry("Software").Criteria.Page; got != 0 {
		t.Fatalf("SelectIndustry kept page %d", got)
	}
}

func TestClear_InvalidatesInFlightQuery(t *testing.T) {
	s := New(25)
	s, _ = s.SelectSector("Energy")
	s = s.SetMinCap(capPtr(100))
	s, req := submitted(t, s)

	s, industries := s.Clear()
	if industries == nil || industries.Sector != "" {
		t.Fatalf("Clear should rescope industries to all sectors, got %+v", industries)
	}
	if s.Loading {
		t.Fatalf("Clear should drop the loading flag")
	}
	if s.Criteria.Sector != "" || s.Criteria.MinCap != nil || s.Criteria.PageSize != 25 {
		t.Fatalf("criteria after clear = %+v", s.Criteria)
	}

	s = s.ResultsArrived(req.Seq, marketdata.ScreenerPage{Results: rows(3)})
	if len(s.Results) != 0 {
		t.Fatalf("response from before Clear applied")
	}

	if _, none := New(25).Clear(); none != nil {
		t.Fatalf("Clear without sector should not refetch industries")
	}
}

func TestDetail_ProfileFailureDegradesQuietly(t *testing.T) {
	s, req := submitted(t, New(50))
	price := 12.5
	s = s.ResultsArrived(req.Seq, marketdata.ScreenerPage{Results: []marketdata.Company{
		{Symbol: "ACME", Name: "Acme", Sector: "Industrials", Industry: "Tools", MarketCap: 3e9, Price: &price},
	}})

	s, preq := s.OpenDetail("ACME")
	if preq == nil || s.Detail == nil {
		t.Fatalf("OpenDetail did not open the dialog")
	}
	if !s.Detail.Loading || s.Detail.Company.Name != "Acme" {
		t.Fatalf("dialog should open immediately with summary fields: %+v", s.Detail)
	}
	if s.Detail.Description() != "" {
		t.Fatalf("description while loading = %q, want empty", s.Detail.Description())
	}

	s = s.ProfileFailed(*preq)
	if s.Detail == nil {
		t.Fatalf("dialog closed on profile failure")
	}
	if s.Err != nil {
		t.Fatalf("profile failure surfaced as banner: %v", s.Err)
	}
	d := s.Detail
	if d.Company.Symbol != "ACME" || d.Company.Sector != "Industrials" || d.Company.Industry != "Tools" || d.Company.MarketCap != 3e9 {
		t.Fatalf("summary fields lost: %+v", d.Company)
	}
	if d.Description() != NoDescription {
		t.Fatalf("Description = %q, want %q", d.Description(), NoDescription)
	}
}

func TestDetail_IgnoresResponsesForOtherDialogs(t *testing.T) {
	s, req := submitted(t, New(50))
	s = s.ResultsArrived(req.Seq, marketdata.ScreenerPage{Results: []marketdata.Company{{Symbol: "A"}, {Symbol: "B"}}})

	s, first := s.OpenDetail("A")
	s, second := s.OpenDetail("B")
	s = s.ProfileLoaded(*first, marketdata.Profile{Description: "about A"})
	if s.Detail.Profile != nil {
		t.Fatalf("profile for A applied to B's dialog")
	}
	s = s.ProfileLoaded(*second, marketdata.Profile{Description: "about B"})
	if got := s.Detail.Description(); got != "about B" {
		t.Fatalf("Description = %q, want about B", got)
	}

	s = s.CloseDetail()
	if s.ProfileFailed(*second).Detail != nil {
		t.Fatalf("closed dialog reopened by late response")
	}
	if _, none := s.OpenDetail("MISSING"); none != nil {
		t.Fatalf("OpenDetail for unknown symbol should not request")
	}
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	s, req := submitted(t, New(50))
	s = s.ResultsArrived(req.Seq, marketdata.ScreenerPage{Results: sampleResults()})
	before := symbols(s.Results)

	_ = s.ToggleSort(SortName)
	_, _ = s.Clear()
	_ = s.QueryFailed(s.Seq(), errors.New("x"))

	if diff := cmp.Diff(before, symbols(s.Results)); diff != "" {
		t.Fatalf("receiver mutated (-before +after):\n%s", diff)
	}
	if s.Sort != (SortState{}) {
		t.Fatalf("receiver sort mutated: %+v", s.Sort)
	}
}
