package screener

import (
	"slices"
	"strings"

	"github.com/five82/screener/internal/marketdata"
)

// QueryRequest asks the caller to run a screener query. Seq identifies the
// request; only its response is applied.
type QueryRequest struct {
	Seq      uint64
	Criteria FilterCriteria
}

// SectorsRequest asks the caller to fetch the sector list.
type SectorsRequest struct {
	Gen uint64
}

// IndustriesRequest asks the caller to fetch industries for Sector ("" = all).
type IndustriesRequest struct {
	Gen    uint64
	Sector string
}

// ProfileRequest asks the caller to fetch the extended profile for Symbol.
type ProfileRequest struct {
	Gen    uint64
	Symbol string
}

// Detail is the open company dialog. Summary fields come from the loaded
// result row; Profile arrives later and may never arrive.
type Detail struct {
	Company     marketdata.Company
	Profile     *marketdata.Profile
	Loading     bool
	Unavailable bool

	gen uint64
}

// NoDescription is shown when no long-form description could be loaded.
const NoDescription = "No description available"

// Description returns the best description available for the dialog. It is
// empty while the profile is still loading and nothing else is known.
func (d Detail) Description() string {
	if d.Profile != nil {
		if desc := strings.TrimSpace(d.Profile.Description); desc != "" {
			return desc
		}
	}
	if desc := strings.TrimSpace(d.Company.Description); desc != "" {
		return desc
	}
	if d.Loading {
		return ""
	}
	return NoDescription
}

// State is the whole screener view state. Transitions are value methods that
// return the next state; the receiver is never modified, and slices held by a
// state are replaced rather than edited in place.
type State struct {
	Criteria        FilterCriteria
	DefaultPageSize int

	Sectors           []string
	Industries        []string
	SectorsLoading    bool
	IndustriesLoading bool
	MetadataErr       error

	Results []marketdata.Company
	Sort    SortState
	Loading bool
	HasMore bool
	Total   *int
	Err     error
	Invalid *ValidationError
	Queried bool

	Detail *Detail

	seq           uint64
	sectorsGen    uint64
	industriesGen uint64
	detailGen     uint64
}

// New returns an empty state whose page size defaults to pageSize.
func New(pageSize int) State {
	c := DefaultCriteria(pageSize)
	return State{Criteria: c, DefaultPageSize: c.PageSize}
}

// Seq returns the latest issued query sequence.
func (s State) Seq() uint64 { return s.seq }

// --- metadata ---

// RequestSectors marks sectors as loading and returns the fetch to run.
func (s State) RequestSectors() (State, SectorsRequest) {
	s.sectorsGen++
	s.SectorsLoading = true
	return s, SectorsRequest{Gen: s.sectorsGen}
}

// SectorsLoaded applies a sector list (or its failure) for gen.
func (s State) SectorsLoaded(gen uint64, sectors []string, err error) State {
	if gen != s.sectorsGen {
		return s
	}
	s.SectorsLoading = false
	if err != nil {
		s.MetadataErr = err
		return s
	}
	s.MetadataErr = nil
	s.Sectors = slices.Clone(sectors)
	return s
}

// RequestIndustries marks industries as loading for the current sector and
// returns the fetch to run.
func (s State) RequestIndustries() (State, IndustriesRequest) {
	s.industriesGen++
	s.IndustriesLoading = true
	return s, IndustriesRequest{Gen: s.industriesGen, Sector: s.Criteria.Sector}
}

// IndustriesPending reports whether req is still the industry fetch the
// state is waiting for. Debounced callers check this before fetching.
func (s State) IndustriesPending(req IndustriesRequest) bool {
	return s.IndustriesLoading && req.Gen == s.industriesGen
}

// IndustriesLoaded applies an industry list (or its failure) for gen.
// Responses for a superseded sector are dropped.
func (s State) IndustriesLoaded(gen uint64, industries []string, err error) State {
	if gen != s.industriesGen {
		return s
	}
	s.IndustriesLoading = false
	if err != nil {
		s.MetadataErr = err
		s.Industries = nil
		return s
	}
	s.MetadataErr = nil
	s.Industries = slices.Clone(industries)
	return s
}

// SelectSector changes the sector. The industry always resets to unset and
// the industry list is refetched for the new sector, even when the new sector
// offers an industry with the same name. Re-selecting the current sector is a
// no-op and returns a nil request.
func (s State) SelectSector(sector string) (State, *IndustriesRequest) {
	sector = strings.TrimSpace(sector)
	if sector == s.Criteria.Sector {
		return s, nil
	}
	s.Criteria.Sector = sector
	s.Criteria.Industry = ""
	s.Criteria.Page = 0
	s.Industries = nil
	s.Invalid = nil
	s, req := s.RequestIndustries()
	return s, &req
}

// SelectIndustry sets the industry ("" = any).
func (s State) SelectIndustry(industry string) State {
	s.Criteria.Industry = strings.TrimSpace(industry)
	s.Criteria.Page = 0
	s.Invalid = nil
	return s
}

// --- filter inputs ---

// SetMinCap sets the minimum market cap (nil = unset).
func (s State) SetMinCap(v *int64) State {
	s.Criteria.MinCap = cloneCap(v)
	s.Criteria.Page = 0
	s.Invalid = nil
	return s
}

// SetMaxCap sets the maximum market cap (nil = unset).
func (s State) SetMaxCap(v *int64) State {
	s.Criteria.MaxCap = cloneCap(v)
	s.Criteria.Page = 0
	s.Invalid = nil
	return s
}

// SetPageSize sets the page size, clamped to [MinPageSize, MaxPageSize].
func (s State) SetPageSize(n int) State {
	s.Criteria.PageSize = ClampPageSize(n)
	s.Criteria.Page = 0
	s.Invalid = nil
	return s
}

// Reject records a validation error raised while parsing input, before any
// submission.
func (s State) Reject(err *ValidationError) State {
	s.Invalid = err
	s.Loading = false
	return s
}

// --- query ---

// Submit validates the criteria and, when valid, returns the query to run.
// A rejected submission records the validation error, leaves results
// untouched, clears the loading flag and returns a nil request.
func (s State) Submit() (State, *QueryRequest) {
	s.Criteria = s.Criteria.Normalized()
	if err := s.Criteria.Validate(); err != nil {
		verr, _ := err.(*ValidationError)
		s.Invalid = verr
		s.Loading = false
		return s, nil
	}
	s.Invalid = nil
	s.seq++
	s.Loading = true
	return s, &QueryRequest{Seq: s.seq, Criteria: s.Criteria}
}

// ResultsArrived applies a successful response. Responses other than the
// latest issued request are ignored. The client-side sort always resets.
func (s State) ResultsArrived(seq uint64, page marketdata.ScreenerPage) State {
	if seq != s.seq {
		return s
	}
	s.Loading = false
	s.Err = nil
	s.Queried = true
	s.Results = slices.Clone(page.Results)
	s.Sort = SortState{}
	s.HasMore = HasMore(page, s.Criteria)
	s.Total = nil
	if page.Total != nil {
		total := *page.Total
		s.Total = &total
	}
	s.Detail = nil
	return s
}

// QueryFailed applies a failed response: results are discarded and err is
// kept for the banner.
func (s State) QueryFailed(seq uint64, err error) State {
	if seq != s.seq {
		return s
	}
	s.Loading = false
	s.Err = err
	s.Results = nil
	s.Sort = SortState{}
	s.HasMore = false
	s.Total = nil
	s.Detail = nil
	return s
}

// NextPage advances one page and resubmits. It does nothing while a query is
// in flight or when no further page is expected.
func (s State) NextPage() (State, *QueryRequest) {
	if s.Loading || !s.HasMore {
		return s, nil
	}
	s.Criteria.Page++
	return s.Submit()
}

// PrevPage steps back one page and resubmits. Page 0 is the floor.
func (s State) PrevPage() (State, *QueryRequest) {
	if s.Loading || s.Criteria.Page <= 0 {
		return s, nil
	}
	s.Criteria.Page--
	return s.Submit()
}

// ToggleSort advances the tri-state sort for field. It never re-queries.
func (s State) ToggleSort(field SortField) State {
	s.Sort = s.Sort.Toggle(field)
	return s
}

// Visible returns the loaded page in display order.
func (s State) Visible() []marketdata.Company {
	return Sort(s.Results, s.Sort)
}

// DismissError clears the error banner.
func (s State) DismissError() State {
	s.Err = nil
	s.MetadataErr = nil
	return s
}

// Clear resets criteria to defaults and discards results, sort, errors and the
// open dialog. Any query still in flight is invalidated. When a sector was
// selected the industry list is rescoped to all sectors and the returned
// request must be run.
func (s State) Clear() (State, *IndustriesRequest) {
	hadSector := s.Criteria.Sector != ""
	s.Criteria = DefaultCriteria(s.DefaultPageSize)
	s.Results = nil
	s.Sort = SortState{}
	s.Loading = false
	s.HasMore = false
	s.Total = nil
	s.Err = nil
	s.Invalid = nil
	s.Queried = false
	s.Detail = nil
	s.seq++
	if !hadSector {
		return s, nil
	}
	s.Industries = nil
	s, req := s.RequestIndustries()
	return s, &req
}

// --- detail ---

// OpenDetail opens the dialog for symbol from the loaded row and returns the
// profile fetch to run. Unknown symbols return a nil request and no dialog.
func (s State) OpenDetail(symbol string) (State, *ProfileRequest) {
	idx := slices.IndexFunc(s.Results, func(c marketdata.Company) bool {
		return c.Symbol == symbol
	})
	if idx < 0 {
		return s, nil
	}
	s.detailGen++
	s.Detail = &Detail{Company: s.Results[idx], Loading: true, gen: s.detailGen}
	return s, &ProfileRequest{Gen: s.detailGen, Symbol: symbol}
}

// ProfileLoaded fills the open dialog. Responses for a closed or replaced
// dialog are ignored.
func (s State) ProfileLoaded(req ProfileRequest, profile marketdata.Profile) State {
	if s.Detail == nil || s.Detail.gen != req.Gen {
		return s
	}
	d := *s.Detail
	d.Loading = false
	d.Unavailable = false
	d.Profile = &profile
	s.Detail = &d
	return s
}

// ProfileFailed degrades the open dialog to its summary fields. The error is
// not surfaced; the dialog stays open.
func (s State) ProfileFailed(req ProfileRequest) State {
	if s.Detail == nil || s.Detail.gen != req.Gen {
		return s
	}
	d := *s.Detail
	d.Loading = false
	d.Unavailable = true
	s.Detail = &d
	return s
}

// CloseDetail closes the dialog.
func (s State) CloseDetail() State {
	s.Detail = nil
	return s
}

func cloneCap(v *int64) *int64 {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
