package catalog

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/five82/screener/internal/marketdata"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeFetcher struct {
	sectorCalls   atomic.Int32
	industryCalls atomic.Int32
	gate          chan struct{}
	err           error
	sectors       []string
	industries    map[string][]string
}

func (f *fakeFetcher) FetchSectors(ctx context.Context) ([]string, error) {
	f.sectorCalls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.sectors, nil
}

func (f *fakeFetcher) FetchIndustries(ctx context.Context, sector string) ([]string, error) {
	f.industryCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.industries[sector], nil
}

func (f *fakeFetcher) FetchScreener(ctx context.Context, q marketdata.ScreenerQuery) (marketdata.ScreenerPage, error) {
	return marketdata.ScreenerPage{Results: []marketdata.Company{{Symbol: q.Sector}}}, nil
}

func (f *fakeFetcher) FetchCompanyProfile(ctx context.Context, symbol string) (marketdata.Profile, error) {
	return marketdata.Profile{Symbol: symbol}, nil
}

func newFake() *fakeFetcher {
	return &fakeFetcher{
		sectors: []string{"Energy", "Technology"},
		industries: map[string][]string{
			"":           {"Oil & Gas", "Software"},
			"Technology": {"Software"},
		},
	}
}

func TestStore_CachesUntilTTL(t *testing.T) {
	up := newFake()
	s := New(up, time.Minute)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	for range 3 {
		got, err := s.FetchSectors(ctx)
		if err != nil {
			t.Fatalf("FetchSectors: %v", err)
		}
		if diff := cmp.Diff(up.sectors, got); diff != "" {
			t.Fatalf("sectors mismatch (-want +got):\n%s", diff)
		}
	}
	if n := up.sectorCalls.Load(); n != 1 {
		t.Fatalf("upstream sector calls = %d, want 1", n)
	}

	now = now.Add(2 * time.Minute)
	if _, err := s.FetchSectors(ctx); err != nil {
		t.Fatalf("FetchSectors after ttl: %v", err)
	}
	if n := up.sectorCalls.Load(); n != 2 {
		t.Fatalf("upstream sector calls after ttl = %d, want 2", n)
	}
}

func TestStore_IndustriesKeyedBySector(t *testing.T) {
	up := newFake()
	s := New(up, time.Hour)
	ctx := context.Background()

	all, err := s.FetchIndustries(ctx, "")
	if err != nil {
		t.Fatalf("FetchIndustries all: %v", err)
	}
	tech, err := s.FetchIndustries(ctx, "Technology")
	if err != nil {
		t.Fatalf("FetchIndustries tech: %v", err)
	}
	_, _ = s.FetchIndustries(ctx, "Technology")

	if diff := cmp.Diff([]string{"Oil & Gas", "Software"}, all); diff != "" {
		t.Fatalf("all mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Software"}, tech); diff != "" {
		t.Fatalf("tech mismatch (-want +got):\n%s", diff)
	}
	if n := up.industryCalls.Load(); n != 2 {
		t.Fatalf("upstream industry calls = %d, want 2", n)
	}

	s.Invalidate()
	_, _ = s.FetchIndustries(ctx, "Technology")
	if n := up.industryCalls.Load(); n != 3 {
		t.Fatalf("upstream industry calls after invalidate = %d, want 3", n)
	}
}

func TestStore_CollapsesConcurrentMisses(t *testing.T) {
	up := newFake()
	up.gate = make(chan struct{})
	s := New(up, time.Hour)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.FetchSectors(context.Background()); err != nil {
				t.Errorf("FetchSectors: %v", err)
			}
		}()
	}
	// Let the callers pile up behind the first request before releasing it.
	time.Sleep(20 * time.Millisecond)
	close(up.gate)
	wg.Wait()

	if n := up.sectorCalls.Load(); n > 2 {
		t.Fatalf("upstream sector calls = %d, want concurrent misses collapsed", n)
	}
}

func TestStore_SnapshotClone(t *testing.T) {
	s := New(newFake(), time.Hour)
	ctx := context.Background()
	_, _ = s.FetchSectors(ctx)
	_, _ = s.FetchIndustries(ctx, "Technology")

	snap := s.Snapshot()
	if len(snap.Sectors) != 2 || len(snap.Industries["Technology"]) != 1 {
		t.Fatalf("snapshot = %#v", snap)
	}
	if snap.LastUpdated.IsZero() {
		t.Fatalf("LastUpdated not set")
	}

	snap.Sectors[0] = "mutated"
	snap.Industries["Technology"][0] = "mutated"
	again := s.Snapshot()
	if again.Sectors[0] != "Energy" || again.Industries["Technology"][0] != "Software" {
		t.Fatalf("Snapshot should clone lists, got %#v", again)
	}

	got, _ := s.FetchSectors(ctx)
	got[0] = "mutated"
	if s.Snapshot().Sectors[0] != "Energy" {
		t.Fatalf("FetchSectors should return a copy")
	}
}

func TestStore_FailuresKeepPreviousData(t *testing.T) {
	up := newFake()
	s := New(up, time.Hour)
	ctx := context.Background()
	_, _ = s.FetchSectors(ctx)

	origErr := errors.New("boom")
	up.err = origErr
	for i := 1; i <= 2; i++ {
		if _, err := s.RefreshSectors(ctx); !errors.Is(err, origErr) {
			t.Fatalf("RefreshSectors err = %v, want wrapped boom", err)
		}
		snap := s.Snapshot()
		if snap.ConsecutiveFailures != i {
			t.Fatalf("ConsecutiveFailures = %d, want %d", snap.ConsecutiveFailures, i)
		}
		if len(snap.Sectors) != 2 {
			t.Fatalf("sectors dropped on failure: %v", snap.Sectors)
		}
	}

	snap := s.Snapshot()
	if !snap.IsOffline() {
		t.Fatalf("IsOffline() = false after two failures")
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}

	up.err = nil
	if _, err := s.RefreshSectors(ctx); err != nil {
		t.Fatalf("RefreshSectors: %v", err)
	}
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.LastError != nil || snap.IsOffline() {
		t.Fatalf("success should reset health, got %#v", snap)
	}
}

func TestStore_PassesQueriesThrough(t *testing.T) {
	s := New(newFake(), 0)
	if s.ttl != DefaultTTL {
		t.Fatalf("ttl = %v, want default", s.ttl)
	}
	page, err := s.FetchScreener(context.Background(), marketdata.ScreenerQuery{Sector: "Energy"})
	if err != nil || len(page.Results) != 1 || page.Results[0].Symbol != "Energy" {
		t.Fatalf("FetchScreener = %#v, %v", page, err)
	}
	profile, err := s.FetchCompanyProfile(context.Background(), "ACME")
	if err != nil || profile.Symbol != "ACME" {
		t.Fatalf("FetchCompanyProfile = %#v, %v", profile, err)
	}
}
