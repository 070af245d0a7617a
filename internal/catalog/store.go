package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/five82/screener/internal/marketdata"
)

// DefaultTTL is how long a cached list is served before it is refetched.
const DefaultTTL = 10 * time.Minute

// Ensure Store can stand in for the client.
var _ marketdata.Fetcher = (*Store)(nil)

// Snapshot is a point-in-time copy of the cached metadata.
type Snapshot struct {
	Sectors             []string
	Industries          map[string][]string // keyed by sector; "" is the unscoped list
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline reports whether the last two metadata fetches both failed.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

type entry struct {
	names   []string
	fetched time.Time
}

// Store caches sector and industry lists in front of a Fetcher. Screener and
// profile calls pass straight through. Concurrent misses for the same list
// share one upstream request.
type Store struct {
	upstream marketdata.Fetcher
	ttl      time.Duration
	now      func() time.Time
	group    singleflight.Group

	mu         sync.RWMutex
	sectors    *entry
	industries map[string]entry
	lastUpdate time.Time
	lastErr    error
	failures   int
}

// New wraps upstream with a cache whose entries live for ttl. A non-positive
// ttl uses DefaultTTL.
func New(upstream marketdata.Fetcher, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		upstream:   upstream,
		ttl:        ttl,
		now:        time.Now,
		industries: make(map[string]entry),
	}
}

// FetchSectors returns the cached sector list, fetching it when missing or expired.
func (s *Store) FetchSectors(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	cached := s.sectors
	s.mu.RUnlock()
	if cached != nil && s.fresh(*cached) {
		return slices.Clone(cached.names), nil
	}
	return s.RefreshSectors(ctx)
}

// RefreshSectors fetches the sector list upstream regardless of the cache.
func (s *Store) RefreshSectors(ctx context.Context) ([]string, error) {
	v, err, _ := s.group.Do("sectors", func() (any, error) {
		names, err := s.upstream.FetchSectors(ctx)
		s.record(err)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.sectors = &entry{names: slices.Clone(names), fetched: s.now()}
		s.mu.Unlock()
		return names, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load sectors: %w", err)
	}
	return slices.Clone(v.([]string)), nil
}

// FetchIndustries returns the cached industry list for sector ("" = all).
func (s *Store) FetchIndustries(ctx context.Context, sector string) ([]string, error) {
	s.mu.RLock()
	cached, ok := s.industries[sector]
	s.mu.RUnlock()
	if ok && s.fresh(cached) {
		return slices.Clone(cached.names), nil
	}

	v, err, _ := s.group.Do("industries\x00"+sector, func() (any, error) {
		names, err := s.upstream.FetchIndustries(ctx, sector)
		s.record(err)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.industries[sector] = entry{names: slices.Clone(names), fetched: s.now()}
		s.mu.Unlock()
		return names, nil
	})
	if err != nil {
		if sector == "" {
			return nil, fmt.Errorf("load industries: %w", err)
		}
		return nil, fmt.Errorf("load industries for %q: %w", sector, err)
	}
	return slices.Clone(v.([]string)), nil
}

// FetchScreener is not cached; every query goes upstream.
func (s *Store) FetchScreener(ctx context.Context, query marketdata.ScreenerQuery) (marketdata.ScreenerPage, error) {
	return s.upstream.FetchScreener(ctx, query)
}

// FetchCompanyProfile is not cached.
func (s *Store) FetchCompanyProfile(ctx context.Context, symbol string) (marketdata.Profile, error) {
	return s.upstream.FetchCompanyProfile(ctx, symbol)
}

// Invalidate drops every cached list.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sectors = nil
	s.industries = make(map[string]entry)
}

// Snapshot returns a copy of the cached lists and fetch health.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		LastUpdated:         s.lastUpdate,
		ConsecutiveFailures: s.failures,
	}
	if s.sectors != nil {
		snap.Sectors = slices.Clone(s.sectors.names)
	}
	if len(s.industries) > 0 {
		snap.Industries = make(map[string][]string, len(s.industries))
		for sector, e := range s.industries {
			snap.Industries[sector] = slices.Clone(e.names)
		}
	}
	if s.lastErr != nil {
		snap.LastError = fmt.Errorf("%w", s.lastErr)
	}
	return snap
}

func (s *Store) fresh(e entry) bool {
	return s.now().Sub(e.fetched) < s.ttl
}

func (s *Store) record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdate = s.now()
	if err != nil {
		s.lastErr = err
		s.failures++
		return
	}
	s.lastErr = nil
	s.failures = 0
}
