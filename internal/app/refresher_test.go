package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/five82/screener/internal/catalog"
	"github.com/five82/screener/internal/marketdata"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 64; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type fakeRefresher struct {
	mu       sync.Mutex
	calls    int
	failures int // calls that fail before succeeding
	snap     catalog.Snapshot
	called   chan struct{}
}

func (f *fakeRefresher) RefreshSectors(context.Context) ([]string, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.failures
	if fail {
		f.snap.ConsecutiveFailures++
	} else {
		f.snap.ConsecutiveFailures = 0
	}
	f.mu.Unlock()

	select {
	case f.called <- struct{}{}:
	default:
	}
	if fail {
		return nil, errors.New("unreachable")
	}
	return []string{"Energy"}, nil
}

func (f *fakeRefresher) Snapshot() catalog.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeRefresher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitCalls(t *testing.T, f *fakeRefresher, n int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for f.callCount() < n {
		select {
		case <-f.called:
		case <-deadline:
			t.Fatalf("refresher made %d calls, want %d", f.callCount(), n)
		}
	}
}

func TestStartRefresher_RefreshesUntilCancelled(t *testing.T) {
	f := &fakeRefresher{called: make(chan struct{}, 1)}
	ctx, cancel := context.WithCancel(context.Background())

	done := StartRefresher(ctx, f, zap.NewNop(), 5*time.Millisecond)
	waitCalls(t, f, 3)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("refresher did not stop after cancel")
	}
}

func TestStartRefresher_RetriesAfterFailure(t *testing.T) {
	prev := retryInterval
	retryInterval = time.Millisecond
	t.Cleanup(func() { retryInterval = prev })

	f := &fakeRefresher{failures: 2, called: make(chan struct{}, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := StartRefresher(ctx, f, zap.NewNop(), 20*time.Millisecond)
	waitCalls(t, f, 3)
	cancel()
	<-done

	if f.Snapshot().IsOffline() {
		t.Fatalf("snapshot still offline after a successful refresh")
	}
}

func TestStartRefresher_WaitsBeforeFirstRefresh(t *testing.T) {
	f := &fakeRefresher{called: make(chan struct{}, 1)}
	ctx, cancel := context.WithCancel(context.Background())

	done := StartRefresher(ctx, f, nil, time.Hour)
	cancel()
	<-done

	if f.callCount() != 0 {
		t.Fatalf("refresher fetched before its first interval")
	}
}

func TestWarmCatalog_PopulatesStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/sectors":
			_, _ = w.Write([]byte(`{"sectors":["Technology","Energy"]}`))
		case "/api/industries":
			_, _ = w.Write([]byte(`["Software","Oil & Gas"]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := marketdata.NewClient(srv.URL, marketdata.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}
	store := catalog.New(client, time.Minute)

	if err := warmCatalog(context.Background(), store, zap.NewNop(), time.Second); err != nil {
		t.Fatalf("warmCatalog: %v", err)
	}
	snap := store.Snapshot()
	if len(snap.Sectors) != 2 || len(snap.Industries[""]) != 2 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestWarmCatalog_ReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := marketdata.NewClient(srv.URL, marketdata.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}
	err = warmCatalog(context.Background(), catalog.New(client, time.Minute), zap.NewNop(), time.Second)
	if err == nil || !strings.Contains(err.Error(), "warm") {
		t.Fatalf("warmCatalog error = %v", err)
	}
}

func TestRun_RejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "request_timeout = \"soon\"\n")

	err := Run(context.Background(), Options{ConfigPath: path})
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("Run error = %v", err)
	}
}

func TestRun_RejectsBadLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "log_level = \"chatty\"\nlog_file = \""+filepath.Join(dir, "s.log")+"\"\n")

	err := Run(context.Background(), Options{ConfigPath: path})
	if err == nil || !strings.Contains(err.Error(), "init logger") {
		t.Fatalf("Run error = %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
