// Package catalog caches the sector and industry lists served by the market
// data API.
//
// # Overview
//
// Sector and industry lists change rarely but are requested often: once at
// startup, again whenever the sector filter changes, and by the background
// refresher. Store sits in front of a marketdata.Fetcher and serves those
// lists from memory until they are older than the configured TTL.
//
// Store implements marketdata.Fetcher itself, so the UI and CLI take a single
// dependency. Screener queries and company profiles are never cached and pass
// straight through.
//
// # Concurrency Model
//
// Reads take a sync.RWMutex read lock; writes happen only after an upstream
// fetch completes. Concurrent misses for the same list are collapsed with
// singleflight, so a burst of sector changes costs one request per distinct
// sector. The lock is never held across network I/O.
//
// # Snapshots
//
// Snapshot returns cloned slices and a copied error, mirroring the fetch
// health (LastError, ConsecutiveFailures) used by the header to show when the
// service looks offline.
package catalog
