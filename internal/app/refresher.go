package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/screener/internal/catalog"
)

const maxBackoff = 30 * time.Second

// retryInterval is the first delay after a failed refresh.
var retryInterval = 2 * time.Second

// catalogRefresher is the part of catalog.Store the refresher drives.
type catalogRefresher interface {
	RefreshSectors(ctx context.Context) ([]string, error)
	Snapshot() catalog.Snapshot
}

// StartRefresher launches a background goroutine that re-warms the sector
// list every interval, backing off after consecutive failures. It returns
// immediately; the returned channel closes once the goroutine has exited
// after ctx is cancelled.
func StartRefresher(ctx context.Context, store catalogRefresher, logger *zap.Logger, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = catalog.DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		timer := time.NewTimer(interval)
		defer timer.Stop()

		failures := 0
		offline := false
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			wait := interval
			sectors, err := store.RefreshSectors(ctx)
			switch {
			case ctx.Err() != nil:
				return
			case err != nil:
				wait = calculateBackoff(failures, retryInterval)
				failures++
				logger.Warn("catalog refresh failed",
					zap.Int("failures", failures),
					zap.Duration("retry_in", wait),
					zap.Error(err),
				)
			default:
				failures = 0
				logger.Debug("catalog refreshed", zap.Int("sectors", len(sectors)))
			}

			if now := store.Snapshot().IsOffline(); now != offline {
				offline = now
				if offline {
					logger.Warn("market data service unreachable")
				} else {
					logger.Info("market data service reachable again")
				}
			}
			timer.Reset(wait)
		}
	}()
	return done
}

// calculateBackoff returns the delay before the next attempt: base doubled
// once per previous failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for range failures {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
