package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/screener/internal/catalog"
	"github.com/five82/screener/internal/config"
	"github.com/five82/screener/internal/logging"
	"github.com/five82/screener/internal/marketdata"
	"github.com/five82/screener/internal/prefs"
	"github.com/five82/screener/internal/ui"
)

// Options configure the screener application.
type Options struct {
	ConfigPath string // empty uses ~/.config/screener/config.toml
	PrefsPath  string // empty uses ~/.config/screener/prefs.toml
	Verbose    bool   // forces debug logging
}

// Run boots the screener TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	logger, err := logging.New(cfg.LogFile, level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("load preferences failed; using defaults", zap.Error(err))
	}

	client, err := marketdata.NewClient(cfg.APIURL,
		marketdata.WithTimeout(cfg.RequestTimeout),
		marketdata.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("init market data client: %w", err)
	}
	store := catalog.New(client, cfg.CatalogTTL)

	logger.Info("screener starting",
		zap.String("api_url", client.BaseURL()),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.Duration("catalog_ttl", cfg.CatalogTTL),
	)

	// The UI fetches on its own when this fails.
	_ = warmCatalog(ctx, store, logger, cfg.RequestTimeout)

	refreshCtx, stopRefresh := context.WithCancel(ctx)
	refresherDone := StartRefresher(refreshCtx, store, logger, cfg.CatalogTTL)
	defer func() {
		stopRefresh()
		<-refresherDone
	}()

	pageSize := cfg.PageSize
	if userPrefs.PageSize > 0 {
		pageSize = userPrefs.PageSize
	}
	logPath := cfg.LogFile
	if logPath == logging.Stderr {
		logPath = ""
	}

	err = ui.Run(ui.Options{
		Context:   ctx,
		Fetcher:   store,
		Logger:    logger,
		APIURL:    client.BaseURL(),
		Debounce:  cfg.Debounce,
		PageSize:  pageSize,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		LogPath:   logPath,
	})
	logger.Info("screener stopped", zap.Error(err))
	return err
}

// warmCatalog fetches the sector list and the unscoped industry list
// concurrently so the first screen opens with populated pickers.
func warmCatalog(ctx context.Context, f marketdata.Fetcher, logger *zap.Logger, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sectors, err := f.FetchSectors(gctx)
		if err != nil {
			return fmt.Errorf("warm sectors: %w", err)
		}
		logger.Debug("sectors warmed", zap.Int("count", len(sectors)))
		return nil
	})
	g.Go(func() error {
		industries, err := f.FetchIndustries(gctx, "")
		if err != nil {
			return fmt.Errorf("warm industries: %w", err)
		}
		logger.Debug("industries warmed", zap.Int("count", len(industries)))
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Warn("catalog warm-up failed", zap.Error(err))
		return err
	}
	return nil
}
