package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/screener/internal/config"
	"github.com/five82/screener/internal/logging"
	"github.com/five82/screener/internal/marketdata"
)

// cliEnv is what a one-shot command needs: settings, a stderr logger and a
// client.
type cliEnv struct {
	cfg    config.Config
	logger *zap.Logger
	client *marketdata.Client
}

func newCLIEnv(opts *rootOptions) (*cliEnv, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Stderr, level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	client, err := marketdata.NewClient(cfg.APIURL,
		marketdata.WithTimeout(cfg.RequestTimeout),
		marketdata.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("init market data client: %w", err)
	}
	return &cliEnv{cfg: cfg, logger: logger, client: client}, nil
}

func (e *cliEnv) close() {
	_ = e.logger.Sync()
}
