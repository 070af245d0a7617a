package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/screener/internal/logtail"
	"github.com/five82/screener/internal/marketdata"
	"github.com/five82/screener/internal/prefs"
	"github.com/five82/screener/internal/screener"
)

// logTailLimit caps how many log lines the activity overlay reads.
const logTailLimit = 500

// Messages produced by commands. Each carries the token of the request it
// answers so Update can drop superseded responses.
type (
	sectorsMsg struct {
		gen     uint64
		sectors []string
		err     error
	}

	industriesDueMsg struct {
		req screener.IndustriesRequest
	}

	industriesMsg struct {
		gen        uint64
		industries []string
		err        error
	}

	resultsMsg struct {
		seq  uint64
		page marketdata.ScreenerPage
	}

	queryFailedMsg struct {
		seq uint64
		err error
	}

	profileMsg struct {
		req     screener.ProfileRequest
		profile marketdata.Profile
	}

	profileFailedMsg struct {
		req screener.ProfileRequest
	}

	logsMsg struct {
		entries []logtail.Entry
		err     error
	}

	prefsSavedMsg struct {
		err error
	}
)

func (m Model) fetchSectorsCmd(req screener.SectorsRequest) tea.Cmd {
	ctx, fetcher, logger := m.ctx, m.fetcher, m.logger
	return func() tea.Msg {
		sectors, err := fetcher.FetchSectors(ctx)
		if err != nil {
			logger.Warn("load sectors failed", zap.Error(err))
		}
		return sectorsMsg{gen: req.Gen, sectors: sectors, err: err}
	}
}

// scheduleIndustriesCmd delays the industry fetch by the debounce interval so
// rapid sector changes collapse into one request.
func (m Model) scheduleIndustriesCmd(req screener.IndustriesRequest) tea.Cmd {
	if m.debounce <= 0 {
		return m.fetchIndustriesCmd(req)
	}
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return industriesDueMsg{req: req}
	})
}

func (m Model) fetchIndustriesCmd(req screener.IndustriesRequest) tea.Cmd {
	ctx, fetcher, logger := m.ctx, m.fetcher, m.logger
	return func() tea.Msg {
		industries, err := fetcher.FetchIndustries(ctx, req.Sector)
		if err != nil {
			logger.Warn("load industries failed",
				zap.String("sector", req.Sector),
				zap.Error(err),
			)
		}
		return industriesMsg{gen: req.Gen, industries: industries, err: err}
	}
}

// queryCmd runs a screener query. It always yields exactly one message, so
// the loading flag cannot stick even if the fetcher panics.
func (m Model) queryCmd(req screener.QueryRequest) tea.Cmd {
	ctx, fetcher, logger := m.ctx, m.fetcher, m.logger
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("screener query: %v", r)
				logger.Error("screener query panicked", zap.Error(err))
				msg = queryFailedMsg{seq: req.Seq, err: err}
			}
		}()

		query := req.Criteria.Query()
		start := time.Now()
		page, err := fetcher.FetchScreener(ctx, query)
		if err != nil {
			logger.Warn("screener query failed",
				zap.Uint64("seq", req.Seq),
				zap.String("query", query.Values().Encode()),
				zap.Error(err),
			)
			return queryFailedMsg{seq: req.Seq, err: err}
		}
		logger.Info("screener query",
			zap.Uint64("seq", req.Seq),
			zap.String("query", query.Values().Encode()),
			zap.Int("rows", len(page.Results)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return resultsMsg{seq: req.Seq, page: page}
	}
}

// profileCmd loads the extended profile for the detail dialog. Failures are
// logged and otherwise silent.
func (m Model) profileCmd(req screener.ProfileRequest) tea.Cmd {
	ctx, fetcher, logger := m.ctx, m.fetcher, m.logger
	return func() tea.Msg {
		profile, err := fetcher.FetchCompanyProfile(ctx, req.Symbol)
		if err != nil {
			logger.Warn("load company profile failed",
				zap.String("symbol", req.Symbol),
				zap.Error(err),
			)
			return profileFailedMsg{req: req}
		}
		return profileMsg{req: req, profile: profile}
	}
}

func (m Model) readLogsCmd() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		if path == "" {
			return logsMsg{err: fmt.Errorf("no log file configured")}
		}
		entries, err := logtail.ReadEntries(path, logTailLimit)
		return logsMsg{entries: entries, err: err}
	}
}

func (m Model) savePrefsCmd() tea.Cmd {
	path := m.prefsPath
	p := prefs.Prefs{Theme: m.theme.Name, PageSize: m.savedPageSize}
	return func() tea.Msg {
		return prefsSavedMsg{err: prefs.Save(path, p)}
	}
}
