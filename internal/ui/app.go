package ui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/screener/internal/marketdata"
	"github.com/five82/screener/internal/prefs"
	"github.com/five82/screener/internal/screener"
)

// focusArea is the form field or pane receiving keys.
type focusArea int

const (
	focusSector focusArea = iota
	focusIndustry
	focusMinCap
	focusMaxCap
	focusPageSize
	focusResults
	focusCount
)

// overlay is the dialog drawn over the main view, if any.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayPicker
	overlayDetail
	overlayLogs
)

// Indices into Model.inputs.
const (
	inputMinCap = iota
	inputMaxCap
	inputPageSize
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Fetcher   marketdata.Fetcher
	Logger    *zap.Logger
	APIURL    string
	Debounce  time.Duration
	PageSize  int
	ThemeName string
	PrefsPath string
	LogPath   string
}

// Model is the root application state for Bubble Tea. All screener state
// lives in state and is only replaced inside Update.
type Model struct {
	// Configuration
	ctx       context.Context
	fetcher   marketdata.Fetcher
	logger    *zap.Logger
	keys      keyMap
	apiURL    string
	debounce  time.Duration
	prefsPath string
	logPath   string

	// Screener state
	state         screener.State
	initSectors   screener.SectorsRequest
	initIndustry  screener.IndustriesRequest
	savedPageSize int

	// UI state
	theme       Theme
	width       int
	height      int
	ready       bool
	focus       focusArea
	overlay     overlay
	inputs      [3]textinput.Model
	selectedRow int
	spinner     spinner.Model

	modal          Modal
	detailViewport viewport.Model
	logs           logView
}

// New creates a new Bubble Tea model. Sector and industry fetches are queued
// here and issued by Init.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = DefaultThemeName
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	debounce := max(opts.Debounce, 0)

	st := screener.New(opts.PageSize)
	st, sectorsReq := st.RequestSectors()
	st, industriesReq := st.RequestIndustries()

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	m := Model{
		ctx:           ctx,
		fetcher:       opts.Fetcher,
		logger:        logger,
		keys:          DefaultKeyMap(),
		apiURL:        opts.APIURL,
		debounce:      debounce,
		prefsPath:     prefsPath,
		logPath:       opts.LogPath,
		state:         st,
		initSectors:   sectorsReq,
		initIndustry:  industriesReq,
		savedPageSize: st.DefaultPageSize,
		theme:         GetTheme(themeName),
		spinner:        spin,
		detailViewport: viewport.New(0, 0),
		logs:           newLogView(),
	}
	m.initInputs()
	m.setFocus(focusSector)
	return m
}

func (m *Model) initInputs() {
	placeholders := [3]string{"e.g. 2B", "e.g. 500B", strconv.Itoa(m.state.DefaultPageSize)}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 24
		ti.Width = 18
		m.inputs[i] = ti
	}
	m.inputs[inputPageSize].SetValue(strconv.Itoa(m.state.Criteria.PageSize))
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.fetchSectorsCmd(m.initSectors),
		m.fetchIndustriesCmd(m.initIndustry),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sectorsMsg:
		m.state = m.state.SectorsLoaded(msg.gen, msg.sectors, msg.err)
		m.refreshPicker()
		return m, nil

	case industriesDueMsg:
		if !m.state.IndustriesPending(msg.req) {
			return m, nil
		}
		return m, m.fetchIndustriesCmd(msg.req)

	case industriesMsg:
		m.state = m.state.IndustriesLoaded(msg.gen, msg.industries, msg.err)
		m.refreshPicker()
		return m, nil

	case resultsMsg:
		m.state = m.state.ResultsArrived(msg.seq, msg.page)
		m.afterResults()
		return m, nil

	case queryFailedMsg:
		m.state = m.state.QueryFailed(msg.seq, msg.err)
		m.afterResults()
		return m, nil

	case profileMsg:
		m.state = m.state.ProfileLoaded(msg.req, msg.profile)
		m.syncDetail()
		return m, nil

	case profileFailedMsg:
		m.state = m.state.ProfileFailed(msg.req)
		m.syncDetail()
		return m, nil

	case logsMsg:
		m.logs.load(msg.entries, msg.err)
		m.logs.render(m.theme, m.logs.viewport.Width)
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.logger.Warn("save preferences failed", zap.Error(msg.err))
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	switch m.overlay {
	case overlayHelp:
		return m.renderHelp()
	case overlayPicker:
		if m.modal != nil {
			return m.modal.View(m.theme, m.width, m.height)
		}
	case overlayDetail:
		return m.renderDetail()
	case overlayLogs:
		return m.renderLogs()
	}

	return m.renderMain()
}

// handleKey routes a key press to the open overlay, the focused text input,
// or the global and pane bindings.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	switch m.overlay {
	case overlayHelp:
		m.overlay = overlayNone
		return m, nil
	case overlayPicker:
		return m.handlePickerKey(msg)
	case overlayDetail:
		return m.handleDetailKey(msg)
	case overlayLogs:
		return m.handleLogsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Tab):
		return m, m.setFocus((m.focus + 1) % focusCount)
	case key.Matches(msg, m.keys.ShiftTab):
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Clear):
		return m.clear()
	}

	if idx, ok := m.focusedInput(); ok {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m.submit()
		case key.Matches(msg, m.keys.Escape):
			return m, m.setFocus(focusResults)
		}
		var cmd tea.Cmd
		m.inputs[idx], cmd = m.inputs[idx].Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.overlay = overlayHelp
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.logs.render(m.theme, m.logs.viewport.Width)
		return m, m.savePrefsCmd()
	case key.Matches(msg, m.keys.Logs):
		m.overlay = overlayLogs
		return m, m.readLogsCmd()
	case key.Matches(msg, m.keys.Dismiss):
		m.state = m.state.DismissError()
		return m, nil
	}

	switch m.focus {
	case focusSector, focusIndustry:
		return m.handleFieldKey(msg)
	case focusResults:
		return m.handleResultsKey(msg)
	}
	return m, nil
}

// handleFieldKey handles the sector and industry pickers while they have focus.
func (m Model) handleFieldKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.openPicker(m.focus)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		return m, m.setFocus(m.focus + 1)
	case key.Matches(msg, m.keys.Up):
		if m.focus > focusSector {
			return m, m.setFocus(m.focus - 1)
		}
	}
	return m, nil
}

// setFocus moves keyboard focus, focusing or blurring text inputs.
func (m *Model) setFocus(f focusArea) tea.Cmd {
	m.focus = f
	var cmd tea.Cmd
	for i := range m.inputs {
		if focusArea(i)+focusMinCap == f {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m Model) focusedInput() (int, bool) {
	switch m.focus {
	case focusMinCap:
		return inputMinCap, true
	case focusMaxCap:
		return inputMaxCap, true
	case focusPageSize:
		return inputPageSize, true
	}
	return 0, false
}

// submit parses the text inputs into criteria and, when valid, runs the query.
func (m Model) submit() (tea.Model, tea.Cmd) {
	minCap, err := screener.ParseCap(screener.FieldMinCap, m.inputs[inputMinCap].Value())
	if err != nil {
		return m.reject(err)
	}
	maxCap, err := screener.ParseCap(screener.FieldMaxCap, m.inputs[inputMaxCap].Value())
	if err != nil {
		return m.reject(err)
	}
	pageSize, err := screener.ParsePageSize(m.inputs[inputPageSize].Value(), m.state.DefaultPageSize)
	if err != nil {
		return m.reject(err)
	}

	m.state = m.state.SetMinCap(minCap).SetMaxCap(maxCap).SetPageSize(pageSize)
	m.inputs[inputPageSize].SetValue(strconv.Itoa(m.state.Criteria.PageSize))

	var req *screener.QueryRequest
	m.state, req = m.state.Submit()
	if req == nil {
		return m, nil
	}
	cmds := []tea.Cmd{m.queryCmd(*req)}
	if m.state.Criteria.PageSize != m.savedPageSize {
		m.savedPageSize = m.state.Criteria.PageSize
		cmds = append(cmds, m.savePrefsCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) reject(err error) (tea.Model, tea.Cmd) {
	var verr *screener.ValidationError
	if !errors.As(err, &verr) {
		verr = &screener.ValidationError{Message: err.Error()}
	}
	m.state = m.state.Reject(verr)
	return m, nil
}

// clear resets every filter and input to defaults.
func (m Model) clear() (tea.Model, tea.Cmd) {
	var req *screener.IndustriesRequest
	m.state, req = m.state.Clear()
	m.inputs[inputMinCap].SetValue("")
	m.inputs[inputMaxCap].SetValue("")
	m.inputs[inputPageSize].SetValue(strconv.Itoa(m.state.Criteria.PageSize))
	m.selectedRow = 0
	m.overlay = overlayNone
	m.modal = nil
	if req == nil {
		return m, nil
	}
	return m, m.scheduleIndustriesCmd(*req)
}

// selectSector applies a sector choice and schedules the dependent industry fetch.
func (m *Model) selectSector(sector string) tea.Cmd {
	var req *screener.IndustriesRequest
	m.state, req = m.state.SelectSector(sector)
	if req == nil {
		return nil
	}
	return m.scheduleIndustriesCmd(*req)
}

// afterResults keeps the selection and overlays consistent with a new result set.
func (m *Model) afterResults() {
	m.selectedRow = 0
	m.syncDetail()
}

// syncDetail closes the detail overlay when the dialog is gone and refreshes
// its content otherwise.
func (m *Model) syncDetail() {
	if m.state.Detail == nil {
		if m.overlay == overlayDetail {
			m.overlay = overlayNone
		}
		return
	}
	m.detailViewport.SetContent(m.detailBody(m.detailViewport.Width))
}

// resize recomputes component sizes after a window change.
func (m *Model) resize() {
	w, h := m.detailSize()
	m.detailViewport.Width = w - 4
	m.detailViewport.Height = max(h-6, 3)
	m.syncDetail()

	m.logs.resize(m.width-4, m.height-4)
	m.logs.render(m.theme, m.logs.viewport.Width)
	m.clampSelection()
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}

// displayHost trims the scheme from the API URL for the header.
func displayHost(apiURL string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(apiURL, "https://"), "http://")
	return strings.TrimSuffix(host, "/")
}
