// Package ui provides the terminal interface for the industry screener.
//
// # Architecture
//
// The UI is a Bubble Tea program. Model owns a screener.State and replaces it
// only inside Update; every network call runs as a tea.Cmd and reports back
// with a message carrying the token of the request it answers, so stale
// responses are discarded by the state transitions rather than by the UI.
//
//   - app.go: Model, Options, key routing, submit and clear
//   - cmds.go: fetch commands and their messages
//   - form.go: filter box (sector, industry, market cap bounds, page size)
//   - results.go: results table, status line and the titled box helper
//   - modal.go: sector and industry picker
//   - detail.go: company dialog
//   - logs.go: activity log overlay backed by logtail
//   - header.go, help.go, keys.go, theme.go: chrome, bindings and palettes
//
// # Flow
//
//  1. New queues the sector and industry fetches; Init runs them.
//  2. Changing the sector schedules a debounced industry fetch.
//  3. Submitting validates the inputs locally, then runs one query.
//  4. Sorting reorders the loaded page and never re-queries.
//  5. Opening a row shows its summary at once and fills in the profile when
//     it arrives. A failed profile load leaves the summary in place.
//
// # Key Bindings
//
//   - tab / shift+tab: move between filters and results
//   - enter: pick from a list, run the screen, or open a company
//   - ctrl+r: run the screen from anywhere
//   - ctrl+l: clear all filters
//   - s / m: cycle sort by name / market cap
//   - n / p: next / previous page
//   - L: activity log; /: filter it
//   - x: dismiss the error banner
//   - T: cycle theme
//   - q or ctrl+c: quit
package ui
