// Package app is the composition root for the screener.
//
// # Startup
//
//  1. Load config (TOML file, then SCREENER_* environment overrides)
//  2. Build the zap logger; the TUI owns the terminal, so it logs to a file
//  3. Load preferences (theme, page size); failures fall back to defaults
//  4. Create the market data client and wrap it in the catalog cache
//  5. Warm the sector and unscoped industry lists concurrently
//  6. Start the background catalog refresher
//  7. Run the TUI until the user quits or the context is cancelled
//
// # Refresher
//
// StartRefresher re-warms the sector list once per catalog TTL. After a
// failure it retries sooner, doubling the delay from two seconds up to a
// thirty second cap, and logs when the service goes offline or comes back.
//
// # Errors
//
// Run returns an error only for problems that prevent startup: an unreadable
// or invalid config file, an unknown log level or unwritable log file, and an
// unparsable API URL. Everything after that is logged and surfaced in the UI.
package app
