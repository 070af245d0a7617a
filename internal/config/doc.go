// Package config loads the screener's runtime settings.
//
// # Resolution Order
//
//  1. Built-in defaults
//  2. The TOML file (explicit path, or ~/.config/screener/config.toml)
//  3. SCREENER_* environment variables, including any set by a .env file in
//     the working directory
//
// A missing config file is not an error. Empty or non-positive values fall
// back to their defaults after all sources are applied.
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:8080"
//	request_timeout = "10s"
//	debounce = "250ms"
//	page_size = 50
//	catalog_ttl = "10m"
//	log_file = "~/.local/state/screener/screener.log"
//	log_level = "info"
//
// Durations use Go duration syntax. Tilde paths are expanded. A log_file of
// "-" sends logs to stderr.
package config
