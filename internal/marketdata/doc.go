// Package marketdata provides an HTTP client for the market data service that
// backs the screener.
//
// # Overview
//
// The service is externally owned and read-only. It enumerates sectors and
// industries, runs the filtered/paginated company query, and serves extended
// company profiles. This package owns the wire types and the transport; it
// holds no screener state.
//
// # API Endpoints
//
//   - GET /api/sectors: sector names (bare array or {"sectors": [...]})
//   - GET /api/industries?sector=S: industry names, optionally scoped
//   - GET /api/screener?sector=&industry=&min_cap=&max_cap=&page=&page_size=
//   - GET /api/companies/{symbol}/profile: long-form description and extras
//
// Name lists are normalized on decode: trimmed, de-duplicated and ordered
// case-insensitively.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation
//   - Set Accept: application/json and User-Agent: screener/0.1
//   - Carry a fresh X-Request-ID, logged alongside status and latency
//   - Time out after 10 seconds unless WithTimeout says otherwise
//
// # Error Handling
//
//   - *NetworkError: connection refused, DNS failure, timeout
//   - *ServiceError: any non-2xx status, with a truncated response body
//   - "decode response: ...": malformed JSON
//
// Describe maps an error to a short banner label ("Service offline",
// "Service error (502)") for the UI.
//
// # Thread Safety
//
// Client is safe for concurrent use.
package marketdata
