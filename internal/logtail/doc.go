// Package logtail reads the tail of the screener's log file for the in-app
// activity overlay.
//
// Read extracts the last N lines with a ring buffer, so memory stays
// O(maxLines) however large the file grows. A missing file is not an error.
//
// ReadEntries parses those lines as zap JSON entries. The standard keys (ts,
// level, msg, caller) become Entry fields; everything else lands in Fields and
// is rendered as sorted key=value pairs. Lines that are not JSON, such as a
// panic trace, are kept verbatim as the message.
//
// Filter does case-insensitive substring matching over the level, message
// and fields. Styling is left to the UI.
package logtail
