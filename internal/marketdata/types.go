package marketdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Company mirrors a single row of the /api/screener payload.
type Company struct {
	Symbol      string   `json:"symbol"`
	Name        string   `json:"name"`
	Sector      string   `json:"sector"`
	Industry    string   `json:"industry"`
	MarketCap   float64  `json:"marketCap"`
	Price       *float64 `json:"price,omitempty"`
	Website     string   `json:"website,omitempty"`
	LogoURL     string   `json:"logoUrl,omitempty"`
	Description string   `json:"description,omitempty"`
}

// DisplayName returns the company name, falling back to the symbol.
func (c Company) DisplayName() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return c.Symbol
}

// ScreenerPage mirrors /api/screener.
//
// Total and HasMore are optional; services that omit both leave the caller to
// infer pagination from the page length.
type ScreenerPage struct {
	Results []Company `json:"results"`
	Total   *int      `json:"total,omitempty"`
	HasMore *bool     `json:"hasMore,omitempty"`
}

// Profile mirrors /api/companies/{symbol}/profile.
type Profile struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	CEO         string `json:"ceo,omitempty"`
	Employees   int    `json:"employees,omitempty"`
	Country     string `json:"country,omitempty"`
	Exchange    string `json:"exchange,omitempty"`
	Website     string `json:"website,omitempty"`
}

// decodeNameList accepts either a bare JSON array of strings or an object
// holding the array under key.
func decodeNameList(raw json.RawMessage, key string) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var names []string
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &names); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		return normalizeNames(names), nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	inner, ok := wrapped[key]
	if !ok {
		return nil, fmt.Errorf("decode %s: missing %q field", key, key)
	}
	if err := json.Unmarshal(inner, &names); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return normalizeNames(names), nil
}

// normalizeNames trims, drops blanks and duplicates, and orders names
// case-insensitively so select lists are stable between fetches.
func normalizeNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	slices.SortStableFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return out
}
