package screener

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/five82/screener/internal/marketdata"
)

// Page size bounds. Values outside are clamped, never rejected.
const (
	MinPageSize     = 1
	MaxPageSize     = 200
	DefaultPageSize = 50
)

// FilterCriteria is the user's query. Empty strings and nil caps mean unset.
type FilterCriteria struct {
	Sector   string
	Industry string
	MinCap   *int64
	MaxCap   *int64
	Page     int
	PageSize int
}

// DefaultCriteria returns an unfiltered first page of pageSize rows.
func DefaultCriteria(pageSize int) FilterCriteria {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	return FilterCriteria{PageSize: ClampPageSize(pageSize)}
}

// ClampPageSize bounds n to [MinPageSize, MaxPageSize].
func ClampPageSize(n int) int {
	return min(max(n, MinPageSize), MaxPageSize)
}

// Normalized returns a copy with trimmed names, a clamped page size and a
// non-negative page.
func (c FilterCriteria) Normalized() FilterCriteria {
	c.Sector = strings.TrimSpace(c.Sector)
	c.Industry = strings.TrimSpace(c.Industry)
	c.PageSize = ClampPageSize(c.PageSize)
	c.Page = max(c.Page, 0)
	return c
}

// Validate checks the cap invariants. Page size is not validated here because
// it is clamped.
func (c FilterCriteria) Validate() error {
	if c.MinCap != nil && *c.MinCap < 0 {
		return &ValidationError{Field: FieldMinCap, Message: "minimum market cap cannot be negative"}
	}
	if c.MaxCap != nil && *c.MaxCap < 0 {
		return &ValidationError{Field: FieldMaxCap, Message: "maximum market cap cannot be negative"}
	}
	if c.MinCap != nil && c.MaxCap != nil && *c.MinCap > *c.MaxCap {
		return &ValidationError{
			Field: FieldMinCap,
			Message: fmt.Sprintf("minimum market cap (%s) exceeds maximum (%s)",
				FormatMarketCap(float64(*c.MinCap)), FormatMarketCap(float64(*c.MaxCap))),
		}
	}
	return nil
}

// Query converts the criteria into the wire query.
func (c FilterCriteria) Query() marketdata.ScreenerQuery {
	n := c.Normalized()
	return marketdata.ScreenerQuery{
		Sector:   n.Sector,
		Industry: n.Industry,
		MinCap:   n.MinCap,
		MaxCap:   n.MaxCap,
		Page:     n.Page,
		PageSize: n.PageSize,
	}
}

var capSuffixes = map[byte]float64{
	'k': 1e3,
	'm': 1e6,
	'b': 1e9,
	't': 1e12,
}

// ParseCap parses a market-cap input such as "1500000", "1,500,000", "$2.5B"
// or "500m". Blank input returns nil (unset). field names the input in
// validation errors.
func ParseCap(field Field, input string) (*int64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, nil
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, invalidCap(field, input)
	}

	multiplier := 1.0
	if m, ok := capSuffixes[strings.ToLower(s[len(s)-1:])[0]]; ok {
		multiplier = m
		s = strings.TrimSpace(s[:len(s)-1])
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, invalidCap(field, input)
	}
	value *= multiplier
	if value < 0 {
		return nil, &ValidationError{Field: field, Message: fmt.Sprintf("%s cannot be negative", field.Label())}
	}
	if value > math.MaxInt64/2 {
		return nil, &ValidationError{Field: field, Message: fmt.Sprintf("%s is too large", field.Label())}
	}
	n := int64(math.Round(value))
	return &n, nil
}

func invalidCap(field Field, input string) error {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s %q is not a number (try 500M, 2.5B or 1T)", field.Label(), strings.TrimSpace(input)),
	}
}

// ParsePageSize parses a page-size input and clamps it. Blank input keeps
// fallback.
func ParsePageSize(input string, fallback int) (int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return ClampPageSize(fallback), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ValidationError{Field: FieldPageSize, Message: fmt.Sprintf("page size %q is not a whole number", s)}
	}
	return ClampPageSize(n), nil
}
