package screener

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

const placeholder = "—"

// FormatMarketCap renders a market cap with a magnitude suffix. Values at a
// threshold take the larger suffix; below a million the whole-dollar amount is
// shown with thousands separators.
func FormatMarketCap(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return placeholder
	}
	switch abs := math.Abs(value); {
	case abs >= 1e12:
		return fmt.Sprintf("$%.2fT", value/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("$%.2fB", value/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("$%.2fM", value/1e6)
	default:
		return "$" + humanize.Comma(int64(math.Round(value)))
	}
}

// FormatCapInput renders an optional cap for an input field.
func FormatCapInput(v *int64) string {
	if v == nil {
		return ""
	}
	return FormatMarketCap(float64(*v))
}

// FormatPrice renders an optional share price.
func FormatPrice(price *float64) string {
	if price == nil || math.IsNaN(*price) || math.IsInf(*price, 0) {
		return placeholder
	}
	return "$" + humanize.FormatFloat("#,###.##", *price)
}
