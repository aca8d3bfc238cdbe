package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseNumber converts a decimal string plus a magnitude suffix into a value.
// Suffixes k, m and b (case-insensitive) multiply by 1e3, 1e6 and 1e9; an
// empty or unknown suffix leaves the number as is. Invalid decimals come back
// as 0.0 rather than an error, so callers must treat zero as "absent".
func ParseNumber(number, suffix string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil {
		return 0.0
	}
	switch strings.ToLower(suffix) {
	case "k":
		return v * 1_000
	case "m":
		return v * 1_000_000
	case "b":
		return v * 1_000_000_000
	}
	return v
}

// FormatNumber renders a value in compact K/M/B notation: one decimal above a
// thousand, truncated integer below.
func FormatNumber(v float64) string {
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", v/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return strconv.Itoa(int(v))
	}
}
