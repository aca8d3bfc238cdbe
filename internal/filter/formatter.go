package filter

import (
	"fmt"
	"strings"
)

// NoFiltersText is what an empty predicate renders as.
const NoFiltersText = "No filters applied"

// FormatFilters renders a predicate for display, one clause per bound in the
// fixed attribute order, min before max, joined with " | ". Money values get
// a dollar sign and K/M/B notation; holder counts stay plain integers.
// Rendering is deterministic for a given predicate.
func FormatFilters(p Predicate) string {
	if p.Empty() {
		return NoFiltersText
	}

	parts := make([]string, 0, p.Len())
	for _, attr := range attributeOrder {
		for _, bound := range [...]Bound{Min, Max} {
			v, ok := p.Threshold(attr, bound)
			if !ok {
				continue
			}
			parts = append(parts, formatClause(attr, bound, v))
		}
	}

	return strings.Join(parts, " | ")
}

func formatClause(attr Attribute, bound Bound, v float64) string {
	op := "≥"
	if bound == Max {
		op = "≤"
	}
	if attr == AttrHolders {
		return fmt.Sprintf("%s %s %d", displayLabel(attr), op, int(v))
	}
	return fmt.Sprintf("%s %s $%s", displayLabel(attr), op, FormatNumber(v))
}

func displayLabel(attr Attribute) string {
	switch attr {
	case AttrMarketCap:
		return "MC"
	case AttrVolume24h:
		return "Vol"
	case AttrHolders:
		return "Holders"
	case AttrLiquidity:
		return "Liquidity"
	}
	return "?"
}
