package filter

import (
	"regexp"
	"strings"
)

// Three grammars are tried in a fixed priority order, first non-empty result
// wins: preset key, then the simple "value before label" format, then the
// comparator "label op value" format. Nothing here ever returns an error;
// unparseable input degrades to the empty predicate.

// Simple format: "<number><suffix>? <label>", one clause per comma.
// Only ever sets min bounds.
var simplePatterns = []struct {
	attr Attribute
	re   *regexp.Regexp
}{
	{AttrMarketCap, regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*([kmb]?)\s*(?:market\s*cap|mc)`)},
	{AttrVolume24h, regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*([kmb]?)\s*(?:volume|vol)`)},
	{AttrHolders, regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*([kmb]?)\s*\+?\s*(?:holders?|users?)`)},
	{AttrLiquidity, regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*([kmb]?)\s*(?:liquidity|liq)`)},
}

// Comparator format: "<label> <op> <number><suffix>?". The operator pattern is
// searched separately; the first operator found for an attribute decides the
// bound kind for all of that attribute's matches.
var comparatorPatterns = []struct {
	attr     Attribute
	value    *regexp.Regexp
	operator *regexp.Regexp
}{
	{
		AttrMarketCap,
		regexp.MustCompile(`(?:market\s*cap|mc)\s*[><=]+\s*([0-9]+(?:\.[0-9]+)?)\s*([kmb]?)`),
		regexp.MustCompile(`(?:market\s*cap|mc)\s*([><=]+)`),
	},
	{
		AttrVolume24h,
		regexp.MustCompile(`(?:volume|vol)\s*[><=]+\s*([0-9]+(?:\.[0-9]+)?)\s*([kmb]?)`),
		regexp.MustCompile(`(?:volume|vol)\s*([><=]+)`),
	},
	{
		AttrHolders,
		regexp.MustCompile(`(?:holders?|users?)\s*[><=]+\s*([0-9]+(?:\.[0-9]+)?)\s*([kmb]?)`),
		regexp.MustCompile(`(?:holders?|users?)\s*([><=]+)`),
	},
	{
		AttrLiquidity,
		regexp.MustCompile(`(?:liquidity|liq)\s*[><=]+\s*([0-9]+(?:\.[0-9]+)?)\s*([kmb]?)`),
		regexp.MustCompile(`(?:liquidity|liq)\s*([><=]+)`),
	},
}

// Parse converts user text into a predicate. Empty or unrecognized input
// yields the empty predicate, never an error; callers tell "no filters" from
// "nothing matched" by checking Predicate.Empty.
func Parse(text string) Predicate {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Predicate{}
	}

	if p, ok := Preset(normalizePresetKey(trimmed)); ok {
		return p
	}

	if p := parseSimple(trimmed); !p.Empty() {
		return p
	}

	return parseComparator(trimmed)
}

// normalizePresetKey folds user spelling variants ("High MC", "high-mc") onto
// catalog keys.
func normalizePresetKey(text string) string {
	key := strings.ToLower(text)
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	return key
}

func parseSimple(text string) Predicate {
	bounds := make(map[boundKey]float64)

	for _, clause := range strings.Split(text, ",") {
		clause = strings.ToLower(strings.TrimSpace(clause))
		for _, sp := range simplePatterns {
			m := sp.re.FindStringSubmatch(clause)
			if m == nil {
				continue
			}
			bounds[boundKey{sp.attr, Min}] = ParseNumber(m[1], m[2])
			break // first attribute pattern wins the clause
		}
	}

	if len(bounds) == 0 {
		return Predicate{}
	}
	return Predicate{bounds: bounds}
}

func parseComparator(text string) Predicate {
	lowered := strings.ToLower(text)
	bounds := make(map[boundKey]float64)

	for _, cp := range comparatorPatterns {
		matches := cp.value.FindAllStringSubmatch(lowered, -1)
		if len(matches) == 0 {
			continue
		}

		bound := Min
		if om := cp.operator.FindStringSubmatch(lowered); om != nil {
			bound = boundFromOperator(om[1])
		}

		for _, m := range matches {
			bounds[boundKey{cp.attr, bound}] = ParseNumber(m[1], m[2])
		}
	}

	if len(bounds) == 0 {
		return Predicate{}
	}
	return Predicate{bounds: bounds}
}

// boundFromOperator: anything with ">" is a lower bound, anything with "<" an
// upper bound, a bare "=" defaults to a lower bound.
func boundFromOperator(op string) Bound {
	if strings.Contains(op, ">") {
		return Min
	}
	if strings.Contains(op, "<") {
		return Max
	}
	return Min
}
