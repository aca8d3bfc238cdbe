package filter

import (
	"math"
	"sort"

	"memescout/internal/token"
)

func attributeValue(r token.Record, attr Attribute) float64 {
	switch attr {
	case AttrMarketCap:
		return r.MarketCap
	case AttrVolume24h:
		return r.Volume24h
	case AttrHolders:
		return float64(r.HoldersEstimate)
	case AttrLiquidity:
		return r.Liquidity
	}
	return 0
}

// Matches reports whether rec satisfies every bound in p. Comparisons are
// inclusive on both sides; attributes the record does not carry read as zero.
// The empty predicate matches everything.
func Matches(p Predicate, rec token.Record) bool {
	for k, threshold := range p.bounds {
		v := attributeValue(rec, k.attr)
		if k.bound == Min && v < threshold {
			return false
		}
		if k.bound == Max && v > threshold {
			return false
		}
	}
	return true
}

// ActivityScore is the ranking heuristic for discovery results: 24h volume
// scaled up by price movement and halved for thin liquidity. It surfaces
// newly active tokens ahead of stale high-cap ones; it is a heuristic, not an
// ordering guarantee.
func ActivityScore(rec token.Record) float64 {
	liquidityMult := 0.5
	if rec.Liquidity > 10_000 {
		liquidityMult = 1.0
	}
	return rec.Volume24h * (1 + math.Abs(rec.PriceChange24h)/100) * liquidityMult
}

// FilterAndRank keeps the records matching p, ordered by descending activity
// score. The sort is stable: records with equal scores keep their input
// order. The input slice is never mutated.
func FilterAndRank(p Predicate, records []token.Record) []token.Record {
	matched := make([]token.Record, 0, len(records))
	for _, r := range records {
		if Matches(p, r) {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return ActivityScore(matched[i]) > ActivityScore(matched[j])
	})

	return matched
}
