package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"memescout/internal/token"
)

func TestMatches_EmptyPredicateMatchesEverything(t *testing.T) {
	records := []token.Record{
		{},
		{Address: "So11111111111111111111111111111111111111112", MarketCap: 5e6},
		{MarketCap: -1, Volume24h: -1},
	}
	for _, r := range records {
		assert.True(t, Matches(Predicate{}, r))
	}
}

func TestMatches_MinBoundInclusive(t *testing.T) {
	p := Predicate{}.With(AttrMarketCap, Min, 100_000)

	assert.True(t, Matches(p, token.Record{MarketCap: 100_000}), "value equal to min must match")
	assert.True(t, Matches(p, token.Record{MarketCap: 100_001}))
	assert.False(t, Matches(p, token.Record{MarketCap: 99_999}))
}

func TestMatches_MaxBoundInclusive(t *testing.T) {
	p := Predicate{}.With(AttrLiquidity, Max, 50_000)

	assert.True(t, Matches(p, token.Record{Liquidity: 50_000}), "value equal to max must match")
	assert.True(t, Matches(p, token.Record{Liquidity: 49_999}))
	assert.False(t, Matches(p, token.Record{Liquidity: 50_001}))
}

func TestMatches_MissingValuesReadAsZero(t *testing.T) {
	// A zero-value record fails any positive min bound but passes max bounds.
	minP := Predicate{}.With(AttrVolume24h, Min, 1)
	maxP := Predicate{}.With(AttrVolume24h, Max, 1)

	assert.False(t, Matches(minP, token.Record{}))
	assert.True(t, Matches(maxP, token.Record{}))
}

func TestMatches_AllBoundsMustHold(t *testing.T) {
	p := Predicate{}.
		With(AttrMarketCap, Min, 1_000_000).
		With(AttrMarketCap, Max, 10_000_000).
		With(AttrHolders, Min, 100)

	assert.True(t, Matches(p, token.Record{MarketCap: 5_000_000, HoldersEstimate: 150}))
	assert.False(t, Matches(p, token.Record{MarketCap: 5_000_000, HoldersEstimate: 99}), "holders below min")
	assert.False(t, Matches(p, token.Record{MarketCap: 11_000_000, HoldersEstimate: 150}), "mc above max")
}

func TestMatches_ContradictoryBoundsMatchNothing(t *testing.T) {
	p := Predicate{}.
		With(AttrMarketCap, Min, 10_000_000).
		With(AttrMarketCap, Max, 1_000)

	for _, mc := range []float64{0, 1_000, 500_000, 10_000_000, 1e9} {
		assert.False(t, Matches(p, token.Record{MarketCap: mc}))
	}
}

func TestActivityScore(t *testing.T) {
	// Thin liquidity halves the score.
	thin := token.Record{Volume24h: 1_000, Liquidity: 5_000}
	deep := token.Record{Volume24h: 1_000, Liquidity: 20_000}
	assert.Equal(t, 500.0, ActivityScore(thin))
	assert.Equal(t, 1_000.0, ActivityScore(deep))

	// The 10k liquidity threshold is exclusive.
	edge := token.Record{Volume24h: 1_000, Liquidity: 10_000}
	assert.Equal(t, 500.0, ActivityScore(edge))

	// Price movement scales in either direction.
	up := token.Record{Volume24h: 1_000, Liquidity: 20_000, PriceChange24h: 50}
	down := token.Record{Volume24h: 1_000, Liquidity: 20_000, PriceChange24h: -50}
	assert.Equal(t, 1_500.0, ActivityScore(up))
	assert.Equal(t, 1_500.0, ActivityScore(down))
}

func TestFilterAndRank_ReturnsOnlyMatches(t *testing.T) {
	p := Predicate{}.With(AttrVolume24h, Min, 1_000)
	records := []token.Record{
		{Address: "a", Volume24h: 5_000, Liquidity: 20_000},
		{Address: "b", Volume24h: 500, Liquidity: 20_000},
		{Address: "c", Volume24h: 1_000, Liquidity: 20_000},
	}

	got := FilterAndRank(p, records)

	addrs := make([]string, 0, len(got))
	for _, r := range got {
		assert.True(t, Matches(p, r))
		addrs = append(addrs, r.Address)
	}
	assert.Equal(t, []string{"a", "c"}, addrs)
}

func TestFilterAndRank_OrdersByActivityScore(t *testing.T) {
	records := []token.Record{
		{Address: "quiet", Volume24h: 1_000, Liquidity: 20_000},                      // score 1000
		{Address: "mover", Volume24h: 1_000, Liquidity: 20_000, PriceChange24h: 100}, // score 2000
		{Address: "thin", Volume24h: 3_000, Liquidity: 5_000},                        // score 1500
	}

	got := FilterAndRank(Predicate{}, records)

	addrs := []string{got[0].Address, got[1].Address, got[2].Address}
	assert.Equal(t, []string{"mover", "thin", "quiet"}, addrs)
}

func TestFilterAndRank_StableOnEqualScores(t *testing.T) {
	records := []token.Record{
		{Address: "first", Volume24h: 1_000, Liquidity: 20_000},
		{Address: "second", Volume24h: 1_000, Liquidity: 20_000},
		{Address: "third", Volume24h: 1_000, Liquidity: 20_000},
	}

	got := FilterAndRank(Predicate{}, records)

	addrs := []string{got[0].Address, got[1].Address, got[2].Address}
	assert.Equal(t, []string{"first", "second", "third"}, addrs, "ties must keep input order")
}

func TestFilterAndRank_DoesNotMutateInput(t *testing.T) {
	records := []token.Record{
		{Address: "low", Volume24h: 100, Liquidity: 20_000},
		{Address: "high", Volume24h: 9_000, Liquidity: 20_000},
	}

	FilterAndRank(Predicate{}, records)

	assert.Equal(t, "low", records[0].Address)
	assert.Equal(t, "high", records[1].Address)
}
