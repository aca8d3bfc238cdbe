package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFilters_Empty(t *testing.T) {
	assert.Equal(t, NoFiltersText, FormatFilters(Predicate{}))
}

func TestFormatFilters_FixedClauseOrder(t *testing.T) {
	// Insertion order must not leak into the rendering.
	p := Predicate{}.
		With(AttrLiquidity, Min, 50_000).
		With(AttrHolders, Min, 100).
		With(AttrMarketCap, Max, 10_000_000).
		With(AttrVolume24h, Min, 100_000).
		With(AttrMarketCap, Min, 1_000_000)

	want := "MC ≥ $1.0M | MC ≤ $10.0M | Vol ≥ $100.0K | Holders ≥ 100 | Liquidity ≥ $50.0K"
	assert.Equal(t, want, FormatFilters(p))
}

func TestFormatFilters_HoldersHaveNoDollarSign(t *testing.T) {
	p := Predicate{}.With(AttrHolders, Min, 250).With(AttrHolders, Max, 5_000)
	assert.Equal(t, "Holders ≥ 250 | Holders ≤ 5000", FormatFilters(p))
}

func TestFormatFilters_SmallMoneyValues(t *testing.T) {
	p := Predicate{}.With(AttrLiquidity, Min, 500)
	assert.Equal(t, "Liquidity ≥ $500", FormatFilters(p))
}

func TestFormatFilters_DeterministicForParsedInput(t *testing.T) {
	inputs := []string{
		"100k mc, 10k volume, 100+ users",
		"mc > 1m, vol > 50k",
		"high_mc",
		"",
	}
	for _, input := range inputs {
		first := FormatFilters(Parse(input))
		second := FormatFilters(Parse(input))
		assert.Equal(t, first, second, "rendering of %q must be stable", input)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{1_500_000_000, "1.5B"},
		{2_500_000, "2.5M"},
		{100_000, "100.0K"},
		{1_234.5, "1.2K"},
		{999, "999"},
		{999.9, "999"},
		{0, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.v), "FormatNumber(%v)", tt.v)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		number string
		suffix string
		want   float64
	}{
		{"100", "k", 100_000},
		{"1.5", "m", 1_500_000},
		{"2", "B", 2_000_000_000},
		{"42", "", 42},
		{"10", "x", 10}, // unknown suffix leaves the value alone
		{" 7 ", "K", 7_000},
		{"abc", "k", 0},
		{"", "", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseNumber(tt.number, tt.suffix), "ParseNumber(%q, %q)", tt.number, tt.suffix)
	}
}

func TestPresetCatalog(t *testing.T) {
	entries := Presets()
	require.Len(t, entries, 6)

	wantKeys := []string{"high_mc", "high_vol", "active_users", "small_cap", "mid_cap", "high_liquidity"}
	wantNames := []string{
		"High MC (100k+)",
		"High Vol (10k+)",
		"Active Users (100+ holders)",
		"Small Cap (<1M MC)",
		"Mid Cap (1M-10M MC)",
		"High Liquidity (50k+)",
	}
	for i, e := range entries {
		assert.Equal(t, wantKeys[i], e.Key)
		assert.Equal(t, wantNames[i], e.Name)
		assert.False(t, e.Predicate.Empty(), "preset %s must carry bounds", e.Key)
	}

	midCap, ok := Preset("mid_cap")
	require.True(t, ok)
	minV, _ := midCap.Threshold(AttrMarketCap, Min)
	maxV, _ := midCap.Threshold(AttrMarketCap, Max)
	assert.Equal(t, 1_000_000.0, minV)
	assert.Equal(t, 10_000_000.0, maxV)

	_, ok = Preset("no_such_preset")
	assert.False(t, ok)
	assert.Equal(t, "Unknown Preset", PresetName("no_such_preset"))
	assert.Equal(t, "Small Cap (<1M MC)", PresetName("small_cap"))
}

func TestPresetsReturnsCopy(t *testing.T) {
	entries := Presets()
	entries[0] = PresetEntry{Key: "clobbered"}

	again := Presets()
	assert.Equal(t, "high_mc", again[0].Key)
}
