package filter

// PresetEntry pairs a stable preset key with its display name and predicate.
type PresetEntry struct {
	Key       string
	Name      string
	Predicate Predicate
}

// presetCatalog is fixed at process start and never mutated. Order here is
// the order presets are listed in menus.
var presetCatalog = []PresetEntry{
	{Key: "high_mc", Name: "High MC (100k+)", Predicate: Predicate{}.With(AttrMarketCap, Min, 100_000)},
	{Key: "high_vol", Name: "High Vol (10k+)", Predicate: Predicate{}.With(AttrVolume24h, Min, 10_000)},
	{Key: "active_users", Name: "Active Users (100+ holders)", Predicate: Predicate{}.With(AttrHolders, Min, 100)},
	{Key: "small_cap", Name: "Small Cap (<1M MC)", Predicate: Predicate{}.With(AttrMarketCap, Max, 1_000_000)},
	{Key: "mid_cap", Name: "Mid Cap (1M-10M MC)", Predicate: Predicate{}.With(AttrMarketCap, Min, 1_000_000).With(AttrMarketCap, Max, 10_000_000)},
	{Key: "high_liquidity", Name: "High Liquidity (50k+)", Predicate: Predicate{}.With(AttrLiquidity, Min, 50_000)},
}

var presetIndex = func() map[string]PresetEntry {
	idx := make(map[string]PresetEntry, len(presetCatalog))
	for _, e := range presetCatalog {
		idx[e.Key] = e
	}
	return idx
}()

// Preset returns the predicate registered under key.
func Preset(key string) (Predicate, bool) {
	e, ok := presetIndex[key]
	if !ok {
		return Predicate{}, false
	}
	return e.Predicate, true
}

// PresetName returns the display name for key, or "Unknown Preset" when the
// key is not in the catalog.
func PresetName(key string) string {
	if e, ok := presetIndex[key]; ok {
		return e.Name
	}
	return "Unknown Preset"
}

// Presets lists the catalog in its fixed order.
func Presets() []PresetEntry {
	out := make([]PresetEntry, len(presetCatalog))
	copy(out, presetCatalog)
	return out
}
