package bots_monitor

import (
	"fmt"
	"strconv"
	"strings"

	"memescout/internal/filter"
	"memescout/internal/token"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data values. Prefixed values carry a suffix parsed by the
// callback router.
const (
	cbMenuMain      = "menu_main"
	cbMenuFilters   = "menu_filters"
	cbMenuHelp      = "menu_help"
	cbFilterBuilder = "filter_builder"
	cbBuilderSearch = "builder_search"
	cbBuilderReset  = "builder_reset"
	cbHelpFilters   = "help_filters"
	cbHelpAbout     = "help_about"
	cbBackToResults = "back_to_results"
	cbNoop          = "noop"
	cbSaveFilter    = "save_filter"
	cbSavedApply    = "saved_apply"
	cbSavedDelete   = "saved_delete"

	prefixPreset    = "filter_"
	prefixBuilder   = "builder_"
	prefixSet       = "set_"
	prefixClear     = "clear_"
	prefixPage      = "page_"
	prefixDetails   = "memecoin_details_"
	prefixCopyCA    = "copy_ca_"
	prefixSentiment = "sentiment_"
)

// builderParam ties a callback parameter key to its display label and the
// filter attribute it drives.
type builderParam struct {
	key   string
	label string
	attr  filter.Attribute
}

var builderParams = []builderParam{
	{"mc", "💰 Market Cap", filter.AttrMarketCap},
	{"volume", "📊 24h Volume", filter.AttrVolume24h},
	{"liquidity", "💧 Liquidity", filter.AttrLiquidity},
	{"holders", "👥 Holders", filter.AttrHolders},
}

func paramByKey(key string) (builderParam, bool) {
	for _, p := range builderParams {
		if p.key == key {
			return p, true
		}
	}
	return builderParam{}, false
}

// paramValues holds the preset buttons offered per parameter.
var paramValues = map[string]struct {
	minVals []float64
	maxVals []float64
}{
	"mc":        {minVals: []float64{10_000, 100_000, 1_000_000, 10_000_000}, maxVals: []float64{1_000_000, 100_000_000}},
	"volume":    {minVals: []float64{1_000, 10_000, 50_000, 100_000}, maxVals: []float64{1_000_000, 10_000_000}},
	"liquidity": {minVals: []float64{5_000, 10_000, 50_000, 100_000}, maxVals: []float64{500_000, 1_000_000}},
	"holders":   {minVals: []float64{50, 100, 500, 1_000}, maxVals: []float64{5_000, 10_000}},
}

var presetEmoji = map[string]string{
	"high_mc":        "🚀",
	"high_vol":       "📈",
	"active_users":   "👥",
	"small_cap":      "💎",
	"mid_cap":        "🏆",
	"high_liquidity": "💧",
}

func button(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

func row(buttons ...tgbotapi.InlineKeyboardButton) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(buttons...)
}

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(button("🔍 Memecoin Filters", cbMenuFilters)),
		row(button("ℹ️ Help", cbMenuHelp)),
	)
}

func filtersMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		row(button("🔧 Build Custom Filter", cbFilterBuilder)),
	}
	for _, e := range filter.Presets() {
		text := e.Name
		if emoji, ok := presetEmoji[e.Key]; ok {
			text = emoji + " " + text
		}
		rows = append(rows, row(button(text, prefixPreset+e.Key)))
	}
	rows = append(rows, row(button("🔙 Back to Main Menu", cbMenuMain)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// builderKeyboard renders the current predicate on the parameter buttons.
func builderKeyboard(p filter.Predicate) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(builderParams)+2)
	for _, param := range builderParams {
		rows = append(rows, row(button(builderParamText(param, p), prefixBuilder+param.key)))
	}
	rows = append(rows,
		row(button("🔍 Search", cbBuilderSearch), button("🔄 Reset All", cbBuilderReset)),
		row(button("🔙 Back to Filters", cbMenuFilters)),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func builderParamText(param builderParam, p filter.Predicate) string {
	parts := make([]string, 0, 2)
	if v, ok := p.Threshold(param.attr, filter.Min); ok {
		parts = append(parts, "≥"+builderValueText(param, v))
	}
	if v, ok := p.Threshold(param.attr, filter.Max); ok {
		parts = append(parts, "≤"+builderValueText(param, v))
	}
	if len(parts) == 0 {
		return param.label + ": Any"
	}
	return param.label + ": " + strings.Join(parts, " & ")
}

func builderValueText(param builderParam, v float64) string {
	if param.attr == filter.AttrHolders {
		return strconv.Itoa(int(v))
	}
	return "$" + filter.FormatNumber(v)
}

// paramKeyboard offers the preset min/max values for one parameter.
func paramKeyboard(param builderParam) tgbotapi.InlineKeyboardMarkup {
	values := paramValues[param.key]

	var rows [][]tgbotapi.InlineKeyboardButton
	rows = append(rows, valueRows(param, "min", values.minVals)...)
	rows = append(rows, valueRows(param, "max", values.maxVals)...)
	rows = append(rows,
		row(button("❌ Clear (Any)", prefixClear+param.key)),
		row(button("🔙 Back to Builder", cbFilterBuilder)),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// valueRows lays the value buttons out two per row.
func valueRows(param builderParam, kind string, values []float64) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	var current []tgbotapi.InlineKeyboardButton

	label := "Min"
	if kind == "max" {
		label = "Max"
	}

	for _, v := range values {
		text := fmt.Sprintf("%s: %s", label, filter.FormatNumber(v))
		data := fmt.Sprintf("%s%s_%s_%d", prefixSet, param.key, kind, int64(v))
		current = append(current, button(text, data))
		if len(current) == 2 {
			rows = append(rows, row(current...))
			current = nil
		}
	}
	if len(current) > 0 {
		rows = append(rows, row(current...))
	}
	return rows
}

// resultsKeyboard lists one details button per record plus pagination.
// canSave adds the saved-filter shortcut under the list.
func resultsKeyboard(records []token.Record, page, totalPages int, canSave bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, rec := range records {
		text := fmt.Sprintf("📊 %s ($%s)", rec.Symbol, filter.FormatNumber(rec.MarketCap))
		rows = append(rows, row(button(text, prefixDetails+rec.Address)))
	}

	if totalPages > 1 {
		var pager []tgbotapi.InlineKeyboardButton
		if page > 0 {
			pager = append(pager, button("⬅️ Previous", prefixPage+strconv.Itoa(page-1)))
		}
		pager = append(pager, button(fmt.Sprintf("Page %d/%d", page+1, totalPages), cbNoop))
		if page < totalPages-1 {
			pager = append(pager, button("➡️ Next", prefixPage+strconv.Itoa(page+1)))
		}
		rows = append(rows, row(pager...))
	}

	if canSave {
		rows = append(rows, row(button("💾 Save Filter", cbSaveFilter)))
	}
	rows = append(rows, row(button("🔙 Back to Filters", cbMenuFilters)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// detailsKeyboard links out to the DEX and offers the per-token actions.
func detailsKeyboard(rec token.Record, withSentiment bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if rec.DexURL != "" {
		rows = append(rows, row(tgbotapi.NewInlineKeyboardButtonURL("📈 View on DexScreener", rec.DexURL)))
	}
	if withSentiment {
		rows = append(rows, row(button("🧠 Sentiment Analysis", prefixSentiment+rec.Address)))
	}
	rows = append(rows,
		row(button("📋 Copy Contract Address", prefixCopyCA+rec.Address)),
		row(button("🔙 Back to Results", cbBackToResults)),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func helpKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(button("🔍 Filter Help", cbHelpFilters)),
		row(button("🤖 About Bot", cbHelpAbout)),
		row(button("🔙 Back to Main Menu", cbMenuMain)),
	)
}

func savedFilterKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(button("🔍 Apply", cbSavedApply), button("🗑 Delete", cbSavedDelete)),
		row(button("🔙 Back to Main Menu", cbMenuMain)),
	)
}

func backKeyboard(data string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(row(button("🔙 Back", data)))
}
