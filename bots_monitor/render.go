package bots_monitor

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"memescout/internal/clients_api/grok"
	"memescout/internal/filter"
	"memescout/internal/storage"
	"memescout/internal/token"
)

const (
	welcomeTextFmt = "👋 Welcome %s!\n\n" +
		"🚀 <b>Solana Memecoins Analyzer</b>\n\n" +
		"Discover trending memecoins with custom filters:\n" +
		"• Market cap, volume and liquidity thresholds\n" +
		"• Holder estimates and 24h performance\n" +
		"• Live data from DexScreener\n\n" +
		"Choose an option below to get started:"

	helpText = "ℹ️ <b>Help</b>\n\n" +
		"Use the buttons below or these commands:\n\n" +
		"/start - main menu\n" +
		"/search &lt;filters&gt; - search with a filter expression\n" +
		"/presets - list filter presets\n" +
		"/trending - most active tokens right now\n" +
		"/token &lt;address&gt; - look a token up by contract address\n" +
		"/sentiment &lt;address&gt; - community sentiment for a token\n" +
		"/filters - your saved filter\n" +
		"/chart - chart of your last search"

	filterHelpText = "🔍 <b>Filter Help</b>\n\n" +
		"Write filters in plain text, for example:\n\n" +
		"<code>mc &gt; 1m volume &gt; 100k</code>\n" +
		"<code>liquidity &gt; 50k holders &gt; 500</code>\n" +
		"<code>cap &lt; 500k vol &gt; 10k</code>\n\n" +
		"Supported attributes: market cap (mc, cap), 24h volume (vol, volume), " +
		"liquidity (liq, liquidity), holders (holders, users).\n" +
		"Numbers accept k, m and b suffixes.\n\n" +
		"Or use the filter builder for a guided setup."

	aboutText = "🤖 <b>About</b>\n\n" +
		"Solana memecoin discovery bot.\n" +
		"Market data comes from DexScreener, sentiment from X search.\n" +
		"Results are ranked by trading activity, not by shill volume."

	emptyBuilderAlert = "⚠️ Please set at least one filter!"
	copiedAlert       = "Contract address copied to clipboard!"
	errorText         = "❌ An unexpected error occurred. Please try again or use /start to restart."
	fallbackText      = "Please use the menu buttons below or type /start to begin."
	noResultsText     = "😕 No memecoins matched your filters. Try relaxing them."
	noSavedFilterText = "You have no saved filter yet. Run a search and tap 💾 Save Filter."
)

func welcomeText(name string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(welcomeTextFmt, html.EscapeString(name))
}

func filtersMenuText() string {
	return "🔍 <b>Memecoin Filters</b>\n\nPick a preset or build your own:"
}

func builderText(p filter.Predicate) string {
	return "🔧 <b>Filter Builder</b>\n\n" +
		"Current filters:\n<i>" + html.EscapeString(filter.FormatFilters(p)) + "</i>\n\n" +
		"Tap a parameter to adjust it, then hit Search."
}

func paramText(param builderParam) string {
	return fmt.Sprintf("%s\n\nPick a minimum or maximum value:", param.label)
}

func changeEmoji(change float64) string {
	switch {
	case change > 0:
		return "🟢"
	case change < 0:
		return "🔴"
	default:
		return "⚪"
	}
}

// formatTokenList renders one page of results. Numbering restarts on every
// page so the line numbers line up with the buttons underneath.
func formatTokenList(records []token.Record, filterText string, page, totalPages int) string {
	var b strings.Builder
	b.WriteString("🚀 <b>Memecoin Results:</b>\n")
	b.WriteString("<i>" + html.EscapeString(filterText) + "</i>\n\n")

	for i, rec := range records {
		sym := rec.Symbol
		if sym == "" {
			sym = token.ShortAddress(rec.Address)
		}
		fmt.Fprintf(&b, "<code>%2d.</code> <b>%s</b> (%s)\n", i+1,
			html.EscapeString(sym), html.EscapeString(rec.Name))
		fmt.Fprintf(&b, "     💰 MC: $%s | 📊 Vol: $%s\n",
			filter.FormatNumber(rec.MarketCap), filter.FormatNumber(rec.Volume24h))
		fmt.Fprintf(&b, "     💧 Liq: $%s | %s %+.1f%%\n",
			filter.FormatNumber(rec.Liquidity), changeEmoji(rec.PriceChange24h), rec.PriceChange24h)
	}

	if totalPages > 1 {
		fmt.Fprintf(&b, "\nPage %d/%d", page+1, totalPages)
	}
	return b.String()
}

func formatTrendingList(records []token.Record) string {
	var b strings.Builder
	b.WriteString("🔥 <b>Trending Memecoins</b>\n")
	b.WriteString("<i>ranked by trading activity</i>\n\n")

	for i, rec := range records {
		sym := rec.Symbol
		if sym == "" {
			sym = token.ShortAddress(rec.Address)
		}
		fmt.Fprintf(&b, "<code>%2d.</code> <b>%s</b> (%s)\n", i+1,
			html.EscapeString(sym), html.EscapeString(rec.Name))
		fmt.Fprintf(&b, "     💰 MC: $%s | 📊 Vol: $%s\n",
			filter.FormatNumber(rec.MarketCap), filter.FormatNumber(rec.Volume24h))
		fmt.Fprintf(&b, "     💧 Liq: $%s | %s %+.1f%%\n",
			filter.FormatNumber(rec.Liquidity), changeEmoji(rec.PriceChange24h), rec.PriceChange24h)
	}
	return b.String()
}

func formatPrice(price float64) string {
	if price < 0.01 {
		return fmt.Sprintf("%.8f", price)
	}
	return fmt.Sprintf("%.4f", price)
}

// titleCase capitalizes a lowercase id for display, "raydium" reads "Raydium".
func titleCase(id string) string {
	if id == "" {
		return "Unknown"
	}
	return strings.ToUpper(id[:1]) + id[1:]
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func formatTokenDetails(rec token.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🪙 <b>%s (%s)</b>\n\n", html.EscapeString(rec.Name), html.EscapeString(rec.Symbol))
	fmt.Fprintf(&b, "📋 <b>Contract Address:</b>\n<code>%s</code>\n\n", rec.Address)
	fmt.Fprintf(&b, "💰 <b>Market Cap:</b> $%s\n", filter.FormatNumber(rec.MarketCap))
	fmt.Fprintf(&b, "💵 <b>Price:</b> $%s (%s %+.2f%%)\n", formatPrice(rec.PriceUSD),
		changeEmoji(rec.PriceChange24h), rec.PriceChange24h)
	fmt.Fprintf(&b, "📊 <b>24h Volume:</b> $%s\n", filter.FormatNumber(rec.Volume24h))
	fmt.Fprintf(&b, "💧 <b>Liquidity:</b> $%s\n", filter.FormatNumber(rec.Liquidity))
	fmt.Fprintf(&b, "👥 <b>Est. Holders:</b> %s\n", groupThousands(rec.HoldersEstimate))
	fmt.Fprintf(&b, "🔄 <b>DEX:</b> %s\n\n", titleCase(rec.DexID))
	fmt.Fprintf(&b, "⏰ <i>Updated %s</i>", time.Now().UTC().Format("15:04 UTC"))
	return b.String()
}

func sentimentEmoji(sentiment string) string {
	switch strings.ToLower(sentiment) {
	case grok.SentimentBullish:
		return "🟢"
	case grok.SentimentBearish:
		return "🔴"
	default:
		return "⚪"
	}
}

func formatSentiment(rec token.Record, verdict, explanation string, tweetCount int, fromCache bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧠 <b>Sentiment: %s (%s)</b>\n\n", html.EscapeString(rec.Name), html.EscapeString(rec.Symbol))
	fmt.Fprintf(&b, "%s <b>%s</b>\n\n", sentimentEmoji(verdict), html.EscapeString(titleCase(verdict)))
	fmt.Fprintf(&b, "%s\n\n", html.EscapeString(explanation))
	fmt.Fprintf(&b, "📝 Based on %d recent posts", tweetCount)
	if fromCache {
		b.WriteString("\n💾 <i>cached result</i>")
	}
	return b.String()
}

func formatSavedFilter(f *storage.SavedFilter) string {
	rendered := f.Rendered
	if rendered == "" {
		rendered = filter.FormatFilters(filter.DecodePredicate(f.FilterText))
	}
	return "💾 <b>Saved Filter</b>\n\n" +
		"<i>" + html.EscapeString(rendered) + "</i>\n\n" +
		"Saved " + f.CreatedAt.UTC().Format("2006-01-02 15:04 UTC")
}
