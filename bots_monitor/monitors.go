package bots_monitor

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"memescout/internal/clients_api/dexscreener"
	"memescout/internal/filter"
	"memescout/internal/infra/log"
	"memescout/internal/storage"
	"memescout/internal/token"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	// defaultBoostedCooldown keeps one token from flooding the broadcast chat.
	defaultBoostedCooldown = 2 * time.Hour

	// boostedLookupLimit caps pair lookups per sweep, the boosts endpoint can
	// list far more tokens than are worth resolving.
	boostedLookupLimit = 15
)

// BoostedSource is the slice of the DexScreener client the boosted tokens
// monitor needs.
type BoostedSource interface {
	GetBoostedTokens(ctx context.Context) ([]dexscreener.BoostedToken, error)
	GetPairByAddress(ctx context.Context, address string) (*dexscreener.Pair, error)
}

// RunBoostedTokensMonitor watches the DexScreener boost listings and pushes
// an alert to chatID for every Solana token that passes the broadcast filter.
// A non-positive cooldown falls back to the 2h default. Runs one sweep
// immediately, then on every tick until ctx is cancelled.
func RunBoostedTokensMonitor(ctx context.Context, api Sender, source BoostedSource, chatID int64, broadcast filter.Predicate, interval, cooldown time.Duration) {
	if chatID == 0 {
		log.LogWarn("Broadcast chat ID is empty, boosted tokens monitor not started")
		return
	}
	if cooldown <= 0 {
		cooldown = defaultBoostedCooldown
	}

	log.LogInfo("Starting boosted tokens monitor",
		zap.Int64("chat_id", chatID),
		zap.Duration("interval", interval),
		zap.Duration("cooldown", cooldown),
		zap.String("filters", filter.FormatFilters(broadcast)))

	sent := make(map[string]time.Time)

	checkBoostedTokens(ctx, api, source, chatID, broadcast, cooldown, sent)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.LogInfo("Boosted tokens monitor stopped")
			return
		case <-ticker.C:
			checkBoostedTokens(ctx, api, source, chatID, broadcast, cooldown, sent)
		}
	}
}

func checkBoostedTokens(ctx context.Context, api Sender, source BoostedSource, chatID int64, broadcast filter.Predicate, cooldown time.Duration, sent map[string]time.Time) {
	boosted, err := source.GetBoostedTokens(ctx)
	if err != nil {
		log.LogError("Failed to fetch boosted tokens", zap.Error(err))
		return
	}

	now := time.Now()
	lookups := 0
	alerts := 0

	for _, bt := range boosted {
		if bt.ChainID != "solana" || bt.TokenAddress == "" {
			continue
		}
		if last, ok := sent[bt.TokenAddress]; ok && now.Sub(last) < cooldown {
			continue
		}
		if lookups >= boostedLookupLimit {
			break
		}
		lookups++

		pair, err := source.GetPairByAddress(ctx, bt.TokenAddress)
		if err != nil {
			if !errors.Is(err, dexscreener.ErrPairNotFound) {
				log.LogWarn("Boosted pair lookup failed",
					zap.String("address", bt.TokenAddress),
					zap.Error(err))
			}
			continue
		}

		rec := dexscreener.ParsePair(*pair)
		if !filter.Matches(broadcast, rec) {
			continue
		}

		sent[bt.TokenAddress] = now
		alerts++

		msg := tgbotapi.NewMessage(chatID, formatBoostedAlert(rec, bt))
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if rec.DexURL != "" {
			msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
				row(tgbotapi.NewInlineKeyboardButtonURL("📈 View on DexScreener", rec.DexURL)))
		}
		if _, err := api.Send(msg); err != nil {
			log.LogError("Failed to send boosted token alert",
				zap.Int64("chat_id", chatID),
				zap.String("symbol", rec.Symbol),
				zap.Error(err))
		}
	}

	// Drop stale cooldown entries so the map does not grow without bound.
	for addr, last := range sent {
		if now.Sub(last) > 2*cooldown {
			delete(sent, addr)
		}
	}

	log.LogInfo("Boosted tokens sweep finished",
		zap.Int("listed", len(boosted)),
		zap.Int("lookups", lookups),
		zap.Int("alerts", alerts))
}

func formatBoostedAlert(rec token.Record, bt dexscreener.BoostedToken) string {
	var b strings.Builder
	b.WriteString("🔥 <b>Boosted Token Alert</b>\n\n")
	fmt.Fprintf(&b, "🪙 <b>%s (%s)</b>\n", html.EscapeString(rec.Name), html.EscapeString(rec.Symbol))
	fmt.Fprintf(&b, "📋 <code>%s</code>\n\n", rec.Address)
	fmt.Fprintf(&b, "💰 MC: $%s | 📊 Vol: $%s\n",
		filter.FormatNumber(rec.MarketCap), filter.FormatNumber(rec.Volume24h))
	fmt.Fprintf(&b, "💧 Liq: $%s | %s %+.1f%%\n",
		filter.FormatNumber(rec.Liquidity), changeEmoji(rec.PriceChange24h), rec.PriceChange24h)
	if bt.TotalAmount > 0 {
		fmt.Fprintf(&b, "🚀 Boost: %s points\n", filter.FormatNumber(bt.TotalAmount))
	}
	return b.String()
}

// RunCacheCleanupMonitor evicts stale rows from both caches on a fixed
// schedule. Each store keeps its own retention window. Runs one sweep
// immediately, then on every tick until ctx is cancelled.
func RunCacheCleanupMonitor(ctx context.Context, coins storage.MemecoinCacheStore, sentiments storage.SentimentCacheStore, interval, coinMaxAge, sentimentMaxAge time.Duration) {
	log.LogInfo("Starting cache cleanup monitor",
		zap.Duration("interval", interval),
		zap.Duration("coin_max_age", coinMaxAge),
		zap.Duration("sentiment_max_age", sentimentMaxAge))

	cleanupCaches(ctx, coins, sentiments, coinMaxAge, sentimentMaxAge)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.LogInfo("Cache cleanup monitor stopped")
			return
		case <-ticker.C:
			cleanupCaches(ctx, coins, sentiments, coinMaxAge, sentimentMaxAge)
		}
	}
}

func cleanupCaches(ctx context.Context, coins storage.MemecoinCacheStore, sentiments storage.SentimentCacheStore, coinMaxAge, sentimentMaxAge time.Duration) {
	now := time.Now()

	if coins != nil {
		removed, err := coins.DeleteOlderThan(ctx, now.Add(-coinMaxAge))
		if err != nil {
			log.LogError("Memecoin cache cleanup failed", zap.Error(err))
		} else if removed > 0 {
			log.LogInfo("Evicted stale memecoin rows", zap.Int64("removed", removed))
		}
	}

	if sentiments != nil {
		removed, err := sentiments.DeleteOlderThan(ctx, now.Add(-sentimentMaxAge))
		if err != nil {
			log.LogError("Sentiment cache cleanup failed", zap.Error(err))
		} else if removed > 0 {
			log.LogInfo("Evicted stale sentiment rows", zap.Int64("removed", removed))
		}
	}
}
