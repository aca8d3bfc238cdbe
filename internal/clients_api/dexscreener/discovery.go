package dexscreener

// Memecoin discovery on top of the pair endpoints: boosted tokens plus a
// rotation of search terms, deduplicated by token address. The quality
// filtering happens later in the filter engine, this layer only drops
// majors and absurd FDV values.

import (
	"context"
	"strconv"
	"strings"
	"time"

	"memescout/internal/infra/fs"
	"memescout/internal/token"

	"go.uber.org/zap"
)

// defaultSearchTerms is the rotation used when no override is configured.
// Broad on purpose, the dedupe pass collapses the overlap.
var defaultSearchTerms = []string{
	"solana", "pump", "bonk", "dogwifhat", "pepe", "meme", "coin",
	"inu", "shiba", "doge", "elon", "moon", "rocket", "chad", "wojak",
	"token", "sol", "based", "trump", "biden", "cat", "dog", "frog",
}

const (
	// boostedScanLimit caps how many boosted entries get a pair lookup,
	// each lookup is its own rate-limited request.
	boostedScanLimit = 50

	perTermLimit = 30
)

func defaultKnownTokens() []string {
	known := make([]string, len(fs.DefaultKnownTokens))
	copy(known, fs.DefaultKnownTokens)
	return known
}

// SetSearchTerms overrides the discovery term rotation.
func (c *Client) SetSearchTerms(terms []string) {
	if len(terms) == 0 {
		c.searchTerms = defaultSearchTerms
		return
	}
	c.searchTerms = terms
}

// SetKnownTokens overrides the skip list of established symbols.
func (c *Client) SetKnownTokens(symbols []string) {
	c.knownTokens = symbols
}

// SetFDVWindow overrides the accepted FDV range.
func (c *Client) SetFDVWindow(min, max float64) {
	if min >= 0 && max > min {
		c.minFDV = min
		c.maxFDV = max
	}
}

// TrendingPairs collects a broad pair set: boosted tokens first, then the
// term rotation. Pairs are deduplicated by base token address and capped at
// limit.
func (c *Client) TrendingPairs(ctx context.Context, limit int) ([]Pair, error) {
	startTime := time.Now()
	var allPairs []Pair

	boosted, err := c.GetBoostedTokens(ctx)
	if err != nil {
		LogWarn("Failed to fetch boosted tokens, continuing with search terms", zap.Error(err))
	} else {
		scanned := 0
		for _, bt := range boosted {
			if scanned >= boostedScanLimit {
				break
			}
			scanned++
			if bt.ChainID != "solana" || bt.TokenAddress == "" {
				continue
			}
			pair, err := c.GetPairByAddress(ctx, bt.TokenAddress)
			if err != nil {
				LogDebug("Boosted token has no pair", zap.String("address", bt.TokenAddress), zap.Error(err))
				continue
			}
			allPairs = append(allPairs, *pair)
		}
	}

	for _, term := range c.searchTerms {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		pairs, err := c.SearchPairs(ctx, term, perTermLimit)
		if err != nil {
			LogError("Pair search failed for term", zap.String("term", term), zap.Error(err))
			continue
		}

		for _, pair := range pairs {
			symbol := strings.ToLower(pair.BaseToken.Symbol)
			if fs.IsKnownToken(symbol, c.knownTokens) {
				continue
			}
			if pair.FDV < c.minFDV || pair.FDV > c.maxFDV {
				continue
			}
			allPairs = append(allPairs, pair)
		}
	}

	seenAddresses := make(map[string]bool, len(allPairs))
	uniquePairs := make([]Pair, 0, len(allPairs))
	for _, pair := range allPairs {
		address := pair.BaseToken.Address
		if address == "" || seenAddresses[address] {
			continue
		}
		seenAddresses[address] = true
		uniquePairs = append(uniquePairs, pair)
	}

	if limit > 0 && len(uniquePairs) > limit {
		uniquePairs = uniquePairs[:limit]
	}

	LogSuccess("Collected trending pairs",
		zap.Int("pairs", len(uniquePairs)),
		zap.Int64("duration_ms", time.Since(startTime).Milliseconds()))

	return uniquePairs, nil
}

// ParsePair maps a DexScreener pair onto a token record. Holders are not in
// the payload, the estimate is derived from liquidity and volume.
func ParsePair(pair Pair) token.Record {
	liquidityUSD := 0.0
	if pair.Liquidity != nil {
		liquidityUSD = pair.Liquidity.USD
	}
	volume24h := pair.Volume.H24

	holdersEstimate := int(liquidityUSD/1_000 + volume24h/10_000)
	if holdersEstimate < 10 {
		holdersEstimate = 10
	}

	priceUSD := 0.0
	if pair.PriceUsd != "" {
		if parsed, err := strconv.ParseFloat(pair.PriceUsd, 64); err == nil {
			priceUSD = parsed
		}
	}

	marketCap := pair.MarketCap
	if marketCap == 0 {
		marketCap = pair.FDV
	}

	name := pair.BaseToken.Name
	if name == "" {
		name = "Unknown"
	}
	symbol := pair.BaseToken.Symbol
	if symbol == "" {
		symbol = "???"
	}

	createdAt := pair.PairCreatedAt
	if createdAt > 1_000_000_000_000 {
		createdAt /= 1000 // ms to seconds
	}

	return token.Record{
		Address:         pair.BaseToken.Address,
		Name:            name,
		Symbol:          symbol,
		MarketCap:       marketCap,
		Volume24h:       volume24h,
		Liquidity:       liquidityUSD,
		HoldersEstimate: holdersEstimate,
		PriceUSD:        priceUSD,
		PriceChange24h:  pair.PriceChange.H24,
		DexID:           pair.DexID,
		DexURL:          pair.URL,
		PairCreatedAt:   createdAt,
	}
}

// SearchMemecoins returns up to limit discovered tokens as records, ready
// for the filter engine.
func (c *Client) SearchMemecoins(ctx context.Context, limit int) ([]token.Record, error) {
	pairs, err := c.TrendingPairs(ctx, limit)
	if err != nil {
		return nil, err
	}

	records := make([]token.Record, 0, len(pairs))
	for _, pair := range pairs {
		records = append(records, ParsePair(pair))
	}

	return records, nil
}

// GetTokenInfo returns the record for one token address.
func (c *Client) GetTokenInfo(ctx context.Context, address string) (*token.Record, error) {
	pair, err := c.GetPairByAddress(ctx, address)
	if err != nil {
		return nil, err
	}

	record := ParsePair(*pair)
	return &record, nil
}
