package dexscreener

// Wire types and endpoint wrappers for the pair endpoints:
//   GET /latest/dex/search?q=<term>        - pair search
//   GET /latest/dex/pairs/solana/<address> - pair lookup by token address
//   GET /token-boosts/top/v1               - currently boosted tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

// ErrPairNotFound is returned when no pair exists for an address.
var ErrPairNotFound = errors.New("pair not found")

// solanaDexWhitelist - discovery only trusts the big Solana DEXes.
var solanaDexWhitelist = map[string]bool{
	"raydium": true,
	"orca":    true,
	"serum":   true,
}

// BaseToken identifies one side of a trading pair.
type BaseToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// PairVolume holds traded volume per window in USD.
type PairVolume struct {
	H24 float64 `json:"h24"`
	H6  float64 `json:"h6"`
	H1  float64 `json:"h1"`
	M5  float64 `json:"m5"`
}

// PairPriceChange holds price change per window in percent.
type PairPriceChange struct {
	H24 float64 `json:"h24"`
	H6  float64 `json:"h6"`
	H1  float64 `json:"h1"`
	M5  float64 `json:"m5"`
}

// PairLiquidity holds pooled liquidity.
type PairLiquidity struct {
	USD   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

// Pair is one trading pair as DexScreener reports it.
type Pair struct {
	ChainID       string          `json:"chainId"`
	DexID         string          `json:"dexId"`
	URL           string          `json:"url"`
	PairAddress   string          `json:"pairAddress"`
	BaseToken     BaseToken       `json:"baseToken"`
	QuoteToken    BaseToken       `json:"quoteToken"`
	PriceNative   string          `json:"priceNative"`
	PriceUsd      string          `json:"priceUsd"`
	Volume        PairVolume      `json:"volume"`
	PriceChange   PairPriceChange `json:"priceChange"`
	Liquidity     *PairLiquidity  `json:"liquidity"`
	FDV           float64         `json:"fdv"`
	MarketCap     float64         `json:"marketCap"`
	PairCreatedAt int64           `json:"pairCreatedAt"` // ms epoch
}

// SearchResponse is the envelope of the search and pairs endpoints.
type SearchResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}

// BoostedToken is one entry of the boosted tokens endpoint. The endpoint
// returns a bare JSON array.
type BoostedToken struct {
	URL          string  `json:"url"`
	ChainID      string  `json:"chainId"`
	TokenAddress string  `json:"tokenAddress"`
	Amount       float64 `json:"amount"`
	TotalAmount  float64 `json:"totalAmount"`
	Description  string  `json:"description"`
}

// SearchPairs searches pairs by free-text query and keeps only Solana pairs
// on whitelisted DEXes.
func (c *Client) SearchPairs(ctx context.Context, query string, limit int) ([]Pair, error) {
	endpoint := "/latest/dex/search?q=" + url.QueryEscape(query)

	respBody, err := c.MakeRequest(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search pairs: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(respBody, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search response: %w", err)
	}

	solanaPairs := make([]Pair, 0, len(searchResp.Pairs))
	for _, pair := range searchResp.Pairs {
		if pair.ChainID != "solana" || !solanaDexWhitelist[pair.DexID] {
			continue
		}
		solanaPairs = append(solanaPairs, pair)
	}

	if limit > 0 && len(solanaPairs) > limit {
		solanaPairs = solanaPairs[:limit]
	}

	LogDebug("Pair search finished",
		zap.String("query", query),
		zap.Int("total", len(searchResp.Pairs)),
		zap.Int("solana", len(solanaPairs)))

	return solanaPairs, nil
}

// GetPairByAddress looks up the pair for one Solana token address.
// Returns ErrPairNotFound when DexScreener knows nothing about it.
func (c *Client) GetPairByAddress(ctx context.Context, address string) (*Pair, error) {
	endpoint := "/latest/dex/pairs/solana/" + url.PathEscape(address)

	respBody, err := c.MakeRequest(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get pair by address: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(respBody, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pairs response: %w", err)
	}

	if len(searchResp.Pairs) == 0 {
		return nil, ErrPairNotFound
	}

	return &searchResp.Pairs[0], nil
}

// GetBoostedTokens returns the currently boosted tokens across all chains.
func (c *Client) GetBoostedTokens(ctx context.Context) ([]BoostedToken, error) {
	respBody, err := c.MakeRequest(ctx, "GET", "/token-boosts/top/v1", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get boosted tokens: %w", err)
	}

	var boosted []BoostedToken
	if err := json.Unmarshal(respBody, &boosted); err != nil {
		return nil, fmt.Errorf("failed to unmarshal boosted tokens response: %w", err)
	}

	return boosted, nil
}
