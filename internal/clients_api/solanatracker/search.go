package solanatracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"memescout/internal/filter"
	"memescout/internal/infra/log"
	"memescout/internal/token"

	"go.uber.org/zap"
)

// SearchParams mirror the query parameters of GET /search. Zero values are
// omitted from the request.
type SearchParams struct {
	MinMarketCap  float64
	MaxMarketCap  float64
	MinVolume24h  float64
	MinLiquidity  float64
	MinHolders    int
	MinAgeMinutes int // results must be at least this old
	MaxAgeMinutes int // results must be at most this old
	Limit         int
}

// ParamsFromPredicate pushes the engine's lower bounds into server-side
// params. Upper bounds on volume, holders and liquidity have no server
// equivalent and are re-checked locally after the call.
func ParamsFromPredicate(p filter.Predicate, maxAgeMinutes int) SearchParams {
	params := SearchParams{MaxAgeMinutes: maxAgeMinutes}

	if v, ok := p.Threshold(filter.AttrMarketCap, filter.Min); ok {
		params.MinMarketCap = v
	}
	if v, ok := p.Threshold(filter.AttrMarketCap, filter.Max); ok {
		params.MaxMarketCap = v
	}
	if v, ok := p.Threshold(filter.AttrVolume24h, filter.Min); ok {
		params.MinVolume24h = v
	}
	if v, ok := p.Threshold(filter.AttrLiquidity, filter.Min); ok {
		params.MinLiquidity = v
	}
	if v, ok := p.Threshold(filter.AttrHolders, filter.Min); ok {
		params.MinHolders = int(v)
	}

	return params
}

func (p SearchParams) encode(now time.Time) string {
	values := url.Values{}
	values.Set("sortBy", "createdAt")
	values.Set("sortOrder", "desc")

	limit := p.Limit
	if limit <= 0 {
		limit = 500
	}
	values.Set("limit", strconv.Itoa(limit))

	if p.MinMarketCap > 0 {
		values.Set("minMarketCap", formatFloat(p.MinMarketCap))
	}
	if p.MaxMarketCap > 0 {
		values.Set("maxMarketCap", formatFloat(p.MaxMarketCap))
	}
	if p.MinVolume24h > 0 {
		values.Set("minVolume_24h", formatFloat(p.MinVolume24h))
	}
	if p.MinLiquidity > 0 {
		values.Set("minLiquidity", formatFloat(p.MinLiquidity))
	}
	if p.MinHolders > 0 {
		values.Set("minHolders", strconv.Itoa(p.MinHolders))
	}

	// Age bounds become creation timestamps: the oldest allowed creation
	// time comes from the max age and vice versa.
	if p.MaxAgeMinutes > 0 {
		minCreated := now.Unix() - int64(p.MaxAgeMinutes)*60
		values.Set("minCreatedAt", strconv.FormatInt(minCreated, 10))
	}
	if p.MinAgeMinutes > 0 {
		maxCreated := now.Unix() - int64(p.MinAgeMinutes)*60
		values.Set("maxCreatedAt", strconv.FormatInt(maxCreated, 10))
	}

	return values.Encode()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type searchTokenDetails struct {
	Time int64 `json:"time"`
}

// SearchItem is one row of the search endpoint. Market data sits at the
// root level, the creation time under tokenDetails.
type SearchItem struct {
	Mint         string             `json:"mint"`
	Name         string             `json:"name"`
	Symbol       string             `json:"symbol"`
	MarketCapUsd float64            `json:"marketCapUsd"`
	Volume24h    float64            `json:"volume_24h"`
	LiquidityUsd float64            `json:"liquidityUsd"`
	Holders      int                `json:"holders"`
	TokenDetails searchTokenDetails `json:"tokenDetails"`
}

type searchResponse struct {
	Status string       `json:"status"`
	Data   []SearchItem `json:"data"`
	Total  int          `json:"total"`
}

// Search runs a server-side filtered token search and maps the rows onto
// token records, newest first.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]token.Record, error) {
	endpoint := "/search?" + params.encode(time.Now())

	respBody, err := c.MakeRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to search tokens: %w", err)
	}

	items, total, err := parseSearchBody(respBody)
	if err != nil {
		return nil, err
	}

	records := make([]token.Record, 0, len(items))
	for _, item := range items {
		if item.Mint == "" {
			continue
		}
		records = append(records, itemToRecord(item))
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PairCreatedAt > records[j].PairCreatedAt
	})

	limit := params.Limit
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	log.LogInfo("SolanaTracker search finished",
		zap.Int("returned", len(records)),
		zap.Int("total_available", total))

	return records, nil
}

// parseSearchBody accepts both the documented envelope and a bare array,
// which older API versions returned.
func parseSearchBody(body []byte) ([]SearchItem, int, error) {
	var envelope searchResponse
	envErr := json.Unmarshal(body, &envelope)
	if envErr == nil && envelope.Status == "success" {
		return envelope.Data, envelope.Total, nil
	}

	var bare []SearchItem
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, len(bare), nil
	}

	if envErr != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal search response: %w", envErr)
	}
	return envelope.Data, envelope.Total, nil
}

func itemToRecord(item SearchItem) token.Record {
	name := item.Name
	if name == "" {
		name = "Unknown"
	}
	symbol := item.Symbol
	if symbol == "" {
		symbol = "?"
	}

	return token.Record{
		Address:         item.Mint,
		Name:            name,
		Symbol:          symbol,
		MarketCap:       item.MarketCapUsd,
		Volume24h:       item.Volume24h,
		Liquidity:       item.LiquidityUsd,
		HoldersEstimate: item.Holders,
		PairCreatedAt:   normalizeTimestamp(item.TokenDetails.Time),
	}
}

// normalizeTimestamp converts millisecond timestamps to seconds, the API
// has reported both.
func normalizeTimestamp(ts int64) int64 {
	if ts > 1_000_000_000_000 {
		return ts / 1000
	}
	return ts
}

// SearchByPredicate pushes the predicate server-side and re-checks every
// row locally, so API drift cannot leak records past the engine's bounds.
func (c *Client) SearchByPredicate(ctx context.Context, p filter.Predicate, maxAgeMinutes, limit int) ([]token.Record, error) {
	params := ParamsFromPredicate(p, maxAgeMinutes)
	params.Limit = limit

	records, err := c.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	matched := records[:0]
	for _, rec := range records {
		if filter.Matches(p, rec) {
			matched = append(matched, rec)
		}
	}

	return matched, nil
}
