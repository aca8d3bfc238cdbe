package token

// Package token defines the record shape shared by all market data providers.
// Providers map their wire formats into Record; everything downstream
// (filtering, ranking, rendering, caching) works on this one struct.

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// Record is a single tradable token as reported by a market data provider.
// Numeric fields default to zero when the provider omits them.
type Record struct {
	Address         string  // contract (mint) address
	Name            string
	Symbol          string
	MarketCap       float64 // USD
	Volume24h       float64 // USD
	Liquidity       float64 // USD
	HoldersEstimate int
	PriceUSD        float64
	PriceChange24h  float64 // percent, signed
	DexID           string
	DexURL          string
	PairCreatedAt   int64 // unix seconds, 0 when unknown
}

// IsValidSolanaAddress reports whether s looks like a Solana mint address:
// 32-44 characters, base58 alphabet only.
func IsValidSolanaAddress(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	if _, err := base58.Decode(s); err != nil {
		return false
	}
	return true
}

// ShortAddress returns an abbreviated display form of a contract address.
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return fmt.Sprintf("%s...%s", addr[:6], addr[len(addr)-4:])
}
