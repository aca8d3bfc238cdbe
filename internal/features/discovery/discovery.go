package discovery

// Service ties the data providers, the filter engine and the memecoin cache
// together: one entry point per bot surface (filtered search, trending,
// single-token lookup).

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"memescout/internal/filter"
	"memescout/internal/infra/fs"
	"memescout/internal/infra/log"
	"memescout/internal/storage"
	"memescout/internal/token"

	"go.uber.org/zap"
)

// ErrInvalidAddress is returned by TokenInfo for input that is not a
// plausible Solana mint address.
var ErrInvalidAddress = errors.New("not a valid solana address")

const (
	// DefaultCoinTTL bounds how long cached search rows are served before a
	// fresh provider fetch.
	DefaultCoinTTL = 5 * time.Minute

	// DefaultTrendingLimit caps the trending list shown to users.
	DefaultTrendingLimit = 10

	searchFetchLimit   = 500
	trendingFetchLimit = 100

	// directLookupHash buckets single-token lookups in the cache store away
	// from any rendered filter text.
	directLookupHash = ""
)

// PairSearcher is the broad discovery surface (DexScreener).
type PairSearcher interface {
	SearchMemecoins(ctx context.Context, limit int) ([]token.Record, error)
	GetTokenInfo(ctx context.Context, address string) (*token.Record, error)
}

// StructuredSearcher is the keyed search surface (SolanaTracker). Optional:
// when absent every search goes through the PairSearcher.
type StructuredSearcher interface {
	SearchByPredicate(ctx context.Context, p filter.Predicate, maxAgeMinutes, limit int) ([]token.Record, error)
}

// Options configures a Service. Pairs is required, everything else has a
// usable zero value.
type Options struct {
	Pairs         PairSearcher
	Structured    StructuredSearcher
	Cache         storage.MemecoinCacheStore
	CoinTTL       time.Duration
	SearchLimit   int
	MaxAgeMinutes int
	SnapshotFile  string
}

// Service runs memecoin discovery and keeps the cache store warm.
type Service struct {
	pairs         PairSearcher
	structured    StructuredSearcher
	cache         storage.MemecoinCacheStore
	coinTTL       time.Duration
	searchLimit   int
	maxAgeMinutes int
	snapshotFile  string
}

// NewService builds a Service from opts, filling in defaults for the TTL and
// the provider sweep size.
func NewService(opts Options) *Service {
	ttl := opts.CoinTTL
	if ttl <= 0 {
		ttl = DefaultCoinTTL
	}
	limit := opts.SearchLimit
	if limit <= 0 {
		limit = searchFetchLimit
	}
	return &Service{
		pairs:         opts.Pairs,
		structured:    opts.Structured,
		cache:         opts.Cache,
		coinTTL:       ttl,
		searchLimit:   limit,
		maxAgeMinutes: opts.MaxAgeMinutes,
		snapshotFile:  opts.SnapshotFile,
	}
}

// SearchResult is one finished search: ranked records plus the filter text
// they were matched against.
type SearchResult struct {
	Records    []token.Record
	FilterText string
	FromCache  bool
}

// Search returns tokens matching the predicate, ranked by activity score and
// capped at storage.FilterResultLimit. A recent identical search is served
// from the cache store; fresh results are written back through it and
// snapshotted to disk.
func (s *Service) Search(ctx context.Context, p filter.Predicate) (*SearchResult, error) {
	filterText := filter.FormatFilters(p)

	if s.cache != nil {
		cached, err := s.cache.GetByFilterHash(ctx, filterText, s.coinTTL)
		if err != nil {
			log.LogWarn("Memecoin cache read failed", zap.String("filter", filterText), zap.Error(err))
		} else if len(cached) > 0 {
			log.LogInfo("Serving search from cache",
				zap.String("filter", filterText),
				zap.Int("tokens", len(cached)))
			return &SearchResult{Records: cached, FilterText: filterText, FromCache: true}, nil
		}
	}

	records, err := s.fetch(ctx, p)
	if err != nil {
		return nil, err
	}

	ranked := filter.FilterAndRank(p, records)
	if len(ranked) > storage.FilterResultLimit {
		ranked = ranked[:storage.FilterResultLimit]
	}

	if s.cache != nil && len(ranked) > 0 {
		if err := s.cache.Upsert(ctx, ranked, filterText); err != nil {
			log.LogWarn("Memecoin cache write failed", zap.String("filter", filterText), zap.Error(err))
		}
	}

	if s.snapshotFile != "" && len(ranked) > 0 {
		if err := fs.SaveSearchSnapshot(s.snapshotFile, filterText, ranked); err != nil {
			log.LogWarn("Search snapshot write failed", zap.String("file", s.snapshotFile), zap.Error(err))
		}
	}

	log.LogSuccess("Search finished",
		zap.String("filter", filterText),
		zap.Int("fetched", len(records)),
		zap.Int("matched", len(ranked)))

	return &SearchResult{Records: ranked, FilterText: filterText}, nil
}

// fetch pulls a candidate set from the best available provider. The
// structured API narrows server-side; when it is missing or failing, the
// broad pair search fills in.
func (s *Service) fetch(ctx context.Context, p filter.Predicate) ([]token.Record, error) {
	if s.structured != nil {
		records, err := s.structured.SearchByPredicate(ctx, p, s.maxAgeMinutes, s.searchLimit)
		if err == nil {
			return records, nil
		}
		if s.pairs == nil {
			return nil, fmt.Errorf("structured search: %w", err)
		}
		log.LogWarn("Structured search failed, falling back to pair search", zap.Error(err))
	}

	if s.pairs == nil {
		return nil, errors.New("no search provider configured")
	}

	records, err := s.pairs.SearchMemecoins(ctx, s.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("memecoin search: %w", err)
	}
	return records, nil
}

// Trending returns the most active tokens with no filter applied, ranked by
// activity score. Trending is always a live fetch.
func (s *Service) Trending(ctx context.Context, limit int) ([]token.Record, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}

	records, err := s.pairs.SearchMemecoins(ctx, trendingFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("trending fetch: %w", err)
	}

	ranked := filter.FilterAndRank(filter.Predicate{}, records)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// TokenInfo returns the record for one mint address, serving recent lookups
// from the cache store and refreshing it on a live fetch.
func (s *Service) TokenInfo(ctx context.Context, address string) (*token.Record, error) {
	address = strings.TrimSpace(address)
	if !token.IsValidSolanaAddress(address) {
		return nil, ErrInvalidAddress
	}

	if s.cache != nil {
		record, err := s.cache.GetByAddress(ctx, address, s.coinTTL)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			log.LogWarn("Token cache read failed", zap.String("address", address), zap.Error(err))
		}
	}

	record, err := s.pairs.GetTokenInfo(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("token lookup: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Upsert(ctx, []token.Record{*record}, directLookupHash); err != nil {
			log.LogWarn("Token cache write failed", zap.String("address", address), zap.Error(err))
		}
	}

	return record, nil
}
