package storage

import (
	"context"
	"time"

	"memescout/internal/token"
)

// FilterResultLimit caps how many cached rows a filter lookup returns.
const FilterResultLimit = 20

// MemecoinCacheStore provides access to the memecoins_cache table.
// Rows are short-lived: discovery writes every search through and readers
// pass the freshness window they tolerate.
type MemecoinCacheStore interface {
	// Upsert replaces the cached row for each record's contract address and
	// tags the batch with the filter key it was found under.
	Upsert(ctx context.Context, records []token.Record, filterHash string) error

	// GetByFilterHash returns rows cached under the given filter key that are
	// younger than maxAge, market cap descending, at most FilterResultLimit.
	GetByFilterHash(ctx context.Context, filterHash string, maxAge time.Duration) ([]token.Record, error)

	// GetByAddress returns the cached row for one token if younger than
	// maxAge. Returns ErrNotFound when missing or stale.
	GetByAddress(ctx context.Context, address string, maxAge time.Duration) (*token.Record, error)

	// DeleteOlderThan evicts rows cached before the cutoff and reports how
	// many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// UserFilterStore keeps at most one saved filter per chat.
type UserFilterStore interface {
	// Save stores or replaces the chat's filter.
	Save(ctx context.Context, f *SavedFilter) error

	// Get returns the chat's filter. Returns ErrNotFound if none saved.
	Get(ctx context.Context, chatID int64) (*SavedFilter, error)

	// Delete removes the chat's filter. Returns ErrNotFound if none saved.
	Delete(ctx context.Context, chatID int64) error
}

// SentimentCacheStore caches sentiment verdicts by token symbol.
type SentimentCacheStore interface {
	// Save stores or replaces the verdict for the record's symbol.
	Save(ctx context.Context, rec *SentimentRecord) error

	// Get returns the verdict for a symbol if younger than maxAge.
	// Returns ErrNotFound when missing or stale. Symbol match ignores case.
	Get(ctx context.Context, symbol string, maxAge time.Duration) (*SentimentRecord, error)

	// DeleteOlderThan evicts verdicts cached before the cutoff and reports
	// how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
