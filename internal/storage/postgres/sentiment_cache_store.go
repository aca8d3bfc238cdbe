package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"memescout/internal/storage"
)

// SentimentCacheStore implements storage.SentimentCacheStore using PostgreSQL.
type SentimentCacheStore struct {
	pool *Pool
}

// NewSentimentCacheStore creates a new SentimentCacheStore.
func NewSentimentCacheStore(pool *Pool) *SentimentCacheStore {
	return &SentimentCacheStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SentimentCacheStore = (*SentimentCacheStore)(nil)

// Save stores or replaces the verdict for the record's symbol. The old row
// is dropped first so one symbol never accumulates history.
func (s *SentimentCacheStore) Save(ctx context.Context, rec *storage.SentimentRecord) error {
	if rec == nil || strings.TrimSpace(rec.Symbol) == "" || rec.Sentiment == "" {
		return storage.ErrInvalidInput
	}
	symbol := strings.ToUpper(strings.TrimSpace(rec.Symbol))

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin sentiment save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sentiment_cache WHERE symbol = $1`, symbol); err != nil {
		return fmt.Errorf("evict cached sentiment: %w", err)
	}

	insert := `
		INSERT INTO sentiment_cache (symbol, sentiment, explanation, tweet_count)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, insert, symbol, rec.Sentiment, rec.Explanation, rec.TweetCount); err != nil {
		return fmt.Errorf("insert cached sentiment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit sentiment save: %w", err)
	}
	return nil
}

// Get returns the fresh verdict for a symbol, case-insensitive.
// Returns ErrNotFound when missing or stale.
func (s *SentimentCacheStore) Get(ctx context.Context, symbol string, maxAge time.Duration) (*storage.SentimentRecord, error) {
	query := `
		SELECT symbol, sentiment, explanation, tweet_count, cached_at
		FROM sentiment_cache
		WHERE symbol = $1 AND cached_at > $2
		ORDER BY cached_at DESC
		LIMIT 1
	`

	var rec storage.SentimentRecord
	row := s.pool.QueryRow(ctx, query, strings.ToUpper(strings.TrimSpace(symbol)), time.Now().UTC().Add(-maxAge))
	if err := row.Scan(&rec.Symbol, &rec.Sentiment, &rec.Explanation, &rec.TweetCount, &rec.CachedAt); err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get cached sentiment: %w", err)
	}
	return &rec, nil
}

// DeleteOlderThan evicts verdicts cached before the cutoff.
func (s *SentimentCacheStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sentiment_cache WHERE cached_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete old cached sentiments: %w", err)
	}
	return tag.RowsAffected(), nil
}
