package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"memescout/internal/storage"
)

// SentimentCacheStore is an in-memory implementation of
// storage.SentimentCacheStore.
type SentimentCacheStore struct {
	mu       sync.RWMutex
	bySymbol map[string]storage.SentimentRecord // keyed by uppercased symbol
}

// NewSentimentCacheStore creates a new in-memory sentiment cache store.
func NewSentimentCacheStore() *SentimentCacheStore {
	return &SentimentCacheStore{bySymbol: make(map[string]storage.SentimentRecord)}
}

// Save stores or replaces the verdict for the record's symbol.
func (s *SentimentCacheStore) Save(_ context.Context, rec *storage.SentimentRecord) error {
	if rec == nil || strings.TrimSpace(rec.Symbol) == "" || rec.Sentiment == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *rec
	saved.Symbol = strings.ToUpper(strings.TrimSpace(rec.Symbol))
	saved.CachedAt = time.Now()
	s.bySymbol[saved.Symbol] = saved
	return nil
}

// Get returns the fresh verdict for a symbol, case-insensitive.
func (s *SentimentCacheStore) Get(_ context.Context, symbol string, maxAge time.Duration) (*storage.SentimentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	if !exists || !rec.CachedAt.After(time.Now().Add(-maxAge)) {
		return nil, storage.ErrNotFound
	}

	recCopy := rec
	return &recCopy, nil
}

// DeleteOlderThan evicts verdicts cached before the cutoff.
func (s *SentimentCacheStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for symbol, rec := range s.bySymbol {
		if rec.CachedAt.Before(cutoff) {
			delete(s.bySymbol, symbol)
			removed++
		}
	}
	return removed, nil
}

var _ storage.SentimentCacheStore = (*SentimentCacheStore)(nil)
