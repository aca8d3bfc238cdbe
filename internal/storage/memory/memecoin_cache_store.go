package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"memescout/internal/storage"
	"memescout/internal/token"
)

type cachedToken struct {
	record     token.Record
	filterHash string
	cachedAt   time.Time
}

// MemecoinCacheStore is an in-memory implementation of
// storage.MemecoinCacheStore. Used when no database is configured.
type MemecoinCacheStore struct {
	mu     sync.RWMutex
	byMint map[string]cachedToken // keyed by contract address
}

// NewMemecoinCacheStore creates a new in-memory memecoin cache store.
func NewMemecoinCacheStore() *MemecoinCacheStore {
	return &MemecoinCacheStore{byMint: make(map[string]cachedToken)}
}

// Upsert replaces the cached entry for each record's contract address.
func (s *MemecoinCacheStore) Upsert(_ context.Context, records []token.Record, filterHash string) error {
	if len(records) == 0 {
		return nil
	}
	for _, rec := range records {
		if rec.Address == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, rec := range records {
		s.byMint[rec.Address] = cachedToken{record: rec, filterHash: filterHash, cachedAt: now}
	}
	return nil
}

// GetByFilterHash returns fresh entries cached under the given filter key,
// market cap descending, at most storage.FilterResultLimit.
func (s *MemecoinCacheStore) GetByFilterHash(_ context.Context, filterHash string, maxAge time.Duration) ([]token.Record, error) {
	cutoff := time.Now().Add(-maxAge)

	s.mu.RLock()
	var records []token.Record
	for _, entry := range s.byMint {
		if entry.filterHash == filterHash && entry.cachedAt.After(cutoff) {
			records = append(records, entry.record)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].MarketCap > records[j].MarketCap
	})
	if len(records) > storage.FilterResultLimit {
		records = records[:storage.FilterResultLimit]
	}
	return records, nil
}

// GetByAddress returns the fresh cached entry for one token.
func (s *MemecoinCacheStore) GetByAddress(_ context.Context, address string, maxAge time.Duration) (*token.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.byMint[address]
	if !exists || !entry.cachedAt.After(time.Now().Add(-maxAge)) {
		return nil, storage.ErrNotFound
	}

	recCopy := entry.record
	return &recCopy, nil
}

// DeleteOlderThan evicts entries cached before the cutoff.
func (s *MemecoinCacheStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for address, entry := range s.byMint {
		if entry.cachedAt.Before(cutoff) {
			delete(s.byMint, address)
			removed++
		}
	}
	return removed, nil
}

var _ storage.MemecoinCacheStore = (*MemecoinCacheStore)(nil)
