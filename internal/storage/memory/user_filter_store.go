package memory

import (
	"context"
	"sync"
	"time"

	"memescout/internal/storage"
)

// UserFilterStore is an in-memory implementation of storage.UserFilterStore.
type UserFilterStore struct {
	mu     sync.RWMutex
	byChat map[int64]storage.SavedFilter
}

// NewUserFilterStore creates a new in-memory user filter store.
func NewUserFilterStore() *UserFilterStore {
	return &UserFilterStore{byChat: make(map[int64]storage.SavedFilter)}
}

// Save stores or replaces the chat's filter.
func (s *UserFilterStore) Save(_ context.Context, f *storage.SavedFilter) error {
	if f == nil || f.ChatID == 0 || f.FilterText == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *f
	saved.CreatedAt = time.Now()
	s.byChat[f.ChatID] = saved
	return nil
}

// Get returns the chat's saved filter. Returns ErrNotFound if none saved.
func (s *UserFilterStore) Get(_ context.Context, chatID int64) (*storage.SavedFilter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, exists := s.byChat[chatID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	filterCopy := f
	return &filterCopy, nil
}

// Delete removes the chat's saved filter. Returns ErrNotFound if none saved.
func (s *UserFilterStore) Delete(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byChat[chatID]; !exists {
		return storage.ErrNotFound
	}
	delete(s.byChat, chatID)
	return nil
}

var _ storage.UserFilterStore = (*UserFilterStore)(nil)
