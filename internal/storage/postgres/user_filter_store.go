package postgres

import (
	"context"
	"fmt"

	"memescout/internal/storage"
)

// UserFilterStore implements storage.UserFilterStore using PostgreSQL.
type UserFilterStore struct {
	pool *Pool
}

// NewUserFilterStore creates a new UserFilterStore.
func NewUserFilterStore(pool *Pool) *UserFilterStore {
	return &UserFilterStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserFilterStore = (*UserFilterStore)(nil)

// Save stores or replaces the chat's filter.
func (s *UserFilterStore) Save(ctx context.Context, f *storage.SavedFilter) error {
	if f == nil || f.ChatID == 0 || f.FilterText == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO user_filters (chat_id, filter_text, rendered, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (chat_id) DO UPDATE
		SET filter_text = EXCLUDED.filter_text,
		    rendered    = EXCLUDED.rendered,
		    created_at  = now()
	`

	if _, err := s.pool.Exec(ctx, query, f.ChatID, f.FilterText, f.Rendered); err != nil {
		return fmt.Errorf("save user filter: %w", err)
	}
	return nil
}

// Get returns the chat's saved filter. Returns ErrNotFound if none saved.
func (s *UserFilterStore) Get(ctx context.Context, chatID int64) (*storage.SavedFilter, error) {
	query := `
		SELECT chat_id, filter_text, rendered, created_at
		FROM user_filters
		WHERE chat_id = $1
	`

	var f storage.SavedFilter
	row := s.pool.QueryRow(ctx, query, chatID)
	if err := row.Scan(&f.ChatID, &f.FilterText, &f.Rendered, &f.CreatedAt); err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user filter: %w", err)
	}
	return &f, nil
}

// Delete removes the chat's saved filter. Returns ErrNotFound if none saved.
func (s *UserFilterStore) Delete(ctx context.Context, chatID int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM user_filters WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("delete user filter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
