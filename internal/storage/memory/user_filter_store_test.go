package memory

import (
	"context"
	"errors"
	"testing"

	"memescout/internal/storage"
)

func TestUserFilterStore_SaveAndGet(t *testing.T) {
	store := NewUserFilterStore()
	ctx := context.Background()

	err := store.Save(ctx, &storage.SavedFilter{
		ChatID:     42,
		FilterText: "mc > 100k, vol > 10k",
		Rendered:   "MC ≥ $100.0K | Vol ≥ $10.0K",
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	f, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if f.FilterText != "mc > 100k, vol > 10k" {
		t.Errorf("FilterText mismatch: got %q", f.FilterText)
	}
	if f.CreatedAt.IsZero() {
		t.Error("CreatedAt was not stamped")
	}
}

func TestUserFilterStore_SaveReplaces(t *testing.T) {
	store := NewUserFilterStore()
	ctx := context.Background()

	if err := store.Save(ctx, &storage.SavedFilter{ChatID: 42, FilterText: "old"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, &storage.SavedFilter{ChatID: 42, FilterText: "new"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	f, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if f.FilterText != "new" {
		t.Errorf("expected replaced filter, got %q", f.FilterText)
	}
}

func TestUserFilterStore_GetMissing(t *testing.T) {
	store := NewUserFilterStore()

	_, err := store.Get(context.Background(), 7)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserFilterStore_Delete(t *testing.T) {
	store := NewUserFilterStore()
	ctx := context.Background()

	if err := store.Save(ctx, &storage.SavedFilter{ChatID: 42, FilterText: "mc > 1m"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Delete(ctx, 42); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, 42); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, 42); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUserFilterStore_SaveValidation(t *testing.T) {
	store := NewUserFilterStore()
	ctx := context.Background()

	cases := []*storage.SavedFilter{
		nil,
		{ChatID: 0, FilterText: "mc > 1m"},
		{ChatID: 42, FilterText: ""},
	}
	for i, f := range cases {
		if err := store.Save(ctx, f); !errors.Is(err, storage.ErrInvalidInput) {
			t.Errorf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}
