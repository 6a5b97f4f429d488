package coverletters

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepoListNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := repo.Append(ctx, CoverLetter{ID: id, UserID: "user-1", CreatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := repo.Append(ctx, CoverLetter{ID: "other", UserID: "user-2", CreatedAt: base}); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || got[0].ID != "c" || got[2].ID != "a" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestMemoryRepoOwnerScoping(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	if err := repo.Append(ctx, CoverLetter{ID: "l1", UserID: "owner", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("append: %v", err)
	}

	if _, err := repo.GetByID(ctx, "intruder", "l1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "intruder", "l1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "owner", "l1"); err != nil {
		t.Fatalf("owner lookup: %v", err)
	}
	if err := repo.Delete(ctx, "owner", "l1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "owner", "l1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
