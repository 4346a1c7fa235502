package documents

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func ptr(s string) *string { return &s }

func TestMemoryRepoOrderingAndTies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	t0 := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	for _, doc := range []Document{
		{ID: "old", UploadedAt: t0},
		{ID: "tie-a", UploadedAt: t0.Add(time.Hour)},
		{ID: "tie-b", UploadedAt: t0.Add(time.Hour)},
		{ID: "new", UploadedAt: t0.Add(2 * time.Hour)},
	} {
		if _, err := repo.Create(ctx, doc); err != nil {
			t.Fatalf("Create %s: %v", doc.ID, err)
		}
	}

	docs, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	want := []string{"new", "tie-a", "tie-b", "old"}
	for i, id := range want {
		if docs[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, docs[i].ID)
		}
	}
}

func TestMemoryRepoRejectsEmptyAndDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	if _, err := repo.Create(ctx, Document{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := repo.Create(ctx, Document{ID: "a"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, Document{ID: "a"}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestMemoryRepoOwnerIndex(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	_, _ = repo.Create(ctx, Document{ID: "a", OwnerID: ptr("u1")})
	_, _ = repo.Create(ctx, Document{ID: "b", OwnerID: ptr("u2")})
	_, _ = repo.Create(ctx, Document{ID: "c", OwnerID: ptr("u1")})
	_, _ = repo.Create(ctx, Document{ID: "d"})

	owned, err := repo.ListByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(owned) != 2 {
		t.Fatalf("expected 2 documents for u1, got %d", len(owned))
	}

	if err := repo.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	owned, _ = repo.ListByOwner(ctx, "u1")
	if len(owned) != 1 || owned[0].ID != "c" {
		t.Fatalf("expected only c for u1, got %+v", owned)
	}
	if none, _ := repo.ListByOwner(ctx, "nobody"); len(none) != 0 {
		t.Fatalf("expected empty list for unknown owner")
	}
}

func TestMemoryRepoDeleteUnknown(t *testing.T) {
	if err := NewMemoryRepo().Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepoConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = repo.Create(ctx, Document{ID: string(rune('A' + i)), UploadedAt: time.Now()})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = repo.ListAll(ctx)
		}()
	}
	wg.Wait()
	docs, _ := repo.ListAll(ctx)
	if len(docs) != 50 {
		t.Fatalf("expected 50 documents, got %d", len(docs))
	}
}
