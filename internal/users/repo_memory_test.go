package users

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"docsearch-backend/internal/shared/auth"
)

func TestMemoryRepoConcurrentCreateSameUsername(t *testing.T) {
	repo := NewMemoryRepo()
	const attempts = 32

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Create(context.Background(), User{ID: fmt.Sprintf("id-%d", i), Username: "alice", Role: auth.RoleUser})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 1 || conflicts != attempts-1 {
		t.Fatalf("expected exactly one success, got %d successes and %d conflicts", succeeded, conflicts)
	}
}

func TestMemoryRepoListOrderAndDelete(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"carol", "bob", "alice"} {
		if err := repo.Create(ctx, User{ID: name, Username: name, CreatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 || list[0].Username != "carol" || list[2].Username != "alice" {
		t.Fatalf("unexpected order %+v", list)
	}

	if err := repo.Delete(ctx, "bob"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByUsername(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	// username is free again
	if err := repo.Create(ctx, User{ID: "bob-2", Username: "bob"}); err != nil {
		t.Fatalf("re-create: %v", err)
	}
}
